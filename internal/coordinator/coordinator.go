package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/actuator"
	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/lock"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/messaging"
	"github.com/feral-file/ff-launchpad/internal/store"
	"github.com/feral-file/ff-launchpad/internal/verifier"
)

// weiPerUnit converts native currency amounts to wei
var weiPerUnit = decimal.New(1, 18)

// Config holds the coordinator settings
type Config struct {
	// Wallets are wired into every deployed contract
	Wallets domain.WalletSet
	// PaymentWallet receives unlock and listing payments
	PaymentWallet string
	UnlockPrice   decimal.Decimal
	ListingPrice  decimal.Decimal
	PaymentWindow time.Duration
}

// PaymentInstructions tell the owner how to pay for an action
type PaymentInstructions struct {
	Kind      domain.ActionKind `json:"action_kind"`
	Amount    string            `json:"amount"`
	AmountWei string            `json:"amount_wei"`
	Wallet    string            `json:"wallet"`
	Reference string            `json:"reference"`
	// Window is how long a payment stays acceptable
	Window time.Duration `json:"window"`
}

// CreationResult is the outcome of a confirmed deployment
type CreationResult struct {
	Asset domain.Asset `json:"asset"`
	TxRef string       `json:"tx_ref"`
}

// ConfirmStatus tells whether a confirm call performed the action
type ConfirmStatus string

const (
	// ConfirmStatusDone means the action was performed by this call
	ConfirmStatusDone ConfirmStatus = "done"
	// ConfirmStatusAlreadyDone means the action had already been performed
	ConfirmStatusAlreadyDone ConfirmStatus = "already_done"
)

// ConfirmResult is the outcome of a successful confirm call
type ConfirmResult struct {
	Status       ConfirmStatus `json:"status"`
	Asset        domain.Asset  `json:"asset"`
	TxRef        string        `json:"tx_ref,omitempty"`
	PaymentTxRef string        `json:"payment_tx_ref,omitempty"`
}

// Coordinator runs the asset lifecycle: deployment, paid trading unlock and paid listing.
// Failures are returned as *domain.Error values.
//
//go:generate mockgen -source=coordinator.go -destination=../mocks/coordinator.go -package=mocks -mock_names=Coordinator=MockCoordinator
type Coordinator interface {
	// RequestCreation deploys a token for an owner that has none
	RequestCreation(ctx context.Context, ownerID string, identity domain.Identity, logoRef string) (*CreationResult, error)
	// RequestUnlock returns the payment instructions for enabling trading
	RequestUnlock(ctx context.Context, ownerID string) (*PaymentInstructions, error)
	// ConfirmUnlock verifies the unlock payment and enables trading
	ConfirmUnlock(ctx context.Context, ownerID string) (*ConfirmResult, error)
	// RequestListing returns the payment instructions for the listing submission
	RequestListing(ctx context.Context, ownerID string) (*PaymentInstructions, error)
	// ConfirmListing verifies the listing payment and submits the listing
	ConfirmListing(ctx context.Context, ownerID string) (*ConfirmResult, error)
	// GetAsset returns the asset of an owner
	GetAsset(ctx context.Context, ownerID string) (*domain.Asset, error)
	// ListActions returns the action history of an owner, oldest first
	ListActions(ctx context.Context, ownerID string) ([]domain.ActionRecord, error)
}

type coordinator struct {
	store     store.Store
	verifier  verifier.Verifier
	actuator  actuator.Actuator
	locker    lock.Locker
	publisher messaging.Publisher
	clock     adapter.Clock
	config    Config
}

// New creates a coordinator
func New(
	st store.Store,
	v verifier.Verifier,
	act actuator.Actuator,
	locker lock.Locker,
	publisher messaging.Publisher,
	clock adapter.Clock,
	cfg Config,
) Coordinator {
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = domain.DEFAULT_PAYMENT_WINDOW
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &coordinator{
		store:     st,
		verifier:  v,
		actuator:  act,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		config:    cfg,
	}
}

// lockOwner serialises mutating operations of an owner.
// The returned context is not canceled with the caller; bookkeeping after an actuation always completes.
func (c *coordinator) lockOwner(ctx context.Context, ownerID string, action string) (context.Context, func(), error) {
	if ownerID == "" {
		return nil, nil, domain.Wrapf(domain.ErrInvalidInput, "owner id is required")
	}

	unlock, err := c.locker.Lock(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock owner %s: %w", ownerID, err)
	}

	ctx = logger.ContextWithAction(context.WithoutCancel(ctx), logger.ActionInfo{
		OwnerID: ownerID,
		Action:  action,
	})
	return ctx, unlock, nil
}

func (c *coordinator) RequestCreation(ctx context.Context, ownerID string, identity domain.Identity, logoRef string) (*CreationResult, error) {
	identity = identity.Normalize()
	if err := identity.Validate(); err != nil {
		return nil, domain.Wrap(domain.ErrInvalidInput, err)
	}

	ctx, unlock, err := c.lockOwner(ctx, ownerID, string(domain.ActionKindDeploy))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := c.store.GetAssetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if existing != nil {
		return nil, domain.Wrapf(domain.ErrAlreadyExists, "owner %s already has %s", ownerID, existing.ChainAddress)
	}

	pending, err := c.store.GetPendingDeploy(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending deployment: %w", err)
	}
	if pending != nil {
		return nil, domain.Wrapf(domain.ErrActuationIndeterminate, "deployment %d is still pending", pending.ID)
	}

	referenceCode, err := domain.NewReferenceCode(c.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}
	taken, err := c.store.ReferenceCodeExists(ctx, referenceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check reference code: %w", err)
	}
	if taken {
		return nil, c.consistencyFault(ctx, ownerID, domain.ActionKindDeploy, "",
			fmt.Errorf("reference code %s collides with an existing one", referenceCode))
	}

	details := &domain.DeployDetails{
		Identity:      identity,
		ReferenceCode: referenceCode,
		LogoRef:       logoRef,
	}

	// Opened before the transaction is sent; a crash leaves the pending record for the reconciler
	record, err := c.store.OpenAction(ctx, domain.ActionRecord{
		OwnerID: ownerID,
		Kind:    domain.ActionKindDeploy,
		Outcome: domain.ActionOutcomePending,
		Details: details,
	})
	if err != nil {
		if errors.Is(err, store.ErrActionInFlight) {
			return nil, domain.Wrap(domain.ErrActuationIndeterminate, err)
		}
		return nil, fmt.Errorf("failed to open deploy record: %w", err)
	}

	logger.InfoCtx(ctx, "Deploying token",
		zap.String("name", identity.Name),
		zap.String("symbol", identity.Symbol),
		zap.Uint64("totalSupply", identity.TotalSupply),
		zap.Uint64("recordID", record.ID),
	)

	result, err := c.actuator.Deploy(actuator.WithSubmitHook(ctx, c.recordTxRef(record.ID)), identity, c.config.Wallets)
	if err != nil {
		return nil, c.handleActuationError(ctx, record, err)
	}

	asset := domain.Asset{
		OwnerID:       ownerID,
		Identity:      identity,
		ChainAddress:  result.ContractAddress,
		ReferenceCode: referenceCode,
		State:         domain.StateTradingLocked,
		LogoRef:       logoRef,
	}
	confirmed, err := c.store.CreateAsset(ctx, store.CreateAssetInput{
		Asset: asset,
		Record: domain.ActionRecord{
			ID:         record.ID,
			ChainTxRef: &result.TxRef,
		},
	})
	if err != nil {
		// The contract exists on chain, deploying again would orphan it
		return nil, c.consistencyFault(ctx, ownerID, domain.ActionKindDeploy, result.TxRef,
			fmt.Errorf("deployed %s but failed to store asset: %w", result.ContractAddress, err))
	}

	stored, err := c.store.GetAssetByOwner(ctx, ownerID)
	if err == nil && stored != nil {
		asset = *stored
	}

	logger.InfoCtx(ctx, "Token deployed",
		zap.String("address", asset.ChainAddress),
		zap.String("txHash", result.TxRef),
	)
	c.publish(ctx, messaging.NewActionEvent(*confirmed, c.clock.Now()))
	c.publish(ctx, messaging.NewAssetStateEvent(asset, c.clock.Now()))

	return &CreationResult{Asset: asset, TxRef: result.TxRef}, nil
}

func (c *coordinator) RequestUnlock(ctx context.Context, ownerID string) (*PaymentInstructions, error) {
	return c.requestPayment(ctx, ownerID, domain.ActionKindEnableTrading)
}

func (c *coordinator) RequestListing(ctx context.Context, ownerID string) (*PaymentInstructions, error) {
	return c.requestPayment(ctx, ownerID, domain.ActionKindSubmitListing)
}

func (c *coordinator) ConfirmUnlock(ctx context.Context, ownerID string) (*ConfirmResult, error) {
	return c.confirmAction(ctx, ownerID, domain.ActionKindEnableTrading)
}

func (c *coordinator) ConfirmListing(ctx context.Context, ownerID string) (*ConfirmResult, error) {
	return c.confirmAction(ctx, ownerID, domain.ActionKindSubmitListing)
}

func (c *coordinator) GetAsset(ctx context.Context, ownerID string) (*domain.Asset, error) {
	asset, err := c.store.GetAssetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if asset == nil {
		return nil, domain.ErrNotFound
	}
	return asset, nil
}

func (c *coordinator) ListActions(ctx context.Context, ownerID string) ([]domain.ActionRecord, error) {
	records, err := c.store.ListActionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return records, nil
}

// alreadyDoneError returns the sentinel reported when the action kind has already taken effect
func alreadyDoneError(kind domain.ActionKind) *domain.Error {
	if kind == domain.ActionKindSubmitListing {
		return domain.ErrAlreadyListed
	}
	return domain.ErrAlreadyUnlocked
}

func (c *coordinator) price(kind domain.ActionKind) decimal.Decimal {
	if kind == domain.ActionKindSubmitListing {
		return c.config.ListingPrice
	}
	return c.config.UnlockPrice
}

func (c *coordinator) priceWei(kind domain.ActionKind) *big.Int {
	return c.price(kind).Mul(weiPerUnit).BigInt()
}

// gate loads the asset and checks that the action may run
func (c *coordinator) gate(ctx context.Context, ownerID string, kind domain.ActionKind) (*domain.Asset, error) {
	asset, err := c.store.GetAssetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if asset == nil {
		return nil, domain.ErrNotFound
	}
	if asset.State.AtLeast(kind.TargetState()) {
		return asset, alreadyDoneError(kind)
	}
	if asset.State != kind.RequiredState() {
		return asset, domain.Wrapf(domain.ErrPrecondition, "%s requires %s, asset is %s", kind, kind.RequiredState(), asset.State)
	}
	return asset, nil
}

func (c *coordinator) requestPayment(ctx context.Context, ownerID string, kind domain.ActionKind) (*PaymentInstructions, error) {
	asset, err := c.gate(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}

	return &PaymentInstructions{
		Kind:      kind,
		Amount:    c.price(kind).String(),
		AmountWei: c.priceWei(kind).String(),
		Wallet:    c.config.PaymentWallet,
		Reference: domain.PaymentReference(kind, asset.ReferenceCode),
		Window:    c.config.PaymentWindow,
	}, nil
}

func (c *coordinator) confirmAction(ctx context.Context, ownerID string, kind domain.ActionKind) (*ConfirmResult, error) {
	ctx, unlock, err := c.lockOwner(ctx, ownerID, string(kind))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 1. Re-read the state under the lock
	asset, err := c.gate(ctx, ownerID, kind)
	if err != nil {
		if errors.Is(err, alreadyDoneError(kind)) {
			return &ConfirmResult{Status: ConfirmStatusAlreadyDone, Asset: *asset}, nil
		}
		return nil, err
	}

	// 2. Check the ledger; a pending record holds the payment already
	active, err := c.store.GetActiveAction(ctx, asset.ChainAddress, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to check action ledger: %w", err)
	}
	if active != nil {
		if active.Outcome == domain.ActionOutcomePending {
			return nil, domain.Wrapf(domain.ErrActuationIndeterminate, "%s %d is still pending", kind, active.ID)
		}
		logger.WarnCtx(ctx, "Action already confirmed but asset not advanced",
			zap.Uint64("recordID", active.ID),
			zap.String("state", string(asset.State)),
		)
		result := &ConfirmResult{Status: ConfirmStatusAlreadyDone, Asset: *asset}
		if active.ChainTxRef != nil {
			result.TxRef = *active.ChainTxRef
		}
		return result, nil
	}

	// 3. Verify the payment
	reference := domain.PaymentReference(kind, asset.ReferenceCode)
	verification := c.verifier.Verify(ctx, domain.PaymentIntent{
		ExpectedAmount: c.priceWei(kind),
		ReferenceCode:  reference,
		TargetWallet:   c.config.PaymentWallet,
		OpenedAt:       c.clock.Now(),
	}, c.config.PaymentWindow)
	if !verification.Verified || verification.MatchedTx == nil {
		logger.InfoCtx(ctx, "Payment not verified",
			zap.String("reference", reference),
			zap.String("reason", string(verification.Reason)),
		)
		return nil, domain.Wrapf(domain.ErrPaymentNotVerified, "%s", verification.Reason)
	}
	paymentTxRef := verification.MatchedTx.TxRef

	// 4. Record, actuate, close
	record, err := c.store.OpenAction(ctx, domain.ActionRecord{
		OwnerID:      ownerID,
		AssetAddress: asset.ChainAddress,
		Kind:         kind,
		PaymentTxRef: &paymentTxRef,
		Outcome:      domain.ActionOutcomePending,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPaymentConsumed):
			return nil, domain.Wrapf(domain.ErrPaymentNotVerified, "payment %s was already used", paymentTxRef)
		case errors.Is(err, store.ErrActionInFlight):
			return nil, domain.Wrap(domain.ErrActuationIndeterminate, err)
		}
		return nil, fmt.Errorf("failed to open action record: %w", err)
	}

	logger.InfoCtx(ctx, "Payment verified, actuating",
		zap.String("paymentTxRef", paymentTxRef),
		zap.String("address", asset.ChainAddress),
		zap.Uint64("recordID", record.ID),
	)

	var result *actuator.ActuationResult
	switch kind {
	case domain.ActionKindEnableTrading:
		result, err = c.actuator.EnableTrading(actuator.WithSubmitHook(ctx, c.recordTxRef(record.ID)), asset.ChainAddress)
	case domain.ActionKindSubmitListing:
		result, err = c.actuator.SubmitListing(ctx, asset.Identity, asset.ChainAddress, asset.LogoRef)
	default:
		err = &actuator.FailedError{Err: fmt.Errorf("unsupported action kind %s", kind)}
	}
	if err != nil {
		return nil, c.handleActuationError(ctx, record, err)
	}

	err = c.store.CompleteAction(ctx, store.CompleteActionInput{
		ID:           record.ID,
		Outcome:      domain.ActionOutcomeConfirmed,
		ChainTxRef:   &result.TxRef,
		AssetAddress: asset.ChainAddress,
		FromState:    kind.RequiredState(),
		ToState:      kind.TargetState(),
	})
	if err != nil {
		return nil, c.consistencyFault(ctx, ownerID, kind, result.TxRef,
			fmt.Errorf("%s succeeded but failed to record it: %w", kind, err))
	}

	asset.State = kind.TargetState()
	asset.UpdatedAt = c.clock.Now()
	record.Outcome = domain.ActionOutcomeConfirmed
	record.ChainTxRef = &result.TxRef

	logger.InfoCtx(ctx, "Action confirmed",
		zap.String("txRef", result.TxRef),
		zap.String("state", string(asset.State)),
	)
	c.publish(ctx, messaging.NewActionEvent(*record, c.clock.Now()))
	c.publish(ctx, messaging.NewAssetStateEvent(*asset, c.clock.Now()))

	return &ConfirmResult{
		Status:       ConfirmStatusDone,
		Asset:        *asset,
		TxRef:        result.TxRef,
		PaymentTxRef: paymentTxRef,
	}, nil
}

// recordTxRef stores a transaction hash on the pending record before the transaction is sent
func (c *coordinator) recordTxRef(recordID uint64) func(ctx context.Context, txRef string) error {
	return func(ctx context.Context, txRef string) error {
		if err := c.store.SetActionTxRef(ctx, recordID, txRef); err != nil {
			return fmt.Errorf("failed to record transaction on action %d: %w", recordID, err)
		}
		logger.DebugCtx(ctx, "Recorded transaction before broadcast",
			zap.Uint64("recordID", recordID),
			zap.String("txRef", txRef),
		)
		return nil
	}
}

// handleActuationError closes or annotates the pending record after a failed actuation
func (c *coordinator) handleActuationError(ctx context.Context, record *domain.ActionRecord, err error) error {
	var failed *actuator.FailedError
	if errors.As(err, &failed) {
		input := store.CompleteActionInput{ID: record.ID, Outcome: domain.ActionOutcomeFailed}
		if failed.TxRef != "" {
			input.ChainTxRef = &failed.TxRef
		}
		if cerr := c.store.CompleteAction(ctx, input); cerr != nil {
			// A pending record blocks retries until the reconciler abandons it
			logger.ErrorCtx(ctx, fmt.Errorf("failed to record failed action: %w", cerr),
				zap.Uint64("recordID", record.ID))
		}

		logger.WarnCtx(ctx, "Actuation failed", zap.Error(err), zap.String("kind", string(record.Kind)))
		record.Outcome = domain.ActionOutcomeFailed
		record.ChainTxRef = input.ChainTxRef
		c.publish(ctx, messaging.NewActionEvent(*record, c.clock.Now()))
		return domain.Wrap(domain.ErrActuationFailed, err)
	}

	// Anything else may have reached the chain, keep the record pending for the reconciler
	var indeterminate *actuator.IndeterminateError
	if errors.As(err, &indeterminate) && indeterminate.TxRef != "" {
		if serr := c.store.SetActionTxRef(ctx, record.ID, indeterminate.TxRef); serr != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to attach tx ref to pending action: %w", serr),
				zap.Uint64("recordID", record.ID),
				zap.String("txRef", indeterminate.TxRef))
		} else {
			record.ChainTxRef = &indeterminate.TxRef
		}
	}

	logger.WarnCtx(ctx, "Actuation outcome unknown", zap.Error(err), zap.String("kind", string(record.Kind)))
	c.publish(ctx, messaging.NewActionEvent(*record, c.clock.Now()))
	return domain.Wrap(domain.ErrActuationIndeterminate, err)
}

// consistencyFault reports a disagreement between the chain and the store to operators
func (c *coordinator) consistencyFault(ctx context.Context, ownerID string, kind domain.ActionKind, txRef string, cause error) error {
	logger.ErrorCtx(ctx, fmt.Errorf("consistency fault: %w", cause),
		zap.String("kind", string(kind)),
		zap.String("txRef", txRef),
	)
	c.publish(ctx, messaging.NewConsistencyFaultEvent(ownerID, kind, txRef, cause, c.clock.Now()))
	return domain.Wrap(domain.ErrConsistencyFault, cause)
}

// publish sends an event, a broker failure never changes the operation result
func (c *coordinator) publish(ctx context.Context, event *messaging.Event) {
	if err := c.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish event",
			zap.String("subject", event.Subject()),
			zap.Error(err),
		)
	}
}
