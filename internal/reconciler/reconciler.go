package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/actuator"
	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/messaging"
	"github.com/feral-file/ff-launchpad/internal/store"
)

// Reconciler is a long-running background task resolving actions whose outcome was unknown
//
//go:generate mockgen -source=reconciler.go -destination=../mocks/reconciler.go -package=mocks -mock_names=Reconciler=MockReconciler
type Reconciler interface {
	// Start begins the main loop
	// This is a blocking call that runs until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the reconciler, waiting for in-progress work to complete
	Stop(ctx context.Context) error

	// Name returns the reconciler's name for logging and identification
	Name() string
}

// Config holds configuration for the pending action reconciler
type Config struct {
	Interval time.Duration // Time to sleep between cycles
	// MinAge keeps the reconciler away from actions the coordinator is still working on
	MinAge time.Duration
	// AbandonAfter marks actions unknown to the chain as failed once they are this old
	AbandonAfter   time.Duration
	BatchSize      int
	WorkerPoolSize int
}

type outcome int

const (
	outcomeResolved outcome = iota
	outcomeFailed
	outcomeWaiting
	outcomeError
)

type pendingActionReconciler struct {
	config    Config
	store     store.Store
	actuator  actuator.Actuator
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New creates a pending action reconciler
func New(cfg Config, st store.Store, act actuator.Actuator, publisher messaging.Publisher, clock adapter.Clock) Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 4
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &pendingActionReconciler{
		config:    cfg,
		store:     st,
		actuator:  act,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the reconciler's name
func (r *pendingActionReconciler) Name() string {
	return "pending-action-reconciler"
}

// Start runs reconcile cycles until the context is canceled or Stop is called
func (r *pendingActionReconciler) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("reconciler already running")
	}
	defer func() {
		r.running.Store(false)
		close(r.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting pending action reconciler",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("min_age", r.config.MinAge),
		zap.Duration("abandon_after", r.config.AbandonAfter),
		zap.Int("batch_size", r.config.BatchSize),
		zap.Int("worker_pool_size", r.config.WorkerPoolSize),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Reconciler stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-r.stopChan:
			logger.InfoCtx(ctx, "Reconciler stop requested")
			return nil
		default:
			if err := r.runCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// Stop gracefully stops the reconciler with timeout support
func (r *pendingActionReconciler) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping reconciler")

	// Signal stop to the main loop
	close(r.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-r.stoppedCh:
		logger.InfoCtx(ctx, "Reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciler stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runCycle reconciles one batch and sleeps until the next cycle
func (r *pendingActionReconciler) runCycle(ctx context.Context) error {
	if err := r.reconcileBatch(ctx); err != nil {
		return err
	}

	// Use context-aware sleep so we can be interrupted
	if !r.sleep(ctx, r.config.Interval) {
		return ctx.Err()
	}
	return nil
}

// reconcileBatch resolves a batch of pending actions on the worker pool
func (r *pendingActionReconciler) reconcileBatch(ctx context.Context) error {
	startTime := r.clock.Now()

	records, err := r.store.ListPendingActions(ctx, startTime.Add(-r.config.MinAge), r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending actions: %w", err)
	}
	if len(records) == 0 {
		logger.DebugCtx(ctx, "No pending actions to reconcile")
		return nil
	}

	logger.InfoCtx(ctx, "Found pending actions", zap.Int("count", len(records)))

	var resolvedCount, failedCount, waitingCount, errorCount atomic.Int32

	r.pool = pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.BatchSize),
		pond.WithContext(ctx),
	)
	for _, record := range records {
		r.pool.Submit(func() {
			switch r.reconcile(ctx, record) {
			case outcomeResolved:
				resolvedCount.Add(1)
			case outcomeFailed:
				failedCount.Add(1)
			case outcomeWaiting:
				waitingCount.Add(1)
			default:
				errorCount.Add(1)
			}
		})
	}

	// Wait for all records to be processed
	r.pool.StopAndWait()

	logger.InfoCtx(ctx, "Reconcile cycle completed",
		zap.Duration("duration", r.clock.Since(startTime)),
		zap.Int("total", len(records)),
		zap.Int32("resolved", resolvedCount.Load()),
		zap.Int32("failed", failedCount.Load()),
		zap.Int32("waiting", waitingCount.Load()),
		zap.Int32("errors", errorCount.Load()),
	)
	return nil
}

// sleep sleeps for the given duration but can be interrupted
// Returns true if sleep completed normally
func (r *pendingActionReconciler) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-r.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-r.stopChan:
		return false
	}
}

// reconcile resolves a single pending action
func (r *pendingActionReconciler) reconcile(ctx context.Context, record domain.ActionRecord) outcome {
	ctx = logger.ContextWithAction(ctx, logger.ActionInfo{
		OwnerID: record.OwnerID,
		Action:  string(record.Kind),
	})

	txRef := ""
	if record.ChainTxRef != nil {
		txRef = *record.ChainTxRef
	}

	resolution, err := r.actuator.Resolve(ctx, record.Kind, txRef)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to resolve pending action, will retry next cycle",
			zap.Uint64("recordID", record.ID),
			zap.String("txRef", txRef),
			zap.Error(err),
		)
		return outcomeError
	}

	age := r.clock.Since(record.CreatedAt)

	switch resolution.Status {
	case actuator.ResolutionConfirmed:
		return r.confirm(ctx, record, txRef, resolution)

	case actuator.ResolutionFailed:
		logger.InfoCtx(ctx, "Pending action failed on chain", zap.Uint64("recordID", record.ID), zap.String("txRef", txRef))
		return r.fail(ctx, record)

	case actuator.ResolutionPending:
		// Known to the node, it may still be mined
		if age > r.config.AbandonAfter {
			logger.WarnCtx(ctx, "Action still pending past abandon age",
				zap.Uint64("recordID", record.ID),
				zap.String("txRef", txRef),
				zap.Duration("age", age),
			)
		}
		return outcomeWaiting

	default:
		if record.Kind == domain.ActionKindSubmitListing && txRef == "" {
			// The listing service may hold the submission, an operator has to check
			logger.WarnCtx(ctx, "Pending listing without submission id needs manual review",
				zap.Uint64("recordID", record.ID),
				zap.String("address", record.AssetAddress),
				zap.Duration("age", age),
			)
			return outcomeWaiting
		}
		if age <= r.config.AbandonAfter {
			return outcomeWaiting
		}
		logger.WarnCtx(ctx, "Abandoning action unknown to the chain",
			zap.Uint64("recordID", record.ID),
			zap.String("txRef", txRef),
			zap.Duration("age", age),
		)
		return r.fail(ctx, record)
	}
}

func (r *pendingActionReconciler) confirm(ctx context.Context, record domain.ActionRecord, txRef string, resolution *actuator.Resolution) outcome {
	if record.Kind == domain.ActionKindDeploy {
		return r.confirmDeploy(ctx, record, txRef, resolution)
	}

	err := r.withRetry(ctx, func() error {
		return r.store.CompleteAction(ctx, store.CompleteActionInput{
			ID:           record.ID,
			Outcome:      domain.ActionOutcomeConfirmed,
			AssetAddress: record.AssetAddress,
			FromState:    record.Kind.RequiredState(),
			ToState:      record.Kind.TargetState(),
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrActionNotPending) {
			return outcomeWaiting
		}
		r.consistencyFault(ctx, record, txRef, fmt.Errorf("confirmed %s could not be recorded: %w", record.Kind, err))
		return outcomeError
	}

	record.Outcome = domain.ActionOutcomeConfirmed
	r.publish(ctx, messaging.NewActionEvent(record, r.clock.Now()))
	if asset, err := r.store.GetAssetByAddress(ctx, record.AssetAddress); err == nil && asset != nil {
		r.publish(ctx, messaging.NewAssetStateEvent(*asset, r.clock.Now()))
	}

	logger.InfoCtx(ctx, "Pending action confirmed", zap.Uint64("recordID", record.ID), zap.String("txRef", txRef))
	return outcomeResolved
}

func (r *pendingActionReconciler) confirmDeploy(ctx context.Context, record domain.ActionRecord, txRef string, resolution *actuator.Resolution) outcome {
	address := resolution.ContractAddress
	if address == "" {
		address = record.AssetAddress
	}
	if record.Details == nil || address == "" {
		r.consistencyFault(ctx, record, txRef, fmt.Errorf("confirmed deployment %d lacks details or address", record.ID))
		return outcomeError
	}

	asset := domain.Asset{
		OwnerID:       record.OwnerID,
		Identity:      record.Details.Identity,
		ChainAddress:  address,
		ReferenceCode: record.Details.ReferenceCode,
		State:         domain.StateTradingLocked,
		LogoRef:       record.Details.LogoRef,
	}

	var confirmed *domain.ActionRecord
	err := r.withRetry(ctx, func() error {
		var err error
		confirmed, err = r.store.CreateAsset(ctx, store.CreateAssetInput{
			Asset:  asset,
			Record: domain.ActionRecord{ID: record.ID},
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrActionNotPending) {
			return outcomeWaiting
		}
		r.consistencyFault(ctx, record, txRef, fmt.Errorf("deployed %s but failed to store asset: %w", address, err))
		return outcomeError
	}

	r.publish(ctx, messaging.NewActionEvent(*confirmed, r.clock.Now()))
	r.publish(ctx, messaging.NewAssetStateEvent(asset, r.clock.Now()))

	logger.InfoCtx(ctx, "Pending deployment confirmed",
		zap.Uint64("recordID", record.ID),
		zap.String("address", address),
		zap.String("txRef", txRef),
	)
	return outcomeResolved
}

func (r *pendingActionReconciler) fail(ctx context.Context, record domain.ActionRecord) outcome {
	err := r.withRetry(ctx, func() error {
		return r.store.CompleteAction(ctx, store.CompleteActionInput{
			ID:      record.ID,
			Outcome: domain.ActionOutcomeFailed,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrActionNotPending) {
			return outcomeWaiting
		}
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mark action failed: %w", err), zap.Uint64("recordID", record.ID))
		return outcomeError
	}

	record.Outcome = domain.ActionOutcomeFailed
	r.publish(ctx, messaging.NewActionEvent(record, r.clock.Now()))
	return outcomeFailed
}

// withRetry retries transient store failures with exponential backoff
func (r *pendingActionReconciler) withRetry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Store update failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	return backoff.RetryNotify(func() error {
		err := operation()
		if errors.Is(err, store.ErrActionNotPending) ||
			errors.Is(err, store.ErrStateConflict) ||
			errors.Is(err, store.ErrAssetConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), notifyOnError)
}

func (r *pendingActionReconciler) consistencyFault(ctx context.Context, record domain.ActionRecord, txRef string, cause error) {
	logger.ErrorCtx(ctx, fmt.Errorf("consistency fault: %w", cause),
		zap.Uint64("recordID", record.ID),
		zap.String("txRef", txRef),
	)
	r.publish(ctx, messaging.NewConsistencyFaultEvent(record.OwnerID, record.Kind, txRef, cause, r.clock.Now()))
}

func (r *pendingActionReconciler) publish(ctx context.Context, event *messaging.Event) {
	if err := r.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish event", zap.String("subject", event.Subject()), zap.Error(err))
	}
}
