package actuator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/providers/ethereum"
	"github.com/feral-file/ff-launchpad/internal/providers/listing"
)

// DeployResult is a confirmed token deployment
type DeployResult struct {
	ContractAddress string
	TxRef           string
}

// ActuationResult is a confirmed privileged action
type ActuationResult struct {
	// TxRef is the chain transaction hash, or the listing submission id
	TxRef string
}

// IndeterminateError is returned when an action was submitted but its outcome is unknown.
// The caller must record it as pending and must not retry it.
type IndeterminateError struct {
	TxRef string
	// ContractAddress is the predicted address of a pending deployment
	ContractAddress string
	Err             error
}

func (e *IndeterminateError) Error() string {
	if e.TxRef == "" {
		return fmt.Sprintf("actuation outcome unknown: %v", e.Err)
	}
	return fmt.Sprintf("actuation outcome unknown for %s: %v", e.TxRef, e.Err)
}

func (e *IndeterminateError) Unwrap() error {
	return e.Err
}

func (e *IndeterminateError) Is(target error) bool {
	return domain.KindOf(target) == domain.KindActuationIndeterminate
}

// FailedError is returned when an action definitely did not take effect
type FailedError struct {
	// TxRef is set when a transaction was mined but reverted
	TxRef string
	Err   error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("actuation failed: %v", e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

func (e *FailedError) Is(target error) bool {
	return domain.KindOf(target) == domain.KindActuationFailed
}

// ResolutionStatus is the observed status of a previously submitted action
type ResolutionStatus string

const (
	ResolutionPending   ResolutionStatus = "pending"
	ResolutionConfirmed ResolutionStatus = "confirmed"
	ResolutionFailed    ResolutionStatus = "failed"
	// ResolutionUnknown means the chain or the listing service knows nothing about the action
	ResolutionUnknown ResolutionStatus = "unknown"
)

// Resolution is the observed state of a pending action
type Resolution struct {
	Status          ResolutionStatus
	ContractAddress string
}

// Actuator performs privileged actions on behalf of the platform
//
//go:generate mockgen -source=actuator.go -destination=../mocks/actuator.go -package=mocks -mock_names=Actuator=MockActuator
type Actuator interface {
	// Deploy deploys a new token contract with trading locked
	Deploy(ctx context.Context, identity domain.Identity, wallets domain.WalletSet) (*DeployResult, error)

	// EnableTrading enables trading on a deployed token contract
	EnableTrading(ctx context.Context, address string) (*ActuationResult, error)

	// SubmitListing submits a listing request for a deployed token
	SubmitListing(ctx context.Context, identity domain.Identity, address string, logoRef string) (*ActuationResult, error)

	// Resolve observes the current status of a previously submitted action
	Resolve(ctx context.Context, kind domain.ActionKind, txRef string) (*Resolution, error)
}

// WithSubmitHook returns a context under which every chain transaction is reported
// to hook before it is broadcast. A hook error aborts the action as failed.
func WithSubmitHook(ctx context.Context, hook func(ctx context.Context, txRef string) error) context.Context {
	return ethereum.WithSubmitHook(ctx, hook)
}

type actuator struct {
	chain   domain.Chain
	token   ethereum.TokenClient
	listing listing.Client
}

// New creates an actuator backed by the token contract client and the listing client
func New(chain domain.Chain, token ethereum.TokenClient, listingClient listing.Client) Actuator {
	return &actuator{
		chain:   chain,
		token:   token,
		listing: listingClient,
	}
}

func (a *actuator) Deploy(ctx context.Context, identity domain.Identity, wallets domain.WalletSet) (*DeployResult, error) {
	result, err := a.token.Deploy(ctx, identity, wallets)
	if err != nil {
		return nil, classifyChainError(err)
	}

	return &DeployResult{
		ContractAddress: result.ContractAddress,
		TxRef:           result.TxHash,
	}, nil
}

func (a *actuator) EnableTrading(ctx context.Context, address string) (*ActuationResult, error) {
	result, err := a.token.EnableTrading(ctx, address)
	if err != nil {
		return nil, classifyChainError(err)
	}

	return &ActuationResult{TxRef: result.TxHash}, nil
}

func (a *actuator) SubmitListing(ctx context.Context, identity domain.Identity, address string, logoRef string) (*ActuationResult, error) {
	// One listing per asset, so the asset address makes a stable idempotency key
	reference := domain.LISTING_REFERENCE_PREFIX + "-" + string(a.chain) + ":" + strings.ToLower(address)
	submission := listing.NewSubmission(a.chain, identity, address, logoRef, reference)

	receipt, err := a.listing.Submit(ctx, submission)
	if err != nil {
		switch {
		case errors.Is(err, listing.ErrRejected):
			return nil, &FailedError{Err: err}
		default:
			// Unreachable or unreadable answers may hide an accepted submission
			return nil, &IndeterminateError{Err: err}
		}
	}

	logger.InfoCtx(ctx, "Listing submitted",
		zap.String("submissionID", receipt.SubmissionID),
		zap.String("status", string(receipt.Status)),
		zap.String("address", address),
	)

	return &ActuationResult{TxRef: receipt.SubmissionID}, nil
}

func (a *actuator) Resolve(ctx context.Context, kind domain.ActionKind, txRef string) (*Resolution, error) {
	if txRef == "" {
		return &Resolution{Status: ResolutionUnknown}, nil
	}

	if kind == domain.ActionKindSubmitListing {
		status, err := a.listing.Status(ctx, txRef)
		if err != nil {
			return nil, err
		}
		// A received submission has been taken by the listing service, which is the action
		if status == listing.StatusRejected {
			return &Resolution{Status: ResolutionFailed}, nil
		}
		return &Resolution{Status: ResolutionConfirmed}, nil
	}

	status, err := a.token.TransactionStatus(ctx, txRef)
	if err != nil {
		return nil, err
	}

	switch status.Status {
	case ethereum.TxStatusConfirmed:
		return &Resolution{Status: ResolutionConfirmed, ContractAddress: status.ContractAddress}, nil
	case ethereum.TxStatusReverted:
		return &Resolution{Status: ResolutionFailed}, nil
	case ethereum.TxStatusPending:
		return &Resolution{Status: ResolutionPending}, nil
	default:
		return &Resolution{Status: ResolutionUnknown}, nil
	}
}

// classifyChainError maps token client errors onto actuation outcomes
func classifyChainError(err error) error {
	var pending *ethereum.PendingError
	if errors.As(err, &pending) {
		return &IndeterminateError{
			TxRef:           pending.TxHash,
			ContractAddress: pending.ContractAddress,
			Err:             err,
		}
	}

	var reverted *ethereum.RevertedError
	if errors.As(err, &reverted) {
		return &FailedError{TxRef: reverted.TxHash, Err: err}
	}

	if errors.Is(err, ethereum.ErrNotSubmitted) {
		return &FailedError{Err: err}
	}

	// Anything else may have left a transaction behind
	return &IndeterminateError{Err: err}
}
