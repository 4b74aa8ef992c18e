package store

import (
	"context"
	"errors"
	"time"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

var (
	// ErrActionInFlight is returned when a pending or confirmed record already exists for the asset and kind
	ErrActionInFlight = errors.New("action already pending or confirmed")

	// ErrPaymentConsumed is returned when the payment already paid for another action
	ErrPaymentConsumed = errors.New("payment already consumed")

	// ErrActionNotPending is returned when completing a record that is not pending anymore
	ErrActionNotPending = errors.New("action is not pending")

	// ErrStateConflict is returned when the asset is not in the expected lifecycle state
	ErrStateConflict = errors.New("asset lifecycle state conflict")

	// ErrAssetConflict is returned when a new asset collides with an existing owner, address or reference code
	ErrAssetConflict = errors.New("asset conflicts with an existing asset")
)

// CreateAssetInput is the input for storing a confirmed deployment
type CreateAssetInput struct {
	Asset domain.Asset
	// Record is the confirmed deploy record. A non-zero ID completes that pending record instead of inserting one.
	Record domain.ActionRecord
}

// CompleteActionInput is the input for closing a pending action record
type CompleteActionInput struct {
	ID         uint64
	Outcome    domain.ActionOutcome
	ChainTxRef *string
	// AssetAddress, FromState and ToState advance the asset in the same transaction when ToState is set
	AssetAddress string
	FromState    domain.LifecycleState
	ToState      domain.LifecycleState
}

// Store defines the interface for asset and action ledger persistence
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetAssetByOwner retrieves the asset of an owner, nil when the owner has none
	GetAssetByOwner(ctx context.Context, ownerID string) (*domain.Asset, error)
	// GetAssetByAddress retrieves an asset by contract address, nil when unknown
	GetAssetByAddress(ctx context.Context, address string) (*domain.Asset, error)
	// ReferenceCodeExists reports whether a reference code is taken by an asset or a pending deployment
	ReferenceCodeExists(ctx context.Context, code string) (bool, error)
	// CreateAsset atomically stores an asset and its confirmed deploy record
	CreateAsset(ctx context.Context, input CreateAssetInput) (*domain.ActionRecord, error)

	// GetActiveAction retrieves the pending or confirmed record for an asset and kind, nil when none
	GetActiveAction(ctx context.Context, address string, kind domain.ActionKind) (*domain.ActionRecord, error)
	// GetPendingDeploy retrieves the pending deploy record of an owner, nil when none
	GetPendingDeploy(ctx context.Context, ownerID string) (*domain.ActionRecord, error)
	// OpenAction appends a record to the ledger
	OpenAction(ctx context.Context, record domain.ActionRecord) (*domain.ActionRecord, error)
	// CompleteAction closes a pending record and optionally advances the asset
	CompleteAction(ctx context.Context, input CompleteActionInput) error
	// SetActionTxRef attaches the chain reference to a pending record
	SetActionTxRef(ctx context.Context, id uint64, txRef string) error
	// GetAction retrieves a record by ID, nil when unknown
	GetAction(ctx context.Context, id uint64) (*domain.ActionRecord, error)
	// ListActionsByOwner lists the records of an owner, oldest first
	ListActionsByOwner(ctx context.Context, ownerID string) ([]domain.ActionRecord, error)
	// ListPendingActions lists pending records created before olderThan, oldest first
	ListPendingActions(ctx context.Context, olderThan time.Time, limit int) ([]domain.ActionRecord, error)
	// IsPaymentConsumed reports whether a payment is recorded on a pending or confirmed action
	IsPaymentConsumed(ctx context.Context, paymentTxRef string) (bool, error)
}
