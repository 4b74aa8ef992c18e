package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ActionKind is the kind of privileged action
type ActionKind string

const (
	ActionKindDeploy        ActionKind = "deploy"
	ActionKindEnableTrading ActionKind = "enable_trading"
	ActionKindSubmitListing ActionKind = "submit_listing"
)

// ActionOutcome is the outcome of an action attempt
type ActionOutcome string

const (
	// ActionOutcomePending is an action submitted without an observed outcome
	ActionOutcomePending ActionOutcome = "pending"
	// ActionOutcomeConfirmed is an action that took effect
	ActionOutcomeConfirmed ActionOutcome = "confirmed"
	// ActionOutcomeFailed is an action that did not take effect and may be retried
	ActionOutcomeFailed ActionOutcome = "failed"
)

// ActionRecord represents the action_records table - the append-only ledger of privileged actions.
// At most one pending or confirmed record exists per (asset_address, action_kind).
type ActionRecord struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerID is the owner the action was performed for
	OwnerID string `gorm:"column:owner_id;not null;type:text;index"`
	// AssetAddress is the contract address; nil for deployments that never got one
	AssetAddress *string `gorm:"column:asset_address;type:text"`
	// ActionKind is deploy, enable_trading or submit_listing
	ActionKind ActionKind `gorm:"column:action_kind;not null;type:text"`
	// ChainTxRef is the transaction hash, or the listing submission id
	ChainTxRef *string `gorm:"column:chain_tx_ref;type:text"`
	// PaymentTxRef is the payment transaction that paid for the action
	PaymentTxRef *string `gorm:"column:payment_tx_ref;type:text"`
	// Outcome is pending, confirmed or failed
	Outcome ActionOutcome `gorm:"column:outcome;not null;type:text;index"`
	// Details carries what is needed to finish a pending deployment
	Details datatypes.JSON `gorm:"column:details;type:jsonb"`
	// CreatedAt is the timestamp when the record was opened
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when the record was last changed
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ActionRecord model
func (ActionRecord) TableName() string {
	return "action_records"
}
