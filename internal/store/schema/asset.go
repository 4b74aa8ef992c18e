package schema

import (
	"time"
)

// LifecycleState is the lifecycle state of an asset
type LifecycleState string

const (
	LifecycleStateCreated          LifecycleState = "created"
	LifecycleStateTradingLocked    LifecycleState = "trading_locked"
	LifecycleStateTradingEnabled   LifecycleState = "trading_enabled"
	LifecycleStateListingSubmitted LifecycleState = "listing_submitted"
)

// Asset represents the assets table - one deployed token per owner
type Asset struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerID is the external user identifier, one asset per owner
	OwnerID string `gorm:"column:owner_id;not null;uniqueIndex;type:text"`
	// Name is the token name passed to the constructor
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the upper-cased token symbol
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// TotalSupply is the whole-token supply minted at deployment
	TotalSupply uint64 `gorm:"column:total_supply;not null"`
	// ChainAddress is the checksummed contract address
	ChainAddress string `gorm:"column:chain_address;not null;uniqueIndex;type:text"`
	// ReferenceCode correlates payments with the asset
	ReferenceCode string `gorm:"column:reference_code;not null;uniqueIndex;type:text"`
	// LifecycleState only moves forward
	LifecycleState LifecycleState `gorm:"column:lifecycle_state;not null;type:text"`
	// LogoRef points at the processed logo, if any
	LogoRef *string `gorm:"column:logo_ref;type:text"`
	// CreatedAt is the timestamp when the deployment was confirmed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last lifecycle change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
