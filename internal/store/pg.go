package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/store/schema"
)

var activeOutcomes = []schema.ActionOutcome{schema.ActionOutcomePending, schema.ActionOutcomeConfirmed}

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance.
// The connection should be opened with TranslateError so unique violations are recognised.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	// Set defaults if not provided
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505")
}

// GetAssetByOwner retrieves the asset of an owner
func (s *pgStore) GetAssetByOwner(ctx context.Context, ownerID string) (*domain.Asset, error) {
	var row schema.Asset
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	asset := toDomainAsset(row)
	return &asset, nil
}

// GetAssetByAddress retrieves an asset by contract address
func (s *pgStore) GetAssetByAddress(ctx context.Context, address string) (*domain.Asset, error) {
	var row schema.Asset
	err := s.db.WithContext(ctx).Where("lower(chain_address) = lower(?)", address).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	asset := toDomainAsset(row)
	return &asset, nil
}

// ReferenceCodeExists checks assets and pending deployments for the reference code
func (s *pgStore) ReferenceCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM assets WHERE reference_code = ?)
		    OR EXISTS (
		        SELECT 1 FROM action_records
		        WHERE action_kind = ? AND outcome = ? AND details->>'reference_code' = ?
		    )`,
		code, schema.ActionKindDeploy, schema.ActionOutcomePending, code,
	).Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reference code: %w", err)
	}

	return exists, nil
}

// CreateAsset stores the asset and its confirmed deploy record in one transaction
func (s *pgStore) CreateAsset(ctx context.Context, input CreateAssetInput) (*domain.ActionRecord, error) {
	asset := toSchemaAsset(input.Asset)
	if asset.ChainAddress == "" {
		return nil, fmt.Errorf("%w: empty chain address", ErrAssetConflict)
	}

	record, err := toSchemaActionRecord(input.Record)
	if err != nil {
		return nil, err
	}
	record.ActionKind = schema.ActionKindDeploy
	record.Outcome = schema.ActionOutcomeConfirmed
	record.AssetAddress = &asset.ChainAddress
	record.OwnerID = asset.OwnerID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&asset).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", ErrAssetConflict, err)
			}
			return fmt.Errorf("failed to create asset: %w", err)
		}

		if record.ID == 0 {
			if err := tx.Create(&record).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %v", ErrActionInFlight, err)
				}
				return fmt.Errorf("failed to create deploy record: %w", err)
			}
			return nil
		}

		// Finish the pending deploy record left by an indeterminate deployment
		updates := map[string]interface{}{
			"outcome":       schema.ActionOutcomeConfirmed,
			"asset_address": asset.ChainAddress,
		}
		if record.ChainTxRef != nil {
			updates["chain_tx_ref"] = *record.ChainTxRef
		}
		result := tx.Model(&schema.ActionRecord{}).
			Where("id = ? AND outcome = ?", record.ID, schema.ActionOutcomePending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to complete deploy record: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrActionNotPending
		}

		return tx.Where("id = ?", record.ID).First(&record).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := toDomainActionRecord(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetActiveAction retrieves the pending or confirmed record for an asset and kind
func (s *pgStore) GetActiveAction(ctx context.Context, address string, kind domain.ActionKind) (*domain.ActionRecord, error) {
	var row schema.ActionRecord
	err := s.db.WithContext(ctx).
		Where("lower(asset_address) = lower(?) AND action_kind = ? AND outcome IN ?", address, schema.ActionKind(kind), activeOutcomes).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active action: %w", err)
	}

	record, err := toDomainActionRecord(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetPendingDeploy retrieves the pending deploy record of an owner
func (s *pgStore) GetPendingDeploy(ctx context.Context, ownerID string) (*domain.ActionRecord, error) {
	var row schema.ActionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND action_kind = ? AND outcome = ?", ownerID, schema.ActionKindDeploy, schema.ActionOutcomePending).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending deploy: %w", err)
	}

	record, err := toDomainActionRecord(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// errDuplicateAction marks a unique index violation on action_records.
// The translated error no longer names the index, so the cause is looked up after the transaction.
var errDuplicateAction = errors.New("duplicate active action")

// classifyActionConflict maps a lost insert race to the store error the check-first path would have returned
func (s *pgStore) classifyActionConflict(ctx context.Context, row schema.ActionRecord, cause error) error {
	if row.AssetAddress != nil {
		active, err := s.GetActiveAction(ctx, *row.AssetAddress, domain.ActionKind(row.ActionKind))
		if err == nil && active != nil {
			return fmt.Errorf("%w: %v", ErrActionInFlight, cause)
		}
	}
	if row.PaymentTxRef != nil {
		consumed, err := s.IsPaymentConsumed(ctx, *row.PaymentTxRef)
		if err == nil && consumed {
			return fmt.Errorf("%w: %v", ErrPaymentConsumed, cause)
		}
	}
	return fmt.Errorf("%w: %v", ErrActionInFlight, cause)
}

// OpenAction appends a record, refusing a second active record for the same asset and kind
func (s *pgStore) OpenAction(ctx context.Context, record domain.ActionRecord) (*domain.ActionRecord, error) {
	row, err := toSchemaActionRecord(record)
	if err != nil {
		return nil, err
	}
	row.ID = 0

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.Outcome.Active() {
			var count int64
			if row.AssetAddress != nil {
				if err := tx.Model(&schema.ActionRecord{}).
					Where("lower(asset_address) = lower(?) AND action_kind = ? AND outcome IN ?", *row.AssetAddress, row.ActionKind, activeOutcomes).
					Count(&count).Error; err != nil {
					return fmt.Errorf("failed to check active actions: %w", err)
				}
				if count > 0 {
					return ErrActionInFlight
				}
			}

			if row.ActionKind == schema.ActionKindDeploy {
				if err := tx.Model(&schema.ActionRecord{}).
					Where("owner_id = ? AND action_kind = ? AND outcome IN ?", row.OwnerID, schema.ActionKindDeploy, activeOutcomes).
					Count(&count).Error; err != nil {
					return fmt.Errorf("failed to check active deployments: %w", err)
				}
				if count > 0 {
					return ErrActionInFlight
				}
			}

			if row.PaymentTxRef != nil {
				if err := tx.Model(&schema.ActionRecord{}).
					Where("lower(payment_tx_ref) = lower(?) AND outcome IN ?", *row.PaymentTxRef, activeOutcomes).
					Count(&count).Error; err != nil {
					return fmt.Errorf("failed to check payment usage: %w", err)
				}
				if count > 0 {
					return ErrPaymentConsumed
				}
			}
		}

		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", errDuplicateAction, err)
			}
			return fmt.Errorf("failed to create action record: %w", err)
		}
		return nil
	})
	if errors.Is(err, errDuplicateAction) {
		return nil, s.classifyActionConflict(ctx, row, err)
	}
	if err != nil {
		return nil, err
	}

	opened, err := toDomainActionRecord(row)
	if err != nil {
		return nil, err
	}
	return &opened, nil
}

// CompleteAction closes a pending record and advances the asset when requested
func (s *pgStore) CompleteAction(ctx context.Context, input CompleteActionInput) error {
	if input.Outcome != domain.ActionOutcomeConfirmed && input.Outcome != domain.ActionOutcomeFailed {
		return fmt.Errorf("invalid completion outcome: %s", input.Outcome)
	}
	advance := input.ToState != "" && input.Outcome == domain.ActionOutcomeConfirmed
	if advance && !domain.CanTransition(input.FromState, input.ToState) {
		return fmt.Errorf("%w: %s -> %s", ErrStateConflict, input.FromState, input.ToState)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"outcome": schema.ActionOutcome(input.Outcome),
		}
		if input.ChainTxRef != nil {
			updates["chain_tx_ref"] = *input.ChainTxRef
		}

		result := tx.Model(&schema.ActionRecord{}).
			Where("id = ? AND outcome = ?", input.ID, schema.ActionOutcomePending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to complete action record: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrActionNotPending
		}

		if !advance {
			return nil
		}

		result = tx.Model(&schema.Asset{}).
			Where("lower(chain_address) = lower(?) AND lifecycle_state = ?", input.AssetAddress, schema.LifecycleState(input.FromState)).
			Update("lifecycle_state", schema.LifecycleState(input.ToState))
		if result.Error != nil {
			return fmt.Errorf("failed to advance asset: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStateConflict
		}

		return nil
	})
}

// SetActionTxRef attaches the chain reference to a pending record
func (s *pgStore) SetActionTxRef(ctx context.Context, id uint64, txRef string) error {
	result := s.db.WithContext(ctx).Model(&schema.ActionRecord{}).
		Where("id = ? AND outcome = ?", id, schema.ActionOutcomePending).
		Update("chain_tx_ref", txRef)
	if result.Error != nil {
		return fmt.Errorf("failed to set action tx ref: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrActionNotPending
	}
	return nil
}

// GetAction retrieves a record by ID
func (s *pgStore) GetAction(ctx context.Context, id uint64) (*domain.ActionRecord, error) {
	var row schema.ActionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get action: %w", err)
	}

	record, err := toDomainActionRecord(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListActionsByOwner lists the records of an owner
func (s *pgStore) ListActionsByOwner(ctx context.Context, ownerID string) ([]domain.ActionRecord, error) {
	var rows []schema.ActionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	return toDomainActionRecords(rows)
}

// ListPendingActions lists pending records created before olderThan
func (s *pgStore) ListPendingActions(ctx context.Context, olderThan time.Time, limit int) ([]domain.ActionRecord, error) {
	var rows []schema.ActionRecord
	query := s.db.WithContext(ctx).
		Where("outcome = ? AND created_at < ?", schema.ActionOutcomePending, olderThan).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending actions: %w", err)
	}

	return toDomainActionRecords(rows)
}

// IsPaymentConsumed reports whether a payment is recorded on a pending or confirmed action
func (s *pgStore) IsPaymentConsumed(ctx context.Context, paymentTxRef string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.ActionRecord{}).
		Where("lower(payment_tx_ref) = lower(?) AND outcome IN ?", paymentTxRef, activeOutcomes).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payment usage: %w", err)
	}

	return count > 0, nil
}
