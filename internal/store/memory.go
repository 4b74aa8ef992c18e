package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
)

// memoryStore keeps assets and the ledger in process memory.
// It enforces the same uniqueness rules as the postgres schema.
type memoryStore struct {
	mu      sync.RWMutex
	clock   adapter.Clock
	assets  map[string]domain.Asset // by owner
	records []domain.ActionRecord
	nextID  uint64
}

// NewMemoryStore creates an in-memory store for development and tests
func NewMemoryStore(clock adapter.Clock) Store {
	return &memoryStore{
		clock:  clock,
		assets: make(map[string]domain.Asset),
		nextID: 1,
	}
}

func copyRecord(r domain.ActionRecord) domain.ActionRecord {
	if r.ChainTxRef != nil {
		v := *r.ChainTxRef
		r.ChainTxRef = &v
	}
	if r.PaymentTxRef != nil {
		v := *r.PaymentTxRef
		r.PaymentTxRef = &v
	}
	if r.Details != nil {
		d := *r.Details
		r.Details = &d
	}
	return r
}

func (s *memoryStore) GetAssetByOwner(ctx context.Context, ownerID string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[ownerID]
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func (s *memoryStore) GetAssetByAddress(ctx context.Context, address string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assetByAddressLocked(address)
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func (s *memoryStore) assetByAddressLocked(address string) (domain.Asset, bool) {
	for _, asset := range s.assets {
		if domain.EqualAddress(asset.ChainAddress, address) {
			return asset, true
		}
	}
	return domain.Asset{}, false
}

func (s *memoryStore) ReferenceCodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, asset := range s.assets {
		if asset.ReferenceCode == code {
			return true, nil
		}
	}
	for _, r := range s.records {
		if r.Kind == domain.ActionKindDeploy && r.Outcome == domain.ActionOutcomePending &&
			r.Details != nil && r.Details.ReferenceCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) CreateAsset(ctx context.Context, input CreateAssetInput) (*domain.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset := input.Asset
	asset.ChainAddress = domain.NormalizeAddress(asset.ChainAddress)
	if asset.ChainAddress == "" {
		return nil, fmt.Errorf("%w: empty chain address", ErrAssetConflict)
	}
	if _, ok := s.assets[asset.OwnerID]; ok {
		return nil, fmt.Errorf("%w: owner %s", ErrAssetConflict, asset.OwnerID)
	}
	for _, existing := range s.assets {
		if domain.EqualAddress(existing.ChainAddress, asset.ChainAddress) || existing.ReferenceCode == asset.ReferenceCode {
			return nil, fmt.Errorf("%w: address or reference code taken", ErrAssetConflict)
		}
	}

	now := s.clock.Now()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now

	record := copyRecord(input.Record)
	record.OwnerID = asset.OwnerID
	record.Kind = domain.ActionKindDeploy
	record.AssetAddress = asset.ChainAddress

	if record.ID != 0 {
		idx := s.indexLocked(record.ID)
		if idx < 0 || s.records[idx].Outcome != domain.ActionOutcomePending {
			return nil, ErrActionNotPending
		}
		existing := &s.records[idx]
		existing.Outcome = domain.ActionOutcomeConfirmed
		existing.AssetAddress = asset.ChainAddress
		if record.ChainTxRef != nil {
			existing.ChainTxRef = record.ChainTxRef
		}
		existing.UpdatedAt = now
		s.assets[asset.OwnerID] = asset
		completed := copyRecord(*existing)
		return &completed, nil
	}

	record.Outcome = domain.ActionOutcomeConfirmed
	if err := s.checkActiveLocked(record); err != nil {
		return nil, err
	}

	s.assets[asset.OwnerID] = asset
	created := s.appendLocked(record, now)
	return &created, nil
}

func (s *memoryStore) indexLocked(id uint64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryStore) appendLocked(record domain.ActionRecord, now time.Time) domain.ActionRecord {
	record.ID = s.nextID
	s.nextID++
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records = append(s.records, record)
	return copyRecord(record)
}

// checkActiveLocked applies the ledger uniqueness rules to a record about to be stored
func (s *memoryStore) checkActiveLocked(record domain.ActionRecord) error {
	if !record.Outcome.Active() {
		return nil
	}

	for _, r := range s.records {
		if !r.Outcome.Active() {
			continue
		}
		if record.AssetAddress != "" && r.Kind == record.Kind && domain.EqualAddress(r.AssetAddress, record.AssetAddress) {
			return ErrActionInFlight
		}
		if record.Kind == domain.ActionKindDeploy && r.Kind == domain.ActionKindDeploy && r.OwnerID == record.OwnerID {
			return ErrActionInFlight
		}
	}

	if record.PaymentTxRef != nil && s.paymentConsumedLocked(*record.PaymentTxRef) {
		return ErrPaymentConsumed
	}
	return nil
}

func (s *memoryStore) paymentConsumedLocked(txRef string) bool {
	for _, r := range s.records {
		if r.Outcome.Active() && r.PaymentTxRef != nil && strings.EqualFold(*r.PaymentTxRef, txRef) {
			return true
		}
	}
	return false
}

func (s *memoryStore) GetActiveAction(ctx context.Context, address string, kind domain.ActionKind) (*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Kind == kind && r.Outcome.Active() && r.AssetAddress != "" && domain.EqualAddress(r.AssetAddress, address) {
			found := copyRecord(r)
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetPendingDeploy(ctx context.Context, ownerID string) (*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.OwnerID == ownerID && r.Kind == domain.ActionKindDeploy && r.Outcome == domain.ActionOutcomePending {
			found := copyRecord(r)
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) OpenAction(ctx context.Context, record domain.ActionRecord) (*domain.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record = copyRecord(record)
	if record.AssetAddress != "" {
		record.AssetAddress = domain.NormalizeAddress(record.AssetAddress)
	}
	if err := s.checkActiveLocked(record); err != nil {
		return nil, err
	}

	opened := s.appendLocked(record, s.clock.Now())
	return &opened, nil
}

func (s *memoryStore) CompleteAction(ctx context.Context, input CompleteActionInput) error {
	if input.Outcome != domain.ActionOutcomeConfirmed && input.Outcome != domain.ActionOutcomeFailed {
		return fmt.Errorf("invalid completion outcome: %s", input.Outcome)
	}
	advance := input.ToState != "" && input.Outcome == domain.ActionOutcomeConfirmed
	if advance && !domain.CanTransition(input.FromState, input.ToState) {
		return fmt.Errorf("%w: %s -> %s", ErrStateConflict, input.FromState, input.ToState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(input.ID)
	if idx < 0 || s.records[idx].Outcome != domain.ActionOutcomePending {
		return ErrActionNotPending
	}

	now := s.clock.Now()
	if advance {
		asset, ok := s.assetByAddressLocked(input.AssetAddress)
		if !ok || asset.State != input.FromState {
			return ErrStateConflict
		}
		asset.State = input.ToState
		asset.UpdatedAt = now
		s.assets[asset.OwnerID] = asset
	}

	record := &s.records[idx]
	record.Outcome = input.Outcome
	if input.ChainTxRef != nil {
		v := *input.ChainTxRef
		record.ChainTxRef = &v
	}
	record.UpdatedAt = now
	return nil
}

func (s *memoryStore) SetActionTxRef(ctx context.Context, id uint64, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 || s.records[idx].Outcome != domain.ActionOutcomePending {
		return ErrActionNotPending
	}
	s.records[idx].ChainTxRef = &txRef
	s.records[idx].UpdatedAt = s.clock.Now()
	return nil
}

func (s *memoryStore) GetAction(ctx context.Context, id uint64) (*domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, nil
	}
	found := copyRecord(s.records[idx])
	return &found, nil
}

func (s *memoryStore) ListActionsByOwner(ctx context.Context, ownerID string) ([]domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []domain.ActionRecord{}
	for _, r := range s.records {
		if r.OwnerID == ownerID {
			records = append(records, copyRecord(r))
		}
	}
	return records, nil
}

func (s *memoryStore) ListPendingActions(ctx context.Context, olderThan time.Time, limit int) ([]domain.ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []domain.ActionRecord{}
	for _, r := range s.records {
		if r.Outcome == domain.ActionOutcomePending && r.CreatedAt.Before(olderThan) {
			records = append(records, copyRecord(r))
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *memoryStore) IsPaymentConsumed(ctx context.Context, paymentTxRef string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.paymentConsumedLocked(paymentTxRef), nil
}
