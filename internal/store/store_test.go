package store

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

// =============================================================================
// Test Data Builders
// =============================================================================

var addressSeq atomic.Uint64

// buildTestAddress returns a distinct contract address per call
func buildTestAddress() string {
	return fmt.Sprintf("0x%040x", 0xA000+addressSeq.Add(1))
}

// buildTestAsset creates a trading locked asset input for the owner
func buildTestAsset(ownerID string) domain.Asset {
	return domain.Asset{
		OwnerID: ownerID,
		Identity: domain.Identity{
			Name:        "DogeX",
			Symbol:      "DOGX",
			TotalSupply: 1_000_000,
		},
		ChainAddress:  buildTestAddress(),
		ReferenceCode: fmt.Sprintf("REF-%s-%d", ownerID, addressSeq.Add(1)),
		State:         domain.StateTradingLocked,
		LogoRef:       "logos/" + ownerID + ".png",
	}
}

func strPtr(s string) *string {
	return &s
}

// createTestAsset stores an asset with its confirmed deploy record
func createTestAsset(t *testing.T, store Store, ownerID string) domain.Asset {
	asset := buildTestAsset(ownerID)
	_, err := store.CreateAsset(context.Background(), CreateAssetInput{
		Asset: asset,
		Record: domain.ActionRecord{
			ChainTxRef: strPtr("0xdeploy-" + ownerID),
		},
	})
	require.NoError(t, err)
	return asset
}

func openPending(t *testing.T, store Store, asset domain.Asset, kind domain.ActionKind, payment string) *domain.ActionRecord {
	record := domain.ActionRecord{
		OwnerID:      asset.OwnerID,
		AssetAddress: asset.ChainAddress,
		Kind:         kind,
		Outcome:      domain.ActionOutcomePending,
	}
	if payment != "" {
		record.PaymentTxRef = strPtr(payment)
	}
	opened, err := store.OpenAction(context.Background(), record)
	require.NoError(t, err)
	return opened
}

// =============================================================================
// Test: Assets
// =============================================================================

func testCreateAsset(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("stores asset and confirmed deploy record atomically", func(t *testing.T) {
		asset := buildTestAsset("owner-create-1")
		record, err := store.CreateAsset(ctx, CreateAssetInput{
			Asset:  asset,
			Record: domain.ActionRecord{ChainTxRef: strPtr("0xdeploy")},
		})
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.NotZero(t, record.ID)
		assert.Equal(t, domain.ActionKindDeploy, record.Kind)
		assert.Equal(t, domain.ActionOutcomeConfirmed, record.Outcome)
		assert.True(t, domain.EqualAddress(asset.ChainAddress, record.AssetAddress))

		stored, err := store.GetAssetByOwner(ctx, asset.OwnerID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, asset.Identity, stored.Identity)
		assert.Equal(t, domain.StateTradingLocked, stored.State)
		assert.Equal(t, asset.ReferenceCode, stored.ReferenceCode)
		assert.Equal(t, asset.LogoRef, stored.LogoRef)
		assert.False(t, stored.CreatedAt.IsZero())

		byAddress, err := store.GetAssetByAddress(ctx, asset.ChainAddress)
		require.NoError(t, err)
		require.NotNil(t, byAddress)
		assert.Equal(t, asset.OwnerID, byAddress.OwnerID)

		exists, err := store.ReferenceCodeExists(ctx, asset.ReferenceCode)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("one asset per owner", func(t *testing.T) {
		createTestAsset(t, store, "owner-create-2")

		_, err := store.CreateAsset(ctx, CreateAssetInput{Asset: buildTestAsset("owner-create-2")})
		assert.ErrorIs(t, err, ErrAssetConflict)
	})

	t.Run("reference code is unique", func(t *testing.T) {
		first := createTestAsset(t, store, "owner-create-3")

		second := buildTestAsset("owner-create-4")
		second.ReferenceCode = first.ReferenceCode
		_, err := store.CreateAsset(ctx, CreateAssetInput{Asset: second})
		assert.ErrorIs(t, err, ErrAssetConflict)

		asset, err := store.GetAssetByOwner(ctx, "owner-create-4")
		require.NoError(t, err)
		assert.Nil(t, asset, "failed creation must not leave an asset")
	})

	t.Run("chain address is unique", func(t *testing.T) {
		first := createTestAsset(t, store, "owner-create-5")

		second := buildTestAsset("owner-create-6")
		second.ChainAddress = first.ChainAddress
		_, err := store.CreateAsset(ctx, CreateAssetInput{Asset: second})
		assert.ErrorIs(t, err, ErrAssetConflict)
	})

	t.Run("empty chain address is rejected", func(t *testing.T) {
		asset := buildTestAsset("owner-create-7")
		asset.ChainAddress = ""
		_, err := store.CreateAsset(ctx, CreateAssetInput{Asset: asset})
		assert.ErrorIs(t, err, ErrAssetConflict)
	})

	t.Run("completes a pending deploy record", func(t *testing.T) {
		asset := buildTestAsset("owner-create-8")
		pending, err := store.OpenAction(ctx, domain.ActionRecord{
			OwnerID:      asset.OwnerID,
			AssetAddress: asset.ChainAddress,
			Kind:         domain.ActionKindDeploy,
			ChainTxRef:   strPtr("0xpending"),
			Outcome:      domain.ActionOutcomePending,
			Details: &domain.DeployDetails{
				Identity:      asset.Identity,
				ReferenceCode: asset.ReferenceCode,
			},
		})
		require.NoError(t, err)

		exists, err := store.ReferenceCodeExists(ctx, asset.ReferenceCode)
		require.NoError(t, err)
		assert.True(t, exists, "pending deployments reserve their reference code")

		record, err := store.CreateAsset(ctx, CreateAssetInput{
			Asset:  asset,
			Record: domain.ActionRecord{ID: pending.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, pending.ID, record.ID)
		assert.Equal(t, domain.ActionOutcomeConfirmed, record.Outcome)
		require.NotNil(t, record.ChainTxRef)
		assert.Equal(t, "0xpending", *record.ChainTxRef)

		stillPending, err := store.GetPendingDeploy(ctx, asset.OwnerID)
		require.NoError(t, err)
		assert.Nil(t, stillPending)

		_, err = store.CreateAsset(ctx, CreateAssetInput{
			Asset:  buildTestAsset("owner-create-9"),
			Record: domain.ActionRecord{ID: pending.ID},
		})
		assert.ErrorIs(t, err, ErrActionNotPending)
	})

	t.Run("unknown owner and address", func(t *testing.T) {
		asset, err := store.GetAssetByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, asset)

		asset, err = store.GetAssetByAddress(ctx, "0x000000000000000000000000000000000000dEaD")
		require.NoError(t, err)
		assert.Nil(t, asset)

		exists, err := store.ReferenceCodeExists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

// =============================================================================
// Test: Action ledger
// =============================================================================

func testActionLedger(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("at most one active record per asset and kind", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-1")
		opened := openPending(t, store, asset, domain.ActionKindEnableTrading, "")

		_, err := store.OpenAction(ctx, domain.ActionRecord{
			OwnerID:      asset.OwnerID,
			AssetAddress: asset.ChainAddress,
			Kind:         domain.ActionKindEnableTrading,
			Outcome:      domain.ActionOutcomePending,
		})
		assert.ErrorIs(t, err, ErrActionInFlight)

		active, err := store.GetActiveAction(ctx, asset.ChainAddress, domain.ActionKindEnableTrading)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, opened.ID, active.ID)

		// Other kinds are independent
		openPending(t, store, asset, domain.ActionKindSubmitListing, "")
	})

	t.Run("address comparison is case-insensitive", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-2")
		openPending(t, store, asset, domain.ActionKindEnableTrading, "")

		upper := "0x" + strings.ToUpper(asset.ChainAddress[2:])
		active, err := store.GetActiveAction(ctx, upper, domain.ActionKindEnableTrading)
		require.NoError(t, err)
		assert.NotNil(t, active)
	})

	t.Run("failed record allows a new attempt", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-3")
		opened := openPending(t, store, asset, domain.ActionKindEnableTrading, "0xpay-3a")

		err := store.CompleteAction(ctx, CompleteActionInput{
			ID:         opened.ID,
			Outcome:    domain.ActionOutcomeFailed,
			ChainTxRef: strPtr("0xreverted"),
		})
		require.NoError(t, err)

		active, err := store.GetActiveAction(ctx, asset.ChainAddress, domain.ActionKindEnableTrading)
		require.NoError(t, err)
		assert.Nil(t, active)

		consumed, err := store.IsPaymentConsumed(ctx, "0xpay-3a")
		require.NoError(t, err)
		assert.False(t, consumed, "payment of a failed action may be reused")

		openPending(t, store, asset, domain.ActionKindEnableTrading, "0xpay-3a")
	})

	t.Run("confirmed record advances the asset", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-4")
		opened := openPending(t, store, asset, domain.ActionKindEnableTrading, "0xpay-4")

		require.NoError(t, store.SetActionTxRef(ctx, opened.ID, "0xenable"))

		err := store.CompleteAction(ctx, CompleteActionInput{
			ID:           opened.ID,
			Outcome:      domain.ActionOutcomeConfirmed,
			AssetAddress: asset.ChainAddress,
			FromState:    domain.StateTradingLocked,
			ToState:      domain.StateTradingEnabled,
		})
		require.NoError(t, err)

		stored, err := store.GetAssetByOwner(ctx, asset.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateTradingEnabled, stored.State)

		record, err := store.GetAction(ctx, opened.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionOutcomeConfirmed, record.Outcome)
		require.NotNil(t, record.ChainTxRef)
		assert.Equal(t, "0xenable", *record.ChainTxRef)

		// Completing twice is refused
		err = store.CompleteAction(ctx, CompleteActionInput{ID: opened.ID, Outcome: domain.ActionOutcomeFailed})
		assert.ErrorIs(t, err, ErrActionNotPending)

		err = store.SetActionTxRef(ctx, opened.ID, "0xother")
		assert.ErrorIs(t, err, ErrActionNotPending)
	})

	t.Run("lifecycle never moves backwards or skips", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-5")

		opened := openPending(t, store, asset, domain.ActionKindSubmitListing, "")
		err := store.CompleteAction(ctx, CompleteActionInput{
			ID:           opened.ID,
			Outcome:      domain.ActionOutcomeConfirmed,
			AssetAddress: asset.ChainAddress,
			FromState:    domain.StateTradingLocked,
			ToState:      domain.StateListingSubmitted,
		})
		assert.ErrorIs(t, err, ErrStateConflict)

		// Wrong expected state leaves the record pending
		err = store.CompleteAction(ctx, CompleteActionInput{
			ID:           opened.ID,
			Outcome:      domain.ActionOutcomeConfirmed,
			AssetAddress: asset.ChainAddress,
			FromState:    domain.StateTradingEnabled,
			ToState:      domain.StateListingSubmitted,
		})
		assert.ErrorIs(t, err, ErrStateConflict)

		record, err := store.GetAction(ctx, opened.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionOutcomePending, record.Outcome)

		stored, err := store.GetAssetByOwner(ctx, asset.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateTradingLocked, stored.State)
	})

	t.Run("payment pays for one action", func(t *testing.T) {
		first := createTestAsset(t, store, "owner-ledger-6")
		second := createTestAsset(t, store, "owner-ledger-7")
		openPending(t, store, first, domain.ActionKindEnableTrading, "0xPAY-6")

		consumed, err := store.IsPaymentConsumed(ctx, "0xpay-6")
		require.NoError(t, err)
		assert.True(t, consumed)

		_, err = store.OpenAction(ctx, domain.ActionRecord{
			OwnerID:      second.OwnerID,
			AssetAddress: second.ChainAddress,
			Kind:         domain.ActionKindEnableTrading,
			PaymentTxRef: strPtr("0xpay-6"),
			Outcome:      domain.ActionOutcomePending,
		})
		assert.ErrorIs(t, err, ErrPaymentConsumed)
	})

	t.Run("failed audit records are always accepted", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := store.OpenAction(ctx, domain.ActionRecord{
				OwnerID: "owner-ledger-8",
				Kind:    domain.ActionKindDeploy,
				Outcome: domain.ActionOutcomeFailed,
			})
			require.NoError(t, err)
		}

		records, err := store.ListActionsByOwner(ctx, "owner-ledger-8")
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Less(t, records[0].ID, records[1].ID)
	})

	t.Run("one active deployment per owner", func(t *testing.T) {
		_, err := store.OpenAction(ctx, domain.ActionRecord{
			OwnerID: "owner-ledger-9",
			Kind:    domain.ActionKindDeploy,
			Outcome: domain.ActionOutcomePending,
			Details: &domain.DeployDetails{ReferenceCode: "REF-LEDGER-9"},
		})
		require.NoError(t, err)

		_, err = store.OpenAction(ctx, domain.ActionRecord{
			OwnerID: "owner-ledger-9",
			Kind:    domain.ActionKindDeploy,
			Outcome: domain.ActionOutcomePending,
		})
		assert.ErrorIs(t, err, ErrActionInFlight)

		pending, err := store.GetPendingDeploy(ctx, "owner-ledger-9")
		require.NoError(t, err)
		require.NotNil(t, pending)
		require.NotNil(t, pending.Details)
		assert.Equal(t, "REF-LEDGER-9", pending.Details.ReferenceCode)
	})

	t.Run("lists pending actions oldest first", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-10")
		first := openPending(t, store, asset, domain.ActionKindEnableTrading, "")
		second := openPending(t, store, asset, domain.ActionKindSubmitListing, "")

		pending, err := store.ListPendingActions(ctx, time.Now().Add(time.Hour), 1000)
		require.NoError(t, err)

		var ids []uint64
		for _, r := range pending {
			assert.Equal(t, domain.ActionOutcomePending, r.Outcome)
			if r.OwnerID == asset.OwnerID {
				ids = append(ids, r.ID)
			}
		}
		assert.Equal(t, []uint64{first.ID, second.ID}, ids)

		none, err := store.ListPendingActions(ctx, time.Now().Add(-time.Hour), 1000)
		require.NoError(t, err)
		for _, r := range none {
			assert.NotEqual(t, asset.OwnerID, r.OwnerID)
		}

		limited, err := store.ListPendingActions(ctx, time.Now().Add(time.Hour), 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("pending age counts from creation", func(t *testing.T) {
		asset := createTestAsset(t, store, "owner-ledger-11")
		record := openPending(t, store, asset, domain.ActionKindEnableTrading, "")

		time.Sleep(10 * time.Millisecond)
		cutoff := time.Now()
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, store.SetActionTxRef(ctx, record.ID, "0xlate-hash"))

		pending, err := store.ListPendingActions(ctx, cutoff, 1000)
		require.NoError(t, err)

		found := false
		for _, r := range pending {
			if r.ID == record.ID {
				found = true
			}
		}
		assert.True(t, found, "a record touched after the cutoff is still listed by its creation time")
	})

	t.Run("invalid completion outcome", func(t *testing.T) {
		err := store.CompleteAction(ctx, CompleteActionInput{ID: 1, Outcome: domain.ActionOutcomePending})
		assert.Error(t, err)
	})
}

// RunStoreTests runs the store test suite against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"CreateAsset", testCreateAsset},
		{"ActionLedger", testActionLedger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
