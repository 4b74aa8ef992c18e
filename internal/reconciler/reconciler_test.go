package reconciler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/actuator"
	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/messaging"
	"github.com/feral-file/ff-launchpad/internal/mocks"
	"github.com/feral-file/ff-launchpad/internal/reconciler"
	"github.com/feral-file/ff-launchpad/internal/store"
)

const (
	testAddress = "0x00000000000000000000000000000000000000aa"
	testTxRef   = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

// testReconcilerMocks contains everything needed to drive the reconciler
type testReconcilerMocks struct {
	ctrl       *gomock.Controller
	store      store.Store
	actuator   *mocks.MockActuator
	publisher  *mocks.MockPublisher
	clock      *mocks.MockClock
	reconciler reconciler.Reconciler

	mu       sync.Mutex
	subjects []string
}

// setupTestReconciler builds a reconciler whose clock runs offset ahead of the store's clock
func setupTestReconciler(t *testing.T, offset time.Duration) *testReconcilerMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	tm := &testReconcilerMocks{
		ctrl:      ctrl,
		store:     store.NewMemoryStore(adapter.NewClock()),
		actuator:  mocks.NewMockActuator(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}

	now := func() time.Time { return time.Now().Add(offset) }
	tm.clock.EXPECT().Now().DoAndReturn(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return now().Sub(t)
	}).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(20 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event *messaging.Event) error {
			tm.mu.Lock()
			defer tm.mu.Unlock()
			tm.subjects = append(tm.subjects, event.Subject())
			return nil
		}).AnyTimes()

	tm.reconciler = reconciler.New(reconciler.Config{
		Interval:       time.Minute,
		MinAge:         3 * time.Minute,
		AbandonAfter:   30 * time.Minute,
		BatchSize:      10,
		WorkerPoolSize: 2,
	}, tm.store, tm.actuator, tm.publisher, tm.clock)

	return tm
}

func tearDownTestReconciler(tm *testReconcilerMocks) {
	tm.ctrl.Finish()
}

// run lets the reconciler work through a few cycles and stops it
func (tm *testReconcilerMocks) run(t *testing.T) {
	ctx := context.Background()

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = tm.reconciler.Stop(ctx)
	}()

	err := tm.reconciler.Start(ctx)
	require.NoError(t, err)
}

func (tm *testReconcilerMocks) publishedSubjects() []string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return append([]string(nil), tm.subjects...)
}

func seedAsset(t *testing.T, st store.Store, state domain.LifecycleState) domain.Asset {
	asset := domain.Asset{
		OwnerID:       "owner-1",
		Identity:      domain.Identity{Name: "DogeX", Symbol: "DGX", TotalSupply: 1_000_000},
		ChainAddress:  testAddress,
		ReferenceCode: "ABC12345",
		State:         state,
	}
	_, err := st.CreateAsset(context.Background(), store.CreateAssetInput{Asset: asset})
	require.NoError(t, err)
	return asset
}

func openPending(t *testing.T, st store.Store, record domain.ActionRecord) *domain.ActionRecord {
	record.Outcome = domain.ActionOutcomePending
	opened, err := st.OpenAction(context.Background(), record)
	require.NoError(t, err)
	return opened
}

func txRef(v string) *string {
	return &v
}

func TestReconciler_Name(t *testing.T) {
	tm := setupTestReconciler(t, 0)
	defer tearDownTestReconciler(tm)

	assert.Equal(t, "pending-action-reconciler", tm.reconciler.Name())
}

func TestReconciler_StopWhenNotRunning(t *testing.T) {
	tm := setupTestReconciler(t, 0)
	defer tearDownTestReconciler(tm)

	assert.NoError(t, tm.reconciler.Stop(context.Background()))
}

func TestReconciler_ConfirmedUnlockAdvancesAsset(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
		PaymentTxRef: txRef("0xpayment"),
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionConfirmed}, nil).
		Times(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomeConfirmed, stored.Outcome)

	asset, err := tm.store.GetAssetByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateTradingEnabled, asset.State)

	assert.Equal(t, []string{
		"launchpad.actions.enable_trading.confirmed",
		"launchpad.assets.trading_enabled",
	}, tm.publishedSubjects())
}

func TestReconciler_ConfirmedDeployCreatesAsset(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:    "owner-1",
		Kind:       domain.ActionKindDeploy,
		ChainTxRef: txRef(testTxRef),
		Details: &domain.DeployDetails{
			Identity:      domain.Identity{Name: "DogeX", Symbol: "DGX", TotalSupply: 1_000_000},
			ReferenceCode: "ABC12345",
			LogoRef:       "owner-1.png",
		},
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindDeploy, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionConfirmed, ContractAddress: testAddress}, nil).
		Times(1)

	tm.run(t)

	asset, err := tm.store.GetAssetByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, testAddress, asset.ChainAddress)
	assert.Equal(t, domain.StateTradingLocked, asset.State)
	assert.Equal(t, "ABC12345", asset.ReferenceCode)
	assert.Equal(t, "owner-1.png", asset.LogoRef)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomeConfirmed, stored.Outcome)
	assert.Equal(t, testAddress, stored.AssetAddress)
}

func TestReconciler_FailedOnChainMarksRecordFailed(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionFailed}, nil).
		Times(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomeFailed, stored.Outcome)

	asset, err := tm.store.GetAssetByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateTradingLocked, asset.State)
	assert.Equal(t, []string{"launchpad.actions.enable_trading.failed"}, tm.publishedSubjects())
}

func TestReconciler_UnknownYoungRecordWaits(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionUnknown}, nil).
		MinTimes(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomePending, stored.Outcome)
	assert.Empty(t, tm.publishedSubjects())
}

func TestReconciler_UnknownOldRecordAbandoned(t *testing.T) {
	tm := setupTestReconciler(t, time.Hour)
	defer tearDownTestReconciler(tm)

	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID: "owner-1",
		Kind:    domain.ActionKindDeploy,
		Details: &domain.DeployDetails{
			Identity:      domain.Identity{Name: "DogeX", Symbol: "DGX", TotalSupply: 1_000_000},
			ReferenceCode: "ABC12345",
		},
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindDeploy, "").
		Return(&actuator.Resolution{Status: actuator.ResolutionUnknown}, nil).
		Times(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomeFailed, stored.Outcome)

	// The owner can deploy again
	pending, err := tm.store.GetPendingDeploy(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestReconciler_PendingOnChainNeverAbandoned(t *testing.T) {
	tm := setupTestReconciler(t, time.Hour)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionPending}, nil).
		MinTimes(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomePending, stored.Outcome)
}

func TestReconciler_ListingWithoutSubmissionLeftForReview(t *testing.T) {
	tm := setupTestReconciler(t, time.Hour)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingEnabled)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindSubmitListing,
		AssetAddress: testAddress,
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindSubmitListing, "").
		Return(&actuator.Resolution{Status: actuator.ResolutionUnknown}, nil).
		MinTimes(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomePending, stored.Outcome)
}

func TestReconciler_ResolveErrorRetriesNextCycle(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	gomock.InOrder(
		tm.actuator.EXPECT().
			Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
			Return(nil, errors.New("rpc unavailable")).
			Times(1),
		tm.actuator.EXPECT().
			Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
			Return(&actuator.Resolution{Status: actuator.ResolutionConfirmed}, nil).
			Times(1),
	)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomeConfirmed, stored.Outcome)
}

func TestReconciler_SkipsRecentRecords(t *testing.T) {
	tm := setupTestReconciler(t, time.Minute)
	defer tearDownTestReconciler(tm)

	seedAsset(t, tm.store, domain.StateTradingLocked)
	openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	tm.actuator.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	tm.run(t)
}

func TestReconciler_StateConflictRaisesAlert(t *testing.T) {
	tm := setupTestReconciler(t, 10*time.Minute)
	defer tearDownTestReconciler(tm)

	// The asset moved on without the record
	seedAsset(t, tm.store, domain.StateTradingEnabled)
	record := openPending(t, tm.store, domain.ActionRecord{
		OwnerID:      "owner-1",
		Kind:         domain.ActionKindEnableTrading,
		AssetAddress: testAddress,
		ChainTxRef:   txRef(testTxRef),
	})

	tm.actuator.EXPECT().
		Resolve(gomock.Any(), domain.ActionKindEnableTrading, testTxRef).
		Return(&actuator.Resolution{Status: actuator.ResolutionConfirmed}, nil).
		MinTimes(1)

	tm.run(t)

	stored, err := tm.store.GetAction(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOutcomePending, stored.Outcome)
	assert.Contains(t, tm.publishedSubjects(), "launchpad.alerts.consistency_fault")
}

func TestReconciler_UnknownDeployWithTxRef(t *testing.T) {
	tests := []struct {
		name            string
		offset          time.Duration
		expectedOutcome domain.ActionOutcome
	}{
		{name: "young record keeps the owner blocked", offset: 10 * time.Minute, expectedOutcome: domain.ActionOutcomePending},
		{name: "old record is abandoned", offset: time.Hour, expectedOutcome: domain.ActionOutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestReconciler(t, tt.offset)
			defer tearDownTestReconciler(tm)

			// Hash recorded before broadcast, then the process died before any receipt
			record := openPending(t, tm.store, domain.ActionRecord{
				OwnerID:    "owner-1",
				Kind:       domain.ActionKindDeploy,
				ChainTxRef: txRef(testTxRef),
				Details: &domain.DeployDetails{
					Identity:      domain.Identity{Name: "DogeX", Symbol: "DGX", TotalSupply: 1_000_000},
					ReferenceCode: "ABC12345",
				},
			})

			tm.actuator.EXPECT().
				Resolve(gomock.Any(), domain.ActionKindDeploy, testTxRef).
				Return(&actuator.Resolution{Status: actuator.ResolutionUnknown}, nil).
				MinTimes(1)

			tm.run(t)

			stored, err := tm.store.GetAction(context.Background(), record.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOutcome, stored.Outcome)

			pending, err := tm.store.GetPendingDeploy(context.Background(), "owner-1")
			require.NoError(t, err)
			if tt.expectedOutcome == domain.ActionOutcomePending {
				assert.NotNil(t, pending)
			} else {
				assert.Nil(t, pending)
			}

			asset, err := tm.store.GetAssetByOwner(context.Background(), "owner-1")
			require.NoError(t, err)
			assert.Nil(t, asset)
		})
	}
}
