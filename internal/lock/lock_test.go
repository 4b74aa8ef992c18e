package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker(0)
	ctx := context.Background()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "owner-1")
			require.NoError(t, err)
			defer unlock()

			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Empty(t, locker.(*localLocker).entries)
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "owner-a")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(ctx, "owner-b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_WaitTimeout(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "owner-1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "owner-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	// Unlock is idempotent
	unlock()

	unlock, err = locker.Lock(ctx, "owner-1")
	require.NoError(t, err)
	unlock()
	assert.Empty(t, locker.(*localLocker).entries)
}

func TestLocalLocker_ContextCanceled(t *testing.T) {
	locker := NewLocalLocker(0)

	unlock, err := locker.Lock(context.Background(), "owner-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, "owner-1")
	assert.ErrorIs(t, err, context.Canceled)
}

