package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

// ErrLockTimeout is returned when the lock could not be obtained before the wait timeout
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker serialises operations sharing a key.
// The returned unlock function must be called exactly once.
//
//go:generate mockgen -source=lock.go -destination=../mocks/locker.go -package=mocks -mock_names=Locker=MockLocker
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// localLocker is an in-process keyed mutex
type localLocker struct {
	mu          sync.Mutex
	entries     map[string]*localEntry
	waitTimeout time.Duration
}

// NewLocalLocker creates a keyed mutex for single-instance deployments.
// A zero waitTimeout waits until the context is done.
func NewLocalLocker(waitTimeout time.Duration) Locker {
	return &localLocker{
		entries:     make(map[string]*localEntry),
		waitTimeout: waitTimeout,
	}
}

func (l *localLocker) acquireEntry(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *localLocker) releaseEntry(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	waitCtx := ctx
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	select {
	case e.ch <- struct{}{}:
	case <-waitCtx.Done():
		l.releaseEntry(key, e)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.releaseEntry(key, e)
		})
	}, nil
}

// RedisConfig holds the distributed lock settings
type RedisConfig struct {
	KeyPrefix   string
	TTL         time.Duration
	WaitTimeout time.Duration
	// RetryInterval is the delay between attempts while the lock is busy
	RetryInterval time.Duration
}

// redisLocker is a distributed lock shared by every API instance
type redisLocker struct {
	locker adapter.RedisLocker
	clock  adapter.Clock
	cfg    RedisConfig
}

// NewRedisLocker creates a distributed keyed lock on top of redislock
func NewRedisLocker(locker adapter.RedisLocker, clock adapter.Clock, cfg RedisConfig) Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	return &redisLocker{locker: locker, clock: clock, cfg: cfg}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.cfg.KeyPrefix + key

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.WaitTimeout)
	defer cancel()

	held, err := l.locker.Obtain(waitCtx, fullKey, l.cfg.TTL, redislock.LinearBackoff(l.cfg.RetryInterval))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, fullKey)
		}
		return nil, fmt.Errorf("failed to obtain lock %s: %w", fullKey, err)
	}

	// Keep the lock alive while the holder is still working
	done := make(chan struct{})
	go l.refresh(fullKey, held, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := held.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logger.Error(fmt.Errorf("failed to release lock: %w", err), zap.String("key", fullKey))
			}
		})
	}, nil
}

func (l *redisLocker) refresh(key string, held adapter.RedisLock, done <-chan struct{}) {
	ticker := l.clock.NewTicker(l.cfg.TTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := held.Refresh(ctx, l.cfg.TTL)
			cancel()
			if err != nil {
				logger.Warn("Failed to refresh lock", zap.String("key", key), zap.Error(err))
				return
			}
		}
	}
}
