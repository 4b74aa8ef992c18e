package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

// ErrProxyClosed is returned for requests submitted after Close
var ErrProxyClosed = errors.New("rate limit proxy is closed")

// ProviderLimit is the request budget of a single upstream provider
type ProviderLimit struct {
	RequestsPerSecond int
	Burst             int
	// MaxWait bounds how long a request may wait for a token
	MaxWait time.Duration
}

// Config configures the proxy
type Config struct {
	Providers map[string]ProviderLimit
	KeyPrefix string
	// EnableLocalFallback lets requests proceed on a local token bucket when Redis is unavailable
	EnableLocalFallback bool
	// LocalFallbackFactor scales the local budget, since every instance gets its own bucket
	LocalFallbackFactor float64
	HealthCheckInterval time.Duration
}

// RequestFunc is a function that performs the actual upstream request
type RequestFunc func(ctx context.Context) (interface{}, error)

// Proxy throttles calls to upstream providers so all instances share one quota
//
//go:generate mockgen -source=proxy.go -destination=../mocks/ratelimit_proxy.go -package=mocks -mock_names=Proxy=MockRateLimitProxy
type Proxy interface {
	// Request waits for a token for the provider and then executes fn
	Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error)

	// Close stops the health monitor and closes the Redis connection
	Close() error
}

type proxy struct {
	config         Config
	limiters       map[string]*providerLimiter
	redis          adapter.RedisClient
	clock          adapter.Clock
	closed         atomic.Bool
	closeOnce      sync.Once
	done           chan struct{}
	redisAvailable atomic.Bool
}

type providerLimiter struct {
	name        string
	limit       ProviderLimit
	distributed adapter.RedisRateLimiter
	local       *rate.Limiter
}

// NewProxy creates a new rate limiting proxy. A nil Redis client runs the proxy
// on local token buckets only, which is enough for a single instance.
func NewProxy(cfg Config, rc adapter.RedisClient, clock adapter.Clock) (Proxy, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &proxy{
		config:   cfg,
		limiters: make(map[string]*providerLimiter),
		redis:    rc,
		clock:    clock,
		done:     make(chan struct{}),
	}

	var distributed adapter.RedisRateLimiter
	if rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Ping(ctx).Err()
		cancel()

		if err != nil {
			if !cfg.EnableLocalFallback {
				return nil, fmt.Errorf("redis unavailable and fallback disabled: %w", err)
			}
			logger.Warn("Redis unavailable, using local rate limit fallback", zap.Error(err))
		}
		p.redisAvailable.Store(err == nil)
		distributed = rc.NewRateLimiter()
	}

	for name, limit := range cfg.Providers {
		localRate := float64(limit.RequestsPerSecond)
		if distributed != nil {
			localRate = max(localRate*cfg.LocalFallbackFactor, 1.0)
		}
		p.limiters[name] = &providerLimiter{
			name:        name,
			limit:       limit,
			distributed: distributed,
			local:       rate.NewLimiter(rate.Limit(localRate), limit.Burst),
		}
	}

	if rc != nil {
		go p.monitorRedisHealth(p.clock.NewTicker(cfg.HealthCheckInterval))
	}

	logger.Info("Rate limit proxy initialized",
		zap.Int("providers", len(cfg.Providers)),
		zap.Bool("distributed", rc != nil),
		zap.Bool("local_fallback", cfg.EnableLocalFallback),
	)

	return p, nil
}

// Request submits a rate limited request and returns its typed result.
// A nil proxy executes fn directly.
func Request[T any](ctx context.Context, p Proxy, providerName string, fn func(ctx context.Context) (T, error)) (T, error) {
	if p == nil {
		return fn(ctx)
	}

	var zero T
	result, err := p.Request(ctx, providerName, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

func (p *proxy) Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error) {
	if p.closed.Load() {
		return nil, ErrProxyClosed
	}

	limiter, ok := p.limiters[providerName]
	if !ok {
		return nil, fmt.Errorf("provider '%s' not configured", providerName)
	}

	waitCtx, cancel := context.WithTimeout(ctx, limiter.limit.MaxWait)
	err := p.acquireToken(waitCtx, limiter)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", providerName, err)
	}

	return fn(ctx)
}

// acquireToken blocks until a token for the provider is available
func (p *proxy) acquireToken(ctx context.Context, limiter *providerLimiter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if limiter.distributed == nil || (!p.redisAvailable.Load() && p.config.EnableLocalFallback) {
			return limiter.local.Wait(ctx)
		}

		if !p.redisAvailable.Load() {
			return errors.New("redis rate limiter unavailable")
		}

		retryAfter, err := p.tryDistributed(ctx, limiter)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.redisAvailable.Store(false)
			if !p.config.EnableLocalFallback {
				return fmt.Errorf("redis rate limiter unavailable: %w", err)
			}
			logger.Warn("Redis rate limiter error, falling back to local",
				zap.String("provider", limiter.name),
				zap.Error(err),
			)
			continue
		}
		if retryAfter == 0 {
			return nil
		}

		// Spread out retries across instances (50-150% of retryAfter)
		jitter := time.Duration(float64(retryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(jitter):
		}
	}
}

// tryDistributed returns zero when a token was granted, otherwise how long to wait
func (p *proxy) tryDistributed(ctx context.Context, limiter *providerLimiter) (time.Duration, error) {
	key := p.config.KeyPrefix + limiter.name
	limit := redis_rate.Limit{
		Rate:   limiter.limit.RequestsPerSecond,
		Burst:  limiter.limit.Burst,
		Period: time.Second,
	}

	res, err := limiter.distributed.Allow(ctx, key, limit)
	if err != nil {
		return 0, err
	}
	if res.Allowed > 0 {
		return 0, nil
	}

	logger.Debug("Rate limit token unavailable, waiting",
		zap.String("provider", limiter.name),
		zap.Duration("retry_after", res.RetryAfter),
	)
	if res.RetryAfter <= 0 {
		return 100 * time.Millisecond, nil
	}
	return res.RetryAfter, nil
}

// monitorRedisHealth periodically pings Redis and restores the distributed limiter
func (p *proxy) monitorRedisHealth(ticker *time.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := p.redis.Ping(ctx).Err()
		cancel()

		wasAvailable := p.redisAvailable.Swap(err == nil)
		if !wasAvailable && err == nil {
			logger.Info("Redis connection restored")
		}
	}
}

func (p *proxy) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)

		if p.redis != nil {
			if closeErr := p.redis.Close(); closeErr != nil {
				logger.Warn("Error closing Redis connection", zap.Error(closeErr))
				err = closeErr
			}
		}
	})
	return err
}

// validateConfig validates and sets defaults for the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}

	for name, limit := range cfg.Providers {
		if limit.RequestsPerSecond <= 0 {
			return fmt.Errorf("provider %s: requests_per_second must be positive", name)
		}
		if limit.Burst <= 0 {
			limit.Burst = limit.RequestsPerSecond
		}
		if limit.MaxWait <= 0 {
			limit.MaxWait = 30 * time.Second
		}
		cfg.Providers[name] = limit
	}

	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "launchpad:limiter:"
	}
	if cfg.LocalFallbackFactor <= 0 {
		cfg.LocalFallbackFactor = 0.5
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = 10 * time.Second
	}

	return nil
}
