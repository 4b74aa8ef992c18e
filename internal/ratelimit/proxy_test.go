package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/mocks"
	"github.com/feral-file/ff-launchpad/internal/ratelimit"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testProxyMocks contains all the mocks needed for testing the proxy
type testProxyMocks struct {
	ctrl             *gomock.Controller
	redisClient      *mocks.MockRedisClient
	redisRateLimiter *mocks.MockRedisRateLimiter
	clock            *mocks.MockClock
}

func setupTestProxy(t *testing.T) *testProxyMocks {
	ctrl := gomock.NewController(t)

	return &testProxyMocks{
		ctrl:             ctrl,
		redisClient:      mocks.NewMockRedisClient(ctrl),
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
		clock:            mocks.NewMockClock(ctrl),
	}
}

func testConfig(fallback bool) ratelimit.Config {
	return ratelimit.Config{
		KeyPrefix:           "test:limiter:",
		EnableLocalFallback: fallback,
		LocalFallbackFactor: 0.5,
		HealthCheckInterval: time.Hour,
		Providers: map[string]ratelimit.ProviderLimit{
			"explorer": {
				RequestsPerSecond: 5,
				Burst:             5,
				MaxWait:           time.Second,
			},
		},
	}
}

// setupProxyWithMocks creates a Redis backed proxy with common mock expectations
func setupProxyWithMocks(t *testing.T, m *testProxyMocks, cfg ratelimit.Config, redisAvailable bool) ratelimit.Proxy {
	statusCmd := redis.NewStatusCmd(context.Background())
	if redisAvailable {
		statusCmd.SetVal("PONG")
	} else {
		statusCmd.SetErr(errors.New("connection refused"))
	}
	m.redisClient.EXPECT().Ping(gomock.Any()).Return(statusCmd)
	m.redisClient.EXPECT().NewRateLimiter().Return(m.redisRateLimiter)

	// Health monitor ticker never fires within a test
	m.clock.EXPECT().NewTicker(time.Hour).Return(time.NewTicker(time.Hour))

	proxy, err := ratelimit.NewProxy(cfg, m.redisClient, m.clock)
	require.NoError(t, err)

	t.Cleanup(func() {
		m.redisClient.EXPECT().Close().Return(nil).AnyTimes()
		_ = proxy.Close()
	})
	return proxy
}

func TestNewProxy_InvalidConfig(t *testing.T) {
	m := setupTestProxy(t)

	_, err := ratelimit.NewProxy(ratelimit.Config{}, nil, m.clock)
	assert.ErrorContains(t, err, "at least one provider must be configured")

	_, err = ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderLimit{"explorer": {RequestsPerSecond: 0}},
	}, nil, m.clock)
	assert.ErrorContains(t, err, "requests_per_second must be positive")
}

func TestNewProxy_RedisUnavailable_FallbackDisabled(t *testing.T) {
	m := setupTestProxy(t)

	statusCmd := redis.NewStatusCmd(context.Background())
	statusCmd.SetErr(errors.New("connection refused"))
	m.redisClient.EXPECT().Ping(gomock.Any()).Return(statusCmd)

	proxy, err := ratelimit.NewProxy(testConfig(false), m.redisClient, m.clock)
	assert.Error(t, err)
	assert.Nil(t, proxy)
	assert.Contains(t, err.Error(), "redis unavailable and fallback disabled")
}

func TestProxy_LocalOnly(t *testing.T) {
	m := setupTestProxy(t)

	proxy, err := ratelimit.NewProxy(testConfig(false), nil, m.clock)
	require.NoError(t, err)
	defer func() { _ = proxy.Close() }()

	result, err := ratelimit.Request(context.Background(), proxy, "explorer", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestProxy_Request_Distributed(t *testing.T) {
	m := setupTestProxy(t)
	proxy := setupProxyWithMocks(t, m, testConfig(true), true)

	m.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), "test:limiter:explorer", redis_rate.Limit{Rate: 5, Burst: 5, Period: time.Second}).
		Return(&redis_rate.Result{Allowed: 1, Remaining: 4}, nil)

	result, err := proxy.Request(context.Background(), "explorer", func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestProxy_Request_RateLimitExceeded_Retries(t *testing.T) {
	m := setupTestProxy(t)
	proxy := setupProxyWithMocks(t, m, testConfig(true), true)

	gomock.InOrder(
		m.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:explorer", gomock.Any()).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 50 * time.Millisecond}, nil),
		m.clock.EXPECT().
			After(gomock.Any()). // jittered duration
			DoAndReturn(func(d time.Duration) <-chan time.Time {
				ch := make(chan time.Time, 1)
				ch <- time.Now()
				return ch
			}),
		m.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), "test:limiter:explorer", gomock.Any()).
			Return(&redis_rate.Result{Allowed: 1}, nil),
	)

	calls := 0
	_, err := proxy.Request(context.Background(), "explorer", func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestProxy_Request_RedisErrorFallsBackToLocal(t *testing.T) {
	m := setupTestProxy(t)
	proxy := setupProxyWithMocks(t, m, testConfig(true), true)

	m.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("redis down"))

	result, err := proxy.Request(context.Background(), "explorer", func(ctx context.Context) (interface{}, error) {
		return "local", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "local", result)
}

func TestProxy_Request_UnknownProvider(t *testing.T) {
	m := setupTestProxy(t)
	proxy := setupProxyWithMocks(t, m, testConfig(true), true)

	result, err := proxy.Request(context.Background(), "unknown-provider", func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "provider 'unknown-provider' not configured")
}

func TestProxy_Request_ContextCanceled(t *testing.T) {
	m := setupTestProxy(t)
	proxy := setupProxyWithMocks(t, m, testConfig(true), true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := proxy.Request(ctx, "explorer", func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestProxy_Request_AfterClose(t *testing.T) {
	m := setupTestProxy(t)

	proxy, err := ratelimit.NewProxy(testConfig(false), nil, m.clock)
	require.NoError(t, err)
	require.NoError(t, proxy.Close())

	_, err = proxy.Request(context.Background(), "explorer", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ratelimit.ErrProxyClosed)
}

func TestRequest_NilProxy(t *testing.T) {
	result, err := ratelimit.Request(context.Background(), nil, "explorer", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}
