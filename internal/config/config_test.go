package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

const (
	baseSection = `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: launchpad
wallets:
  dev: "0x1111111111111111111111111111111111111111"
  marketing: "0x2222222222222222222222222222222222222222"
  liquidity: "0x3333333333333333333333333333333333333333"
`
	ethereumSection = `
ethereum:
  rpc_url: "https://data-seed-prebsc-1-s1.binance.org:8545"
  chain_id: "eip155:97"
  deployer_private_key: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
`
	paymentSection = `
payment:
  wallet: "0x4444444444444444444444444444444444444444"
`
	validAPIConfig = baseSection + ethereumSection + paymentSection
)

func writeConfig(t *testing.T, content string) (string, string) {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile, tmpDir
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name:       "valid config with defaults",
			configFile: validAPIConfig,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, domain.ChainBSCTestnet, cfg.Ethereum.ChainID)
				assert.Equal(t, uint64(5_000_000), cfg.Ethereum.DeployGasLimit)
				assert.Equal(t, uint64(200_000), cfg.Ethereum.EnableTradingGasLimit)
				assert.Equal(t, 2*time.Minute, cfg.Ethereum.ReceiptTimeout)
				assert.Equal(t, "https://api.bscscan.com/api", cfg.Explorer.URL)
				assert.Equal(t, 15*time.Second, cfg.Explorer.Timeout)
				assert.Equal(t, time.Hour, cfg.Payment.Window)
				assert.False(t, cfg.Payment.RequireReferenceMatch)
				assert.Equal(t, "local", cfg.Lock.Driver)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "LAUNCHPAD_EVENTS", cfg.NATS.StreamName)

				unlock, err := cfg.Payment.UnlockPriceDecimal()
				require.NoError(t, err)
				assert.True(t, unlock.Equal(decimal.RequireFromString("0.05")))
				listing, err := cfg.Payment.ListingPriceDecimal()
				require.NoError(t, err)
				assert.True(t, listing.Equal(decimal.RequireFromString("0.5")))
			},
		},
		{
			name: "overrides",
			configFile: baseSection + ethereumSection + `
payment:
  wallet: "0x4444444444444444444444444444444444444444"
  unlock_price: "0.1"
  window: "30m"
  require_reference_match: true
lock:
  driver: redis
redis:
  addr: "localhost:6379"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				unlock, err := cfg.Payment.UnlockPriceDecimal()
				require.NoError(t, err)
				assert.Equal(t, "0.1", unlock.String())
				assert.Equal(t, 30*time.Minute, cfg.Payment.Window)
				assert.True(t, cfg.Payment.RequireReferenceMatch)
				assert.Equal(t, "redis", cfg.Lock.Driver)
				assert.Equal(t, "launchpad:signer:", cfg.Lock.SignerKeyPrefix)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
			},
		},
		{
			name:        "missing database host",
			configFile:  "payment:\n  wallet: \"0x4444444444444444444444444444444444444444\"\n",
			expectError: "database.host",
		},
		{
			name: "redis lock without address",
			configFile: validAPIConfig + `
lock:
  driver: redis
`,
			expectError: "redis.addr",
		},
		{
			name: "invalid price",
			configFile: baseSection + ethereumSection + `
payment:
  wallet: "0x4444444444444444444444444444444444444444"
  listing_price: "-1"
`,
			expectError: "payment.listing_price",
		},
		{
			name: "unsupported chain",
			configFile: baseSection + paymentSection + `
ethereum:
  rpc_url: "http://localhost:8545"
  chain_id: "tezos:mainnet"
  deployer_private_key: "abc"
`,
			expectError: "ethereum.chain_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile, envDir := writeConfig(t, tt.configFile)

			cfg, err := LoadAPIConfig(configFile, envDir)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadAPIConfig_EnvironmentVariables(t *testing.T) {
	configFile, envDir := writeConfig(t, validAPIConfig)

	t.Setenv("LAUNCHPAD_PAYMENT_WALLET", "0x5555555555555555555555555555555555555555")
	t.Setenv("LAUNCHPAD_EXPLORER_API_KEY", "secret")

	cfg, err := LoadAPIConfig(configFile, envDir)
	require.NoError(t, err)
	assert.Equal(t, "0x5555555555555555555555555555555555555555", cfg.Payment.Wallet)
	assert.Equal(t, "secret", cfg.Explorer.APIKey)
}

func TestLoadAPIConfig_EnvFile(t *testing.T) {
	configFile, envDir := writeConfig(t, validAPIConfig)
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.api.local"), []byte("LAUNCHPAD_LISTING_URL=https://listing.example.com\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("LAUNCHPAD_LISTING_URL") })

	cfg, err := LoadAPIConfig(configFile, envDir)
	require.NoError(t, err)
	assert.Equal(t, "https://listing.example.com", cfg.Listing.URL)
}

func TestLoadReconcilerConfig(t *testing.T) {
	configFile, envDir := writeConfig(t, `
database:
  host: localhost
  dbname: launchpad
ethereum:
  rpc_url: "http://localhost:8545"
  deployer_private_key: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
reconciler:
  batch_size: 10
`)

	cfg, err := LoadReconcilerConfig(configFile, envDir)
	require.NoError(t, err)
	assert.Equal(t, domain.ChainBSCMainnet, cfg.Ethereum.ChainID)
	assert.Equal(t, time.Minute, cfg.Reconciler.Interval)
	assert.Equal(t, 3*time.Minute, cfg.Reconciler.MinAge)
	assert.Equal(t, 30*time.Minute, cfg.Reconciler.AbandonAfter)
	assert.Equal(t, 10, cfg.Reconciler.BatchSize)
	assert.Equal(t, 4, cfg.Reconciler.Worker.WorkerPoolSize)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
}

func TestLoadReconcilerConfig_InvalidAbandonWindow(t *testing.T) {
	configFile, envDir := writeConfig(t, `
database:
  host: localhost
  dbname: launchpad
ethereum:
  rpc_url: "http://localhost:8545"
  deployer_private_key: "abc"
reconciler:
  min_age: "10m"
  abandon_after: "5m"
`)

	_, err := LoadReconcilerConfig(configFile, envDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abandon_after")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		DBName:   "launchpad",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=launchpad sslmode=disable", cfg.DSN())
}
