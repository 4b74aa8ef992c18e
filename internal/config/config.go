package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration.
// An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// RedisConfig holds Redis configuration shared by the lock and the rate limiter
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LockConfig selects the owner lock implementation
type LockConfig struct {
	// Driver is either "local" or "redis"
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	// WaitTimeout bounds how long an operation waits for a busy owner lock
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	// SignerKeyPrefix names the lock serialising transactions of the deployer key
	SignerKeyPrefix string `mapstructure:"signer_key_prefix"`
}

// EthereumConfig holds configuration for the token contract actuator
type EthereumConfig struct {
	RPCURL                string        `mapstructure:"rpc_url"`
	ChainID               domain.Chain  `mapstructure:"chain_id"`
	DeployerPrivateKey    string        `mapstructure:"deployer_private_key"`
	ContractArtifactPath  string        `mapstructure:"contract_artifact_path"`
	DeployGasLimit        uint64        `mapstructure:"deploy_gas_limit"`
	EnableTradingGasLimit uint64        `mapstructure:"enable_trading_gas_limit"`
	ReceiptTimeout        time.Duration `mapstructure:"receipt_timeout"`
	ReceiptPollInterval   time.Duration `mapstructure:"receipt_poll_interval"`
}

// WalletsConfig holds the fee wallets passed to every deployed contract
type WalletsConfig struct {
	Dev       string `mapstructure:"dev"`
	Marketing string `mapstructure:"marketing"`
	Liquidity string `mapstructure:"liquidity"`
}

// WalletSet converts the configuration into a domain wallet set
func (w WalletsConfig) WalletSet() domain.WalletSet {
	return domain.WalletSet{
		Dev:       w.Dev,
		Marketing: w.Marketing,
		Liquidity: w.Liquidity,
	}
}

// ExplorerConfig holds the block explorer API configuration
type ExplorerConfig struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
}

// ListingConfig holds the listing service configuration
type ListingConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PaymentConfig holds pricing and payment verification configuration
type PaymentConfig struct {
	Wallet string `mapstructure:"wallet"`
	// Prices are decimal amounts in the chain's native currency
	UnlockPrice           string        `mapstructure:"unlock_price"`
	ListingPrice          string        `mapstructure:"listing_price"`
	Window                time.Duration `mapstructure:"window"`
	RequireReferenceMatch bool          `mapstructure:"require_reference_match"`
}

// UnlockPriceDecimal parses the unlock price
func (p PaymentConfig) UnlockPriceDecimal() (decimal.Decimal, error) {
	return parsePrice("payment.unlock_price", p.UnlockPrice)
}

// ListingPriceDecimal parses the listing price
func (p PaymentConfig) ListingPriceDecimal() (decimal.Decimal, error) {
	return parsePrice("payment.listing_price", p.ListingPrice)
}

func parsePrice(key, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// LogoConfig holds logo storage configuration
type LogoConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// RateLimitConfig holds the explorer throttle configuration
type RateLimitConfig struct {
	KeyPrefix           string  `mapstructure:"key_prefix"`
	EnableLocalFallback bool    `mapstructure:"enable_local_fallback"`
	LocalFallbackFactor float64 `mapstructure:"local_fallback_factor"`
}

// ReconcilerSettings holds configuration for the pending action reconciler
type ReconcilerSettings struct {
	Interval     time.Duration `mapstructure:"interval"`
	MinAge       time.Duration `mapstructure:"min_age"`
	AbandonAfter time.Duration `mapstructure:"abandon_after"`
	BatchSize    int           `mapstructure:"batch_size"`
	Worker       WorkerConfig  `mapstructure:"worker"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Auth       AuthConfig      `mapstructure:"auth"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Lock       LockConfig      `mapstructure:"lock"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Ethereum   EthereumConfig  `mapstructure:"ethereum"`
	Wallets    WalletsConfig   `mapstructure:"wallets"`
	Explorer   ExplorerConfig  `mapstructure:"explorer"`
	Listing    ListingConfig   `mapstructure:"listing"`
	Payment    PaymentConfig   `mapstructure:"payment"`
	Logo       LogoConfig      `mapstructure:"logo"`
}

// ReconcilerConfig holds configuration for the reconciler program
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig     `mapstructure:"database"`
	NATS       NATSConfig         `mapstructure:"nats"`
	Ethereum   EthereumConfig     `mapstructure:"ethereum"`
	Listing    ListingConfig      `mapstructure:"listing"`
	Reconciler ReconcilerSettings `mapstructure:"reconciler"`
}

// setCommonDefaults sets defaults shared by every program
func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("environment", "development")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "LAUNCHPAD_EVENTS")
	v.SetDefault("ethereum.chain_id", string(domain.ChainBSCMainnet))
	v.SetDefault("ethereum.rpc_url", "https://bsc-dataseed.binance.org/")
	v.SetDefault("ethereum.contract_artifact_path", "contracts/MemeCoin.json")
	v.SetDefault("ethereum.deploy_gas_limit", 5_000_000)
	v.SetDefault("ethereum.enable_trading_gas_limit", 200_000)
	v.SetDefault("ethereum.receipt_timeout", "2m")
	v.SetDefault("ethereum.receipt_poll_interval", "3s")
	v.SetDefault("listing.timeout", "30s")
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("nats.connection_name", "launchpad-api")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	// confirm operations may wait for a receipt
	v.SetDefault("server.write_timeout", 180)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("lock.driver", "local")
	v.SetDefault("lock.ttl", "5m")
	v.SetDefault("lock.wait_timeout", "30s")
	v.SetDefault("lock.key_prefix", "launchpad:owner:")
	v.SetDefault("lock.signer_key_prefix", "launchpad:signer:")
	v.SetDefault("rate_limit.key_prefix", "launchpad:limiter:")
	v.SetDefault("rate_limit.enable_local_fallback", true)
	v.SetDefault("rate_limit.local_fallback_factor", 0.5)
	v.SetDefault("explorer.url", "https://api.bscscan.com/api")
	v.SetDefault("explorer.timeout", "15s")
	v.SetDefault("explorer.requests_per_second", 5)
	v.SetDefault("payment.unlock_price", "0.05")
	v.SetDefault("payment.listing_price", "0.5")
	v.SetDefault("payment.window", "1h")
	v.SetDefault("payment.require_reference_match", false)
	v.SetDefault("logo.dir", "data/logos")
	v.SetDefault("logo.max_size", 5*1024*1024) // 5MB

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the keys the API cannot start without
func (c *APIConfig) Validate() error {
	if err := validateDatabase(c.Database); err != nil {
		return err
	}
	if err := validateEthereum(c.Ethereum); err != nil {
		return err
	}
	if err := c.Wallets.WalletSet().Validate(); err != nil {
		return fmt.Errorf("wallets: %w", err)
	}
	if !domain.IsValidAddress(c.Payment.Wallet) {
		return errors.New("payment.wallet must be a valid address")
	}
	if _, err := c.Payment.UnlockPriceDecimal(); err != nil {
		return err
	}
	if _, err := c.Payment.ListingPriceDecimal(); err != nil {
		return err
	}
	if c.Payment.Window <= 0 {
		return errors.New("payment.window must be positive")
	}
	if c.Explorer.URL == "" {
		return errors.New("explorer.url is required")
	}
	switch c.Lock.Driver {
	case "local":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when lock.driver is redis")
		}
	default:
		return fmt.Errorf("unknown lock.driver %q", c.Lock.Driver)
	}
	return nil
}

// LoadReconcilerConfig loads configuration for the reconciler program
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("nats.connection_name", "launchpad-reconciler")
	v.SetDefault("reconciler.interval", "1m")
	v.SetDefault("reconciler.min_age", "3m")
	v.SetDefault("reconciler.abandon_after", "30m")
	v.SetDefault("reconciler.batch_size", 50)
	v.SetDefault("reconciler.worker.pool_size", 4)
	v.SetDefault("reconciler.worker.queue_size", 100)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if err := validateEthereum(cfg.Ethereum); err != nil {
		return nil, err
	}
	if cfg.Reconciler.AbandonAfter <= cfg.Reconciler.MinAge {
		return nil, errors.New("reconciler.abandon_after must be greater than reconciler.min_age")
	}

	return &cfg, nil
}

func validateDatabase(db DatabaseConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

func validateEthereum(eth EthereumConfig) error {
	if eth.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if !domain.IsValidChain(eth.ChainID) {
		return fmt.Errorf("ethereum.chain_id %q is not supported", eth.ChainID)
	}
	if eth.DeployerPrivateKey == "" {
		return errors.New("ethereum.deployer_private_key is required")
	}
	if eth.ReceiptTimeout <= 0 {
		return errors.New("ethereum.receipt_timeout must be positive")
	}
	return nil
}

// readConfig reads the config file, falling back to environment variables when it does not exist
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/, cmd/reconciler/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Lock
		"lock.driver",
		"lock.signer_key_prefix",
		"lock.ttl",
		"lock.wait_timeout",
		"lock.key_prefix",
		// Rate limit
		"rate_limit.key_prefix",
		"rate_limit.enable_local_fallback",
		"rate_limit.local_fallback_factor",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.deployer_private_key",
		"ethereum.contract_artifact_path",
		"ethereum.deploy_gas_limit",
		"ethereum.enable_trading_gas_limit",
		"ethereum.receipt_timeout",
		"ethereum.receipt_poll_interval",
		// Wallets
		"wallets.dev",
		"wallets.marketing",
		"wallets.liquidity",
		// Explorer
		"explorer.url",
		"explorer.api_key",
		"explorer.timeout",
		"explorer.requests_per_second",
		// Listing
		"listing.url",
		"listing.api_key",
		"listing.timeout",
		// Payment
		"payment.wallet",
		"payment.unlock_price",
		"payment.listing_price",
		"payment.window",
		"payment.require_reference_match",
		// Logo
		"logo.dir",
		"logo.max_size",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Reconciler
		"reconciler.interval",
		"reconciler.min_age",
		"reconciler.abandon_after",
		"reconciler.batch_size",
		"reconciler.worker.pool_size",
		"reconciler.worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
