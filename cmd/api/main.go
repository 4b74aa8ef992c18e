package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-launchpad/internal/actuator"
	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/api/middleware"
	"github.com/feral-file/ff-launchpad/internal/api/server"
	"github.com/feral-file/ff-launchpad/internal/config"
	"github.com/feral-file/ff-launchpad/internal/coordinator"
	"github.com/feral-file/ff-launchpad/internal/lock"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/logo"
	"github.com/feral-file/ff-launchpad/internal/messaging"
	ethprovider "github.com/feral-file/ff-launchpad/internal/providers/ethereum"
	"github.com/feral-file/ff-launchpad/internal/providers/explorer"
	"github.com/feral-file/ff-launchpad/internal/providers/jetstream"
	"github.com/feral-file/ff-launchpad/internal/providers/listing"
	"github.com/feral-file/ff-launchpad/internal/ratelimit"
	"github.com/feral-file/ff-launchpad/internal/store"
	"github.com/feral-file/ff-launchpad/internal/verifier"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create shutdown context with timeout
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Launchpad API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Redis backs the explorer throttle and, when selected, the owner lock
	var redisClient adapter.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient = adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		logger.WarnCtx(ctx, "Redis not configured, explorer throttle is local to this instance")
	}

	// Owner lock, and with several instances a signer lock for the shared deployer key
	var locker, signerLock lock.Locker
	switch cfg.Lock.Driver {
	case "redis":
		if redisClient == nil {
			logger.FatalCtx(ctx, "Redis lock driver requires redis.addr")
		}
		locker = lock.NewRedisLocker(redisClient.NewLocker(), clock, lock.RedisConfig{
			KeyPrefix:   cfg.Lock.KeyPrefix,
			TTL:         cfg.Lock.TTL,
			WaitTimeout: cfg.Lock.WaitTimeout,
		})
		signerLock = lock.NewRedisLocker(redisClient.NewLocker(), clock, lock.RedisConfig{
			KeyPrefix:   cfg.Lock.SignerKeyPrefix,
			TTL:         cfg.Lock.TTL,
			WaitTimeout: cfg.Lock.WaitTimeout,
		})
	default:
		locker = lock.NewLocalLocker(cfg.Lock.WaitTimeout)
	}
	logger.InfoCtx(ctx, "Initialized owner lock", zap.String("driver", cfg.Lock.Driver))

	// Explorer client behind the shared rate limit
	rateLimitProxy, err := ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderLimit{
			explorer.PROVIDER_NAME: {
				RequestsPerSecond: cfg.Explorer.RequestsPerSecond,
				MaxWait:           cfg.Explorer.Timeout,
			},
		},
		KeyPrefix:           cfg.RateLimit.KeyPrefix,
		EnableLocalFallback: cfg.RateLimit.EnableLocalFallback,
		LocalFallbackFactor: cfg.RateLimit.LocalFallbackFactor,
	}, redisClient, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create rate limit proxy", zap.Error(err))
	}
	defer func() { _ = rateLimitProxy.Close() }()

	explorerClient := explorer.NewClient(adapter.NewHTTPClient(cfg.Explorer.Timeout), rateLimitProxy, jsonAdapter, cfg.Explorer.URL, cfg.Explorer.APIKey)
	paymentVerifier := verifier.New(explorerClient, clock, dataStore, verifier.Config{
		RequireReferenceMatch: cfg.Payment.RequireReferenceMatch,
	})

	// Connect to the chain
	chainID, err := cfg.Ethereum.ChainID.ChainID()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid chain id", zap.Error(err), zap.String("chain", string(cfg.Ethereum.ChainID)))
	}
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err))
	}
	defer ethClient.Close()
	if err := ethprovider.VerifyChain(ctx, ethClient, chainID); err != nil {
		logger.FatalCtx(ctx, "Ethereum RPC serves the wrong chain", zap.Error(err))
	}

	artifact, err := loadArtifact(fs, cfg.Ethereum.ContractArtifactPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load contract artifact", zap.Error(err), zap.String("path", cfg.Ethereum.ContractArtifactPath))
	}
	tokenClient, err := ethprovider.NewTokenClient(ethClient, clock, ethprovider.Config{
		ChainID:               chainID,
		PrivateKey:            cfg.Ethereum.DeployerPrivateKey,
		Artifact:              artifact,
		DeployGasLimit:        cfg.Ethereum.DeployGasLimit,
		EnableTradingGasLimit: cfg.Ethereum.EnableTradingGasLimit,
		ReceiptTimeout:        cfg.Ethereum.ReceiptTimeout,
		ReceiptPollInterval:   cfg.Ethereum.ReceiptPollInterval,
		SignerLock:            signerLock,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create token client", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to chain",
		zap.String("chain", string(cfg.Ethereum.ChainID)),
		zap.String("account", tokenClient.Address()),
	)

	// Listing client, manual review when no listing service is configured
	var listingClient listing.Client
	if cfg.Listing.URL != "" {
		listingClient = listing.NewClient(adapter.NewHTTPClient(cfg.Listing.Timeout), jsonAdapter, cfg.Listing.URL, cfg.Listing.APIKey)
	} else {
		logger.WarnCtx(ctx, "Listing service not configured, listings are queued for manual review")
		listingClient = listing.NewManualClient(clock)
	}

	act := actuator.New(cfg.Ethereum.ChainID, tokenClient, listingClient)

	// Event publisher
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, events are not published")
		publisher = messaging.NewNoopPublisher()
	}
	defer publisher.Close()

	// Coordinator
	unlockPrice, err := cfg.Payment.UnlockPriceDecimal()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid unlock price", zap.Error(err))
	}
	listingPrice, err := cfg.Payment.ListingPriceDecimal()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid listing price", zap.Error(err))
	}
	coord := coordinator.New(dataStore, paymentVerifier, act, locker, publisher, clock, coordinator.Config{
		Wallets:       cfg.Wallets.WalletSet(),
		PaymentWallet: cfg.Payment.Wallet,
		UnlockPrice:   unlockPrice,
		ListingPrice:  listingPrice,
		PaymentWindow: cfg.Payment.Window,
	})

	// Logo storage
	if err := fs.MkdirAll(cfg.Logo.Dir, 0o755); err != nil {
		logger.FatalCtx(ctx, "Failed to create logo directory", zap.Error(err), zap.String("dir", cfg.Logo.Dir))
	}
	logos := logo.NewProcessor(fs, adapter.NewImageEncoder(), clock, logo.Config{
		Dir:     cfg.Logo.Dir,
		MaxSize: cfg.Logo.MaxSize,
	})

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		MaxLogoSize: cfg.Logo.MaxSize,
	}

	// Create and start server
	srv := server.New(serverConfig, coord, logos)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, fmt.Errorf("server forced to shutdown: %w", err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}

// loadArtifact reads the compiled token contract from disk
func loadArtifact(fs adapter.FileSystem, path string) (*ethprovider.Artifact, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ethprovider.ParseArtifact(f)
}
