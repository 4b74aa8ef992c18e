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
	"github.com/feral-file/ff-launchpad/internal/config"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/messaging"
	ethprovider "github.com/feral-file/ff-launchpad/internal/providers/ethereum"
	"github.com/feral-file/ff-launchpad/internal/providers/jetstream"
	"github.com/feral-file/ff-launchpad/internal/providers/listing"
	"github.com/feral-file/ff-launchpad/internal/reconciler"
	"github.com/feral-file/ff-launchpad/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Reconciler")

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
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

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

	artifact, err := loadArtifact(adapter.NewFileSystem(), cfg.Ethereum.ContractArtifactPath)
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
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create token client", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to chain",
		zap.String("chain", string(cfg.Ethereum.ChainID)),
		zap.String("account", tokenClient.Address()),
	)

	// Listing client
	var listingClient listing.Client
	if cfg.Listing.URL != "" {
		listingClient = listing.NewClient(adapter.NewHTTPClient(cfg.Listing.Timeout), jsonAdapter, cfg.Listing.URL, cfg.Listing.APIKey)
	} else {
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
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, events are not published")
		publisher = messaging.NewNoopPublisher()
	}
	defer publisher.Close()

	// Initialize reconciler
	pendingReconciler := reconciler.New(reconciler.Config{
		Interval:       cfg.Reconciler.Interval,
		MinAge:         cfg.Reconciler.MinAge,
		AbandonAfter:   cfg.Reconciler.AbandonAfter,
		BatchSize:      cfg.Reconciler.BatchSize,
		WorkerPoolSize: cfg.Reconciler.Worker.WorkerPoolSize,
	}, dataStore, act, publisher, clock)

	// Start the reconciler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := pendingReconciler.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the reconciler
	cancel()

	// Give the reconciler time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := pendingReconciler.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
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
