package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agro-gps/field-backend/internal/config"
	"agro-gps/field-backend/internal/fields"
	"agro-gps/field-backend/internal/store/local"
	"agro-gps/field-backend/internal/store/remote"
	"agro-gps/field-backend/internal/syncengine"
)

// ResyncWorker periodically reconciles the local catalog against the
// remote store. It shares the local store files with the API process
// only when that process is stopped; in normal operation it runs
// against its own data directory.
type ResyncWorker struct {
	engine *syncengine.Engine
	logger *zap.Logger
	config ResyncWorkerConfig
	done   chan struct{}
}

// ResyncWorkerConfig configuration for the resync worker
type ResyncWorkerConfig struct {
	Interval      time.Duration
	ResyncTimeout time.Duration
	RunOnce       bool
}

// DefaultResyncWorkerConfig returns default configuration
func DefaultResyncWorkerConfig() ResyncWorkerConfig {
	return ResyncWorkerConfig{
		Interval:      time.Hour,
		ResyncTimeout: 5 * time.Minute,
	}
}

// NewResyncWorker creates a new resync worker
func NewResyncWorker(engine *syncengine.Engine, logger *zap.Logger, cfg ResyncWorkerConfig) *ResyncWorker {
	return &ResyncWorker{
		engine: engine,
		logger: logger,
		config: cfg,
		done:   make(chan struct{}),
	}
}

// Start starts the resync worker
func (w *ResyncWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting resync worker",
		zap.Duration("interval", w.config.Interval),
		zap.Bool("run_once", w.config.RunOnce))

	w.runResync(ctx)
	if w.config.RunOnce {
		return nil
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Resync worker shutting down")
			return nil
		case <-w.done:
			w.logger.Info("Resync worker stopped")
			return nil
		case <-ticker.C:
			w.runResync(ctx)
		}
	}
}

// Stop stops the resync worker
func (w *ResyncWorker) Stop() {
	close(w.done)
}

func (w *ResyncWorker) runResync(ctx context.Context) {
	resyncCtx, cancel := context.WithTimeout(ctx, w.config.ResyncTimeout)
	defer cancel()

	start := time.Now()
	if err := w.engine.FullResync(resyncCtx); err != nil {
		w.logger.Error("Resync failed", zap.Error(err))
		return
	}
	w.engine.Wait()

	w.logger.Info("Resync completed", zap.Duration("duration", time.Since(start)))
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Remote.URI == "" {
		logger.Fatal("MONGODB_URI is required for the resync worker")
	}

	store, err := local.Open(cfg.Local.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	defer store.Close()

	areas, products, err := store.Load()
	if err != nil {
		logger.Fatal("Failed to load local state", zap.Error(err))
	}
	catalog := fields.NewCatalog(areas, products)
	logger.Info("Local state loaded",
		zap.Int("areas", len(areas)), zap.Int("products", len(products)))

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.Sync.Timeout)
	client, err := remote.Connect(connectCtx, cfg.Remote.URI)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to remote store", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	remoteStore := remote.NewStore(client, cfg.Remote.Database, logger)
	engine := syncengine.NewEngine(remoteStore, catalog, store, logger, syncengine.Config{
		Timeout: cfg.Sync.Timeout,
	})

	workerCfg := DefaultResyncWorkerConfig()
	workerCfg.ResyncTimeout = cfg.Sync.ResyncTimeout
	if os.Getenv("RESYNC_ONCE") == "true" {
		workerCfg.RunOnce = true
	}
	if interval := os.Getenv("RESYNC_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			workerCfg.Interval = d
		}
	}

	worker := NewResyncWorker(engine, logger, workerCfg)

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := worker.Start(ctx); err != nil {
		logger.Error("Worker error", zap.Error(err))
	}

	logger.Info("Resync worker stopped")
}
