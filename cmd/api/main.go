package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agro-gps/field-backend/internal/auth"
	"agro-gps/field-backend/internal/config"
	"agro-gps/field-backend/internal/fields"
	"agro-gps/field-backend/internal/reports"
	"agro-gps/field-backend/internal/store/local"
	"agro-gps/field-backend/internal/store/remote"
	"agro-gps/field-backend/internal/syncengine"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return cfg.Build()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// ---------------- LOCAL STORE ----------------
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

	// ---------------- REMOTE STORE ----------------
	// Remote is optional; without it every mutation stays local
	var remoteStore syncengine.RemoteStore
	authService := auth.NewService(nil, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger)
	if cfg.Remote.URI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Sync.Timeout)
		client, err := remote.Connect(ctx, cfg.Remote.URI)
		cancel()
		if err != nil {
			logger.Warn("Remote store unreachable, running local-only", zap.Error(err))
		} else {
			defer client.Disconnect(context.Background())
			rs := remote.NewStore(client, cfg.Remote.Database, logger)
			remoteStore = rs
			authService = auth.NewService(rs.Database(), cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger)
		}
	}

	// ---------------- SYNC ENGINE ----------------
	engine := syncengine.NewEngine(remoteStore, catalog, store, logger, syncengine.Config{
		Timeout: cfg.Sync.Timeout,
		Gate:    authService.SignedIn,
	})

	pullCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.Sync.Timeout)
	if err := engine.PullOnStartup(pullCtx); err != nil {
		logger.Warn("Startup pull failed, running from local state", zap.Error(err))
	}
	cancel()
	logger.Info("Sync engine ready", zap.String("state", string(engine.State())))

	var scheduler *syncengine.ResyncScheduler
	if cfg.Sync.ResyncSchedule != "" && remoteStore != nil {
		scheduler = syncengine.NewResyncScheduler(engine, cfg.Sync.ResyncSchedule, cfg.Sync.ResyncTimeout, logger)
		if err := scheduler.Start(); err != nil {
			logger.Fatal("Failed to start resync scheduler", zap.Error(err))
		}
	}

	r := gin.Default()

	// ---------------- AUTH ----------------
	authHandler := auth.NewHandler(authService)
	auth.RegisterRoutes(r, authHandler)

	// ---------------- FIELDS ----------------
	fieldService := fields.NewService(catalog, store, engine, logger)
	fieldHandler := fields.NewHandler(fieldService)
	fields.RegisterRoutes(r, fieldHandler)

	// ---------------- REPORTS ----------------
	reportHandler := reports.NewHandler(catalog, logger)
	reports.RegisterRoutes(r, reportHandler)

	// ---------------- PING ----------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "API alive!",
			"sync":    string(engine.State()),
		})
	})

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: r,
	}

	go func() {
		logger.Info("Server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop the scheduler, drain in-flight pushes,
	// then close the server.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	if scheduler != nil {
		scheduler.Stop()
	}
	engine.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
