package syncengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ResyncScheduler runs FullResync on a cron schedule. Per-edit pushes
// keep the remote current; the scheduled resync sweeps up anything a
// failed push or skipped delete left behind.
type ResyncScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	logger  *zap.Logger
	spec    string
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewResyncScheduler creates a scheduler with a standard cron spec
// (e.g. "0 3 * * *" for 3am daily).
func NewResyncScheduler(engine *Engine, spec string, timeout time.Duration, logger *zap.Logger) *ResyncScheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ResyncScheduler{
		cron:    cron.New(),
		engine:  engine,
		logger:  logger,
		spec:    spec,
		timeout: timeout,
	}
}

// Start registers the resync job and starts the scheduler
func (s *ResyncScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("resync scheduler already running")
	}

	_, err := s.cron.AddFunc(s.spec, s.runOnce)
	if err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("resync scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("resync scheduler stopped")
}

func (s *ResyncScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.engine.FullResync(ctx); err != nil {
		s.logger.Warn("scheduled resync failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled resync completed",
		zap.Duration("duration", time.Since(start)),
		zap.String("state", string(s.engine.State())))
}
