// Package scheduler runs the periodic maintenance jobs of the service.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrSchedulerNotRunning is returned by TriggerImmediate before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	// ErrInvalidConfig wraps every configuration rejected by Validate
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

// CounterCleaner retires counters of past years and reports how many.
type CounterCleaner interface {
	Run(ctx context.Context) (int64, error)
}

// CounterCleanupSchedulerConfig controls when the cleanup runs
type CounterCleanupSchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	Timeout    time.Duration // per run
	RunOnStart bool
}

// DefaultCounterCleanupSchedulerConfig runs daily, first right after start
func DefaultCounterCleanupSchedulerConfig() CounterCleanupSchedulerConfig {
	return CounterCleanupSchedulerConfig{
		Enabled:    true,
		Interval:   24 * time.Hour,
		Timeout:    5 * time.Minute,
		RunOnStart: true,
	}
}

// Validate only checks an enabled configuration.
func (c CounterCleanupSchedulerConfig) Validate() error {
	switch {
	case !c.Enabled:
		return nil
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// CounterCleanupScheduler runs the cleaner every Interval on one goroutine.
// Runs never overlap: a trigger while a run is in progress queues at most
// one more.
type CounterCleanupScheduler struct {
	cleaner CounterCleaner
	log     *zap.Logger
	cfg     CounterCleanupSchedulerConfig
	trigger chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc // nil when stopped
	done   chan struct{}
}

// NewCounterCleanupScheduler validates cfg and returns a stopped scheduler
func NewCounterCleanupScheduler(cleaner CounterCleaner, log *zap.Logger, cfg CounterCleanupSchedulerConfig) (*CounterCleanupScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CounterCleanupScheduler{
		cleaner: cleaner,
		log:     log.Named("counter_cleanup"),
		cfg:     cfg,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Start launches the loop under ctx. Starting a running or disabled
// scheduler does nothing.
func (s *CounterCleanupScheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("Counter cleanup disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.log.Info("Counter cleanup scheduled",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("run_on_start", s.cfg.RunOnStart))
	return nil
}

// Stop cancels the loop, including a run in progress, and waits for it
// until ctx ends.
func (s *CounterCleanupScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		s.log.Info("Counter cleanup stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("Counter cleanup did not stop in time")
		return ctx.Err()
	}
}

// TriggerImmediate asks the loop for a run now. It does not wait for it.
func (s *CounterCleanupScheduler) TriggerImmediate(ctx context.Context) error {
	if !s.IsRunning() {
		return ErrSchedulerNotRunning
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.trigger <- struct{}{}:
	default: // one already pending
	}
	return nil
}

// IsRunning reports whether the loop is started and not yet stopped
func (s *CounterCleanupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *CounterCleanupScheduler) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	if s.cfg.RunOnStart {
		s.runOnce(ctx)
	}
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.trigger:
		}
		s.runOnce(ctx)
	}
}

func (s *CounterCleanupScheduler) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	retired, err := s.cleaner.Run(ctx)
	if err != nil {
		s.log.Error("Counter cleanup failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Info("Counter cleanup done", zap.Duration("took", time.Since(start)), zap.Int64("retired", retired))
}
