// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler errors
var (
	ErrAlreadyRunning = errors.New("retention scheduler already running")
	ErrInvalidConfig  = errors.New("invalid retention scheduler configuration")
)

// Sweeper removes stored documents older than a given age
type Sweeper interface {
	Sweep(ctx context.Context, olderThan time.Duration) (int, error)
}

// RetentionConfig holds configuration for the export retention job
type RetentionConfig struct {
	// Schedule is a standard 5 field cron expression
	Schedule string
	// Retention is how long exported documents are kept
	Retention time.Duration
	// RunOnStartup sweeps once when the scheduler starts
	RunOnStartup bool
	// JobTimeout bounds a single sweep
	JobTimeout time.Duration
}

// DefaultRetentionConfig sweeps daily at 03:00 and keeps 30 days
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Schedule:   "0 3 * * *",
		Retention:  30 * 24 * time.Hour,
		JobTimeout: 5 * time.Minute,
	}
}

// RetentionScheduler periodically deletes expired exported documents
type RetentionScheduler struct {
	config  RetentionConfig
	sweeper Sweeper
	logger  *zap.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	isRunning bool
	lastRun   time.Time
	lastCount int
	lastErr   error
}

// NewRetentionScheduler validates the schedule and creates a scheduler
func NewRetentionScheduler(config RetentionConfig, sweeper Sweeper, logger *zap.Logger) (*RetentionScheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("%w: sweeper is required", ErrInvalidConfig)
	}
	defaults := DefaultRetentionConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, config.Schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionScheduler{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
	}, nil
}

// Start registers the sweep job and starts the cron runner
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrAlreadyRunning
	}

	cl := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))
	if _, err := c.AddFunc(s.config.Schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	c.Start()
	s.cron = c
	s.isRunning = true

	s.logger.Info("Retention scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.Duration("retention", s.config.Retention),
	)

	if s.config.RunOnStartup {
		go s.RunOnce(ctx)
	}
	return nil
}

// Stop stops the runner and waits for a running sweep to finish or ctx to
// expire
func (s *RetentionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	done := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-done.Done():
		s.logger.Info("Retention scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce sweeps immediately and returns the number of deleted documents
func (s *RetentionScheduler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	count, err := s.sweeper.Sweep(ctx, s.config.Retention)

	s.mu.Lock()
	s.lastRun = start
	s.lastCount = count
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Retention sweep failed", zap.Error(err), zap.Int("deleted", count))
		return count, err
	}
	s.logger.Info("Retention sweep finished",
		zap.Int("deleted", count),
		zap.Duration("duration", time.Since(start)),
	)
	return count, nil
}

// Status reports the outcome of the last sweep
type Status struct {
	Running   bool
	LastRun   time.Time
	LastCount int
	LastError error
}

// Status returns the scheduler state
func (s *RetentionScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:   s.isRunning,
		LastRun:   s.lastRun,
		LastCount: s.lastCount,
		LastError: s.lastErr,
	}
}

// cronLogger adapts zap to the cron.Logger interface
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

var _ cron.Logger = cronLogger{}
