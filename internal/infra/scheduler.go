package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner removes view states idle for longer than maxIdle
type Pruner interface {
	PruneIdle(ctx context.Context, maxIdle time.Duration) (int64, error)
}

// Scheduler runs the idle view-state janitor
type Scheduler struct {
	cron    *cron.Cron
	pruner  Pruner
	maxIdle time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(pruner Pruner, maxIdle time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pruner:  pruner,
		maxIdle: maxIdle,
		timeout: time.Minute,
		logger:  logger,
	}
}

// Start registers the janitor on schedule and starts the cron runner
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.RunJanitor); err != nil {
		return fmt.Errorf("failed to schedule janitor %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("janitor_schedule", schedule), zap.Duration("max_idle", s.maxIdle))
	return nil
}

// RunJanitor prunes idle view states once
func (s *Scheduler) RunJanitor() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.pruner.PruneIdle(ctx, s.maxIdle)
	if err != nil {
		s.logger.Error("janitor failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("pruned idle view states", zap.Int64("count", n))
	}
}

// Stop stops the scheduler and waits for a running job
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
