// Package scheduler runs the periodic feed sync. The trigger is a plain
// ticker; retry and backoff policy belong to whoever owns the task.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler invokes a task on a fixed interval until its context is canceled.
type Scheduler struct {
	interval time.Duration
	task     func(context.Context) error
	logger   *slog.Logger
}

// New creates a Scheduler. interval must be positive.
func New(interval time.Duration, task func(context.Context) error, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Run executes the task once immediately, then on every tick, and returns
// when ctx is canceled. It is meant to be started in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce shields the ticker loop from task failures and panics; a broken
// run must not stop future runs.
func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "scheduled task panicked", "panic", r)
		}
	}()
	if err := s.task(ctx); err != nil {
		s.logger.ErrorContext(ctx, "scheduled task failed", "err", err)
	}
}
