// Package maintenance runs periodic database housekeeping inside the server
// process.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/metrics"
)

// Task is one unit of housekeeping.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs Task at startup and then every Interval until ctx is done.
// Failures are logged and retried on the next tick.
type Scheduler struct {
	Task     Task
	Interval time.Duration
	Logger   *slog.Logger
}

func (s *Scheduler) Run(ctx context.Context) {
	if s.Task == nil || s.Interval <= 0 {
		return
	}
	logger := logging.OrDefault(s.Logger).With("task", s.Task.Name())

	s.runOnce(ctx, logger, "initial")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, logger, "scheduled")
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, logger *slog.Logger, trigger string) {
	if err := s.Task.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.MaintenanceRunsTotal.WithLabelValues(s.Task.Name(), "error").Inc()
		logger.Error(trigger+" maintenance run failed", "err", err)
		return
	}
	metrics.MaintenanceRunsTotal.WithLabelValues(s.Task.Name(), "success").Inc()
}
