// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Refresher is what RefreshJob drives; *panorama.Controller satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob creates a job that reloads the municipality list and the map
// panorama so the colors follow the program backend without a restart.
// A failed refresh keeps the previous data.
func RefreshJob(r Refresher, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "panorama-refresh",
		Interval: interval,
		Run: func(ctx context.Context) error {
			start := time.Now()
			if err := r.Refresh(ctx); err != nil {
				return err
			}
			logger.Debug("panorama refreshed", zap.Duration("took", time.Since(start)))
			return nil
		},
	}
}
