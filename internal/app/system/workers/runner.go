// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/system/tasks"
	"go.uber.org/zap"
)

// Runner is a background worker that runs a job on a fixed interval.
type Runner struct {
	job     tasks.Job
	log     *zap.Logger
	timeout time.Duration
	stopCh  chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewRunner creates a worker for job.
//
// Parameters:
//   - job: the work to run; job.Interval must be positive
//   - logger: zap logger for logging
//   - timeout: per-run deadline (e.g., timeouts.Long())
func NewRunner(job tasks.Job, logger *zap.Logger, timeout time.Duration) *Runner {
	return &Runner{
		job:     job,
		log:     logger,
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the background loop. The first run happens one interval
// after Start.
func (w *Runner) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("background job started",
		zap.String("job", w.job.Name),
		zap.Duration("interval", w.job.Interval))
}

// Stop signals the worker to stop and waits for an in-flight run to
// finish. Calling Stop more than once is safe.
func (w *Runner) Stop() {
	w.stopped.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("background job stopped", zap.String("job", w.job.Name))
	})
}

func (w *Runner) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.once()
		}
	}
}

func (w *Runner) once() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	// Stop cancels a run that is still waiting on the network.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.job.Run(ctx); err != nil {
		w.log.Warn("background job failed", zap.String("job", w.job.Name), zap.Error(err))
	}
}
