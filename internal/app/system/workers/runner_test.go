package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsOnInterval(t *testing.T) {
	var runs int32
	ran := make(chan struct{}, 8)
	job := tasks.Job{
		Name:     "test",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			atomic.AddInt32(&runs, 1)
			ran <- struct{}{}
			return errors.New("failures are logged, not fatal")
		},
	}
	w := NewRunner(job, zap.NewNop(), time.Second)
	w.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	w.Stop()
	w.Stop()

	n := atomic.LoadInt32(&runs)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&runs) != n {
		t.Error("job ran after Stop")
	}
}

func TestRunner_StopCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	job := tasks.Job{
		Name:     "slow",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}
	w := NewRunner(job, zap.NewNop(), time.Hour)
	w.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	done := make(chan struct{})
	go func() { w.Stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the running job")
	}
}
