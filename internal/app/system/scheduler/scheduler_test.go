package scheduler_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/system/scheduler"
)

// manualClock records armed timers and fires them on demand.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every armed timer, including stopped ones, the way a real
// timer that raced its Stop would.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestSchedule_CollapsesBurst(t *testing.T) {
	clock := &manualClock{}
	var runs int32
	s := scheduler.New(func() { atomic.AddInt32(&runs, 1) }, scheduler.WithAfterFunc(clock.AfterFunc))

	for i := 0; i < 10; i++ {
		s.Schedule()
	}
	if !s.Pending() {
		t.Fatal("expected a pending run")
	}
	clock.fireAll()

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	if s.Pending() {
		t.Error("nothing should be pending after the run")
	}
}

func TestSchedule_ObservesFinalState(t *testing.T) {
	clock := &manualClock{}
	state := 0
	var seen []int
	s := scheduler.New(func() { seen = append(seen, state) }, scheduler.WithAfterFunc(clock.AfterFunc))

	for i := 1; i <= 3; i++ {
		state = i
		s.Schedule()
	}
	clock.fireAll()

	if len(seen) != 1 || seen[0] != 3 {
		t.Errorf("seen = %v, want [3]", seen)
	}
}

func TestCancel_DropsPendingRun(t *testing.T) {
	clock := &manualClock{}
	var runs int32
	s := scheduler.New(func() { atomic.AddInt32(&runs, 1) }, scheduler.WithAfterFunc(clock.AfterFunc))

	s.Schedule()
	s.Cancel()
	clock.fireAll()

	if runs != 0 {
		t.Errorf("runs = %d, want 0", runs)
	}
}

func TestFlush_RunsOnceAndDisarmsTimer(t *testing.T) {
	clock := &manualClock{}
	var runs int32
	s := scheduler.New(func() { atomic.AddInt32(&runs, 1) }, scheduler.WithAfterFunc(clock.AfterFunc))

	if s.Flush() {
		t.Error("Flush with nothing pending should report false")
	}

	s.Schedule()
	if !s.Flush() {
		t.Error("Flush should report a run")
	}
	clock.fireAll()

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestSchedule_RealTimer(t *testing.T) {
	done := make(chan struct{}, 4)
	s := scheduler.New(func() { done <- struct{}{} }, scheduler.WithDelay(5*time.Millisecond))

	s.Schedule()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run never fired")
	}
}

func TestFlush_WaitsForRunInProgress(t *testing.T) {
	clock := &manualClock{}
	started := make(chan struct{})
	release := make(chan struct{})
	var done int32
	s := scheduler.New(func() {
		close(started)
		<-release
		atomic.StoreInt32(&done, 1)
	}, scheduler.WithAfterFunc(clock.AfterFunc))

	s.Schedule()
	go clock.fireAll()
	<-started

	flushed := make(chan bool)
	go func() { flushed <- s.Flush() }()

	select {
	case <-flushed:
		t.Fatal("Flush returned while a run was in progress")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	if ran := <-flushed; ran {
		t.Error("Flush should report that it did not run the task itself")
	}
	if atomic.LoadInt32(&done) != 1 {
		t.Error("run should have completed before Flush returned")
	}
}
