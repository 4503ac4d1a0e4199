// Package scheduler provides a single-slot pending task: scheduling while a
// run is pending replaces it, so a burst of requests collapses into one run
// that observes the state left by the last request.
package scheduler

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the slot needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f after d. time.AfterFunc satisfies it
// through the adapter in New; tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Slot runs fn at most once per batch of Schedule calls.
type Slot struct {
	mu      sync.Mutex
	fn      func()
	delay   time.Duration
	after   AfterFunc
	timer   Timer
	gen     uint64 // bumped on every Schedule/Cancel; a timer only runs if its gen is current
	pending bool
	running int
	idle    *sync.Cond // signalled when running drops

	runMu sync.Mutex // serializes runs of fn
}

// Option configures a Slot.
type Option func(*Slot)

// WithDelay sets the wait before a scheduled run. Zero means "next tick".
func WithDelay(d time.Duration) Option {
	return func(s *Slot) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithAfterFunc replaces the timer source (for tests).
func WithAfterFunc(af AfterFunc) Option {
	return func(s *Slot) {
		if af != nil {
			s.after = af
		}
	}
}

// New creates a Slot that runs fn.
func New(fn func(), opts ...Option) *Slot {
	s := &Slot{fn: fn, after: realAfterFunc}
	s.idle = sync.NewCond(&s.mu)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule requests a run. Any pending, not-yet-fired run is invalidated
// and replaced.
func (s *Slot) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.pending = true
	gen := s.gen
	s.timer = s.after(s.delay, func() { s.fire(gen) })
}

// Cancel drops any pending run.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Pending reports whether a run is scheduled and has not fired yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush runs a pending task now, on the caller's goroutine, and cancels its
// timer. With nothing pending it waits for a run already in progress. It
// reports whether it ran the task itself. fn must not call Flush.
func (s *Slot) Flush() bool {
	s.mu.Lock()
	if !s.pending {
		for s.running > 0 {
			s.idle.Wait()
		}
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	s.running++
	s.mu.Unlock()

	s.run()
	return true
}

func (s *Slot) fire(gen uint64) {
	s.mu.Lock()
	if !s.pending || gen != s.gen {
		// Replaced, cancelled, or flushed since this timer was armed.
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.running++
	s.mu.Unlock()

	s.run()
}

// run executes fn; the caller has already counted it in running.
func (s *Slot) run() {
	defer func() {
		s.mu.Lock()
		s.running--
		s.idle.Broadcast()
		s.mu.Unlock()
	}()
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.fn()
}

func (s *Slot) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.pending = false
}
