// internal/app/coloring/engine.go
//
// Package coloring keeps the fill color of every map shape consistent with
// the registry's participation and level data, and keeps the legend counts
// consistent with what was drawn. Colors and counts are produced by the same
// single pass over the shapes.
package coloring

import (
	"sync"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/system/scheduler"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
)

// Engine recolors an overlay from a registry. Recolor requests are
// coalesced: any number of ScheduleRecolor calls before the pass fires
// produce one pass that sees the final state.
type Engine struct {
	log  *zap.Logger
	reg  *registry.Registry
	slot *scheduler.Slot

	mu        sync.Mutex
	overlay   *overlay.Overlay
	mode      Mode
	mission   models.MissionStatusSets
	last      Counts
	passes    uint64
	listeners []func(Counts)
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	sched []scheduler.Option
}

// WithDelay sets how long a scheduled recolor waits. Zero (the default)
// runs it on the next tick.
func WithDelay(d time.Duration) Option {
	return func(o *engineOptions) { o.sched = append(o.sched, scheduler.WithDelay(d)) }
}

// WithAfterFunc replaces the timer source used to schedule passes.
func WithAfterFunc(af scheduler.AfterFunc) Option {
	return func(o *engineOptions) { o.sched = append(o.sched, scheduler.WithAfterFunc(af)) }
}

// New creates an engine over reg. Attach an overlay before passes can draw.
func New(reg *registry.Registry, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		log:  logger,
		reg:  reg,
		mode: ModeLevel,
		last: newCounts(ModeLevel),
	}
	e.slot = scheduler.New(e.RecolorNow, o.sched...)
	return e
}

// AttachOverlay sets the shapes to draw and schedules a pass so data set
// before the overlay existed is applied.
func (e *Engine) AttachOverlay(o *overlay.Overlay) {
	e.mu.Lock()
	e.overlay = o
	e.mu.Unlock()
	e.ScheduleRecolor()
}

// SetLevelData replaces the registry's level assignments and participation
// set. It does not redraw; call ScheduleRecolor.
func (e *Engine) SetLevelData(levels map[models.MunicipalityID]models.Level, participating models.IDSet) {
	e.reg.SetLevelData(levels, participating)

	e.mu.Lock()
	attached := e.overlay != nil
	e.mu.Unlock()
	if !attached {
		e.log.Warn("level data set before the overlay was attached; it will be drawn on the next recolor",
			zap.Int("levels", len(levels)),
			zap.Int("participating", len(participating)))
	}
}

// ScheduleRecolor requests a pass, replacing any pending one.
func (e *Engine) ScheduleRecolor() { e.slot.Schedule() }

// Flush runs a pending pass now. It reports whether one ran.
func (e *Engine) Flush() bool { return e.slot.Flush() }

// Pending reports whether a pass is scheduled.
func (e *Engine) Pending() bool { return e.slot.Pending() }

// SetMissionFilterColors switches to the mission-status table using sets
// and schedules a pass.
func (e *Engine) SetMissionFilterColors(sets models.MissionStatusSets) {
	e.mu.Lock()
	e.mode = ModeMission
	e.mission = models.MissionStatusSets{
		Completed: sets.Completed.Clone(),
		Started:   sets.Started.Clone(),
		Pending:   sets.Pending.Clone(),
	}
	e.mu.Unlock()
	e.ScheduleRecolor()
}

// Stop drops a scheduled pass that has not run yet.
func (e *Engine) Stop() { e.slot.Cancel() }

// ClearMissionFilter restores the level table and schedules a pass.
func (e *Engine) ClearMissionFilter() {
	e.mu.Lock()
	e.mode = ModeLevel
	e.mission = models.MissionStatusSets{}
	e.mu.Unlock()
	e.ScheduleRecolor()
}

// Mode is the active color table.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// LastCounts returns the counts of the most recent completed pass.
func (e *Engine) LastCounts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last.clone()
}

// Passes is the number of completed passes.
func (e *Engine) Passes() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passes
}

// OnRecolor registers fn to run after every completed pass.
func (e *Engine) OnRecolor(fn func(Counts)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// RecolorNow runs one pass: every shape is visited once, colored, and
// counted into a fresh histogram. It never panics; a missing overlay or
// registry data degrades to NP / level 0 and a logged warning.
func (e *Engine) RecolorNow() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recolor pass panicked", zap.Any("panic", r))
		}
	}()

	e.mu.Lock()
	ov := e.overlay
	mode := e.mode
	sets := e.mission
	e.mu.Unlock()

	if ov == nil {
		e.log.Warn("recolor skipped: overlay not attached")
		return
	}

	snap := e.reg.Snapshot()
	if len(snap.Participating) == 0 {
		e.log.Debug("recolor with an empty participation set; every shape is drawn as not participating")
	}

	counts := newCounts(mode)
	ov.Each(func(s *overlay.Shape) {
		id := s.ID()
		participating := id != "" && snap.Participating.Has(id)

		level := models.NotParticipating
		if participating {
			if mode == ModeMission {
				level = sets.StatusOf(id)
			} else {
				level = snap.Effective(id)
			}
		}

		b := bucket(participating, level, mode)
		s.SetFill(string(palette(mode)[b]))
		s.SetLabel(Label(b, mode))
		counts.buckets[b]++
		counts.Shapes++
	})

	if sum := counts.Sum(); sum != counts.Shapes {
		e.log.Warn("legend counts disagree with shape count; adjusting not-participating bucket",
			zap.Int("sum", sum),
			zap.Int("shapes", counts.Shapes))
		counts.buckets[models.NotParticipating] = counts.Shapes - counts.Participants()
	}

	e.mu.Lock()
	// A filter change while the pass ran schedules its own pass; this
	// result still reflects what was drawn.
	e.last = counts
	e.passes++
	listeners := make([]func(Counts), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(counts.clone())
	}
}
