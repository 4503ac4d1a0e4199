package coloring_test

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/system/scheduler"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
)

var (
	id1001 = models.MustMunicipalityID("1001")
	id1002 = models.MustMunicipalityID("1002")
	id1003 = models.MustMunicipalityID("1003")
)

// geo builds a collection with one point feature per id.
func geo(ids ...string) []byte {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf(`{"type":"Feature","properties":{"id":%q,"name":"M%s"},"geometry":{"type":"Point","coordinates":[0,0]}}`, id, id))
	}
	return []byte(`{"type":"FeatureCollection","features":[` + strings.Join(parts, ",") + `]}`)
}

func newOverlay(t *testing.T, ids ...string) *overlay.Overlay {
	t.Helper()
	o, err := overlay.Parse(geo(ids...), zap.NewNop())
	if err != nil {
		t.Fatalf("overlay.Parse: %v", err)
	}
	return o
}

// manualTimers collects scheduled callbacks; nothing fires until run.
type manualTimers struct {
	mu  sync.Mutex
	fns []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (m *manualTimers) after(_ time.Duration, f func()) scheduler.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, f)
	return noopTimer{}
}

func (m *manualTimers) run() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func newEngine(t *testing.T, ids ...string) (*coloring.Engine, *overlay.Overlay, *manualTimers) {
	t.Helper()
	timers := &manualTimers{}
	e := coloring.New(registry.New(), zap.NewNop(), coloring.WithAfterFunc(timers.after))
	o := newOverlay(t, ids...)
	e.AttachOverlay(o)
	timers.run()
	return e, o, timers
}

func fill(t *testing.T, o *overlay.Overlay, id models.MunicipalityID) coloring.Color {
	t.Helper()
	st, ok := o.StyleOf(id)
	if !ok {
		t.Fatalf("no shape %s", id)
	}
	return coloring.Color(st.FillColor)
}

func TestScenario_NonParticipantIgnoresLevel(t *testing.T) {
	e, o, timers := newEngine(t, "1001", "1002")

	e.SetLevelData(
		map[models.MunicipalityID]models.Level{id1001: models.Level2, id1002: models.Level0},
		models.NewIDSet(id1001),
	)
	e.ScheduleRecolor()
	timers.run()

	if got := fill(t, o, id1001); got != coloring.Resolve(true, models.Level2, coloring.ModeLevel) {
		t.Errorf("1001 color = %s, want level-2 color", got)
	}
	if got := fill(t, o, id1002); got != "#FFFFFF" {
		t.Errorf("1002 color = %s, want NP color", got)
	}

	c := e.LastCounts()
	if c.Get(models.Level2) != 1 || c.NotParticipating() != 1 || c.Get(models.Level0) != 0 {
		t.Errorf("counts = %v", c.Map())
	}
}

func TestScenario_MissionFilter(t *testing.T) {
	e, o, timers := newEngine(t, "1001", "1002", "1003")
	e.SetLevelData(nil, models.NewIDSet(id1001, id1002, id1003))

	e.SetMissionFilterColors(models.MissionStatusSets{
		Completed: models.NewIDSet(id1001),
		Started:   models.NewIDSet(id1002),
		Pending:   models.NewIDSet(),
	})
	timers.run()

	want := map[models.MunicipalityID]coloring.Color{
		id1001: "#12447F",
		id1002: "#72C576",
		id1003: "#9F9F9F",
	}
	for id, c := range want {
		if got := fill(t, o, id); got != c {
			t.Errorf("%s = %s, want %s", id, got, c)
		}
	}
	c := e.LastCounts()
	if c.Mode != coloring.ModeMission {
		t.Errorf("mode = %v", c.Mode)
	}
	if c.Get(models.MissionCompleted) != 1 || c.Get(models.MissionStarted) != 1 || c.Get(models.MissionPending) != 1 {
		t.Errorf("counts = %v", c.Map())
	}
}

func TestMissionFilter_NonParticipantWins(t *testing.T) {
	e, o, timers := newEngine(t, "1001")
	e.SetLevelData(nil, models.NewIDSet())
	e.SetMissionFilterColors(models.MissionStatusSets{Completed: models.NewIDSet(id1001)})
	timers.run()

	if got := fill(t, o, id1001); got != "#FFFFFF" {
		t.Errorf("color = %s, want NP", got)
	}
}

func TestScheduleRecolor_BurstRunsOnce(t *testing.T) {
	e, _, timers := newEngine(t, "1001", "1002")
	before := e.Passes()

	for i := 0; i < 25; i++ {
		e.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level(i % 4)}, models.NewIDSet(id1001))
		e.ScheduleRecolor()
	}
	timers.run()

	if got := e.Passes() - before; got != 1 {
		t.Errorf("passes = %d, want 1", got)
	}
	// The pass saw the final state: 24 % 4 == 0.
	if e.LastCounts().Get(models.Level0) != 1 {
		t.Errorf("counts = %v", e.LastCounts().Map())
	}
}

func TestStop_DropsScheduledPass(t *testing.T) {
	e, _, timers := newEngine(t, "1001")
	before := e.Passes()

	e.ScheduleRecolor()
	e.Stop()
	timers.run()

	if e.Pending() {
		t.Error("nothing should be pending after Stop")
	}
	if got := e.Passes() - before; got != 0 {
		t.Errorf("passes = %d, want 0", got)
	}
}

func TestModeRoundTripRestoresColors(t *testing.T) {
	e, o, timers := newEngine(t, "1001", "1002", "1003")
	e.SetLevelData(
		map[models.MunicipalityID]models.Level{id1001: models.Level3, id1002: models.Level1},
		models.NewIDSet(id1001, id1002),
	)
	e.ScheduleRecolor()
	timers.run()

	before := map[models.MunicipalityID]coloring.Color{}
	for _, id := range []models.MunicipalityID{id1001, id1002, id1003} {
		before[id] = fill(t, o, id)
	}

	e.SetMissionFilterColors(models.MissionStatusSets{Completed: models.NewIDSet(id1002)})
	timers.run()
	e.ClearMissionFilter()
	timers.run()

	for id, c := range before {
		if got := fill(t, o, id); got != c {
			t.Errorf("%s = %s after round trip, want %s", id, got, c)
		}
	}
}

func TestUnknownLevelUsesLevelZero(t *testing.T) {
	e, o, timers := newEngine(t, "1001")
	e.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level(9)}, models.NewIDSet(id1001))
	e.ScheduleRecolor()
	timers.run()

	if got := fill(t, o, id1001); got != "#707070" {
		t.Errorf("color = %s, want level-0 color", got)
	}
	if e.LastCounts().Get(models.Level0) != 1 {
		t.Errorf("counts = %v", e.LastCounts().Map())
	}
}

func TestRecolorWithoutOverlay(t *testing.T) {
	timers := &manualTimers{}
	e := coloring.New(registry.New(), zap.NewNop(), coloring.WithAfterFunc(timers.after))

	e.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level1}, models.NewIDSet(id1001))
	e.RecolorNow()
	if e.Passes() != 0 {
		t.Error("no pass should complete without an overlay")
	}

	o := newOverlay(t, "1001")
	e.AttachOverlay(o)
	if !e.Flush() {
		t.Fatal("attaching should schedule a pass")
	}
	if got := fill(t, o, id1001); got != "#50B755" {
		t.Errorf("retained data not applied: %s", got)
	}
}

func TestShapesWithoutDataAreNotParticipating(t *testing.T) {
	e, o, timers := newEngine(t, "1001", "9999999")
	e.SetLevelData(map[models.MunicipalityID]models.Level{id1001: models.Level1}, models.NewIDSet(id1001))
	e.ScheduleRecolor()
	timers.run()

	if got := fill(t, o, models.MustMunicipalityID("9999999")); got != "#FFFFFF" {
		t.Errorf("color = %s, want NP", got)
	}
}

func TestCountsSumEqualsShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		ids := make([]string, n)
		levels := map[models.MunicipalityID]models.Level{}
		part := models.IDSet{}
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", 2300000+i)
			id := models.MustMunicipalityID(ids[i])
			if rng.Intn(3) > 0 {
				levels[id] = models.Level(rng.Intn(7) - 1)
			}
			if rng.Intn(2) == 0 {
				part[id] = struct{}{}
			}
		}

		e, o, timers := newEngine(t, ids...)
		e.SetLevelData(levels, part)
		mission := rng.Intn(2) == 0
		if mission {
			e.SetMissionFilterColors(models.MissionStatusSets{Completed: part})
		}
		e.ScheduleRecolor()
		timers.run()

		c := e.LastCounts()
		if c.Sum() != o.Len() || c.Shapes != o.Len() {
			t.Fatalf("round %d: sum=%d shapes=%d overlay=%d", round, c.Sum(), c.Shapes, o.Len())
		}
		if want := countParticipating(ids, part, levels, mission); c.Participants() != want {
			t.Fatalf("round %d: participants=%d, want %d", round, c.Participants(), want)
		}
	}
}

// countParticipating counts ids drawn in a participant bucket. In level
// mode a participant whose level is NP still lands in the NP bucket; mission
// status never does.
func countParticipating(ids []string, part models.IDSet, levels map[models.MunicipalityID]models.Level, mission bool) int {
	n := 0
	for _, s := range ids {
		id := models.MustMunicipalityID(s)
		if !part.Has(id) {
			continue
		}
		if !mission && levels[id] == models.NotParticipating {
			continue
		}
		n++
	}
	return n
}

func TestOnRecolorListener(t *testing.T) {
	e, _, timers := newEngine(t, "1001")
	var got []coloring.Counts
	e.OnRecolor(func(c coloring.Counts) { got = append(got, c) })

	e.ScheduleRecolor()
	e.ScheduleRecolor()
	timers.run()

	if len(got) != 1 || got[0].Shapes != 1 {
		t.Errorf("listener calls = %d", len(got))
	}
}
