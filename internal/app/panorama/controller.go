// internal/app/panorama/controller.go
//
// Package panorama holds the dashboard's application state: the registry,
// the coloring engine and overlay, and the UI selection (municipality and
// mission). Every async load path goes through a latest-request-wins
// tracker so an older response never overwrites fresher state.
package panorama

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/app/legend"
	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/store/staticdata"
	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/app/system/latest"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSuperseded is returned when a newer request replaced this one
	// before its response arrived; the result was discarded.
	ErrSuperseded = errors.New("panorama: superseded by a newer request")

	// ErrUnknownMunicipality is returned for ids neither the map nor the
	// registry know.
	ErrUnknownMunicipality = errors.New("panorama: unknown municipality")
)

// API is the subset of the upstream client the controller uses.
type API interface {
	ListMunicipalities(ctx context.Context) ([]models.Municipality, error)
	MunicipalityDetail(ctx context.Context, id models.MunicipalityID) (models.MunicipalityDetail, error)
	MapPanorama(ctx context.Context) (upstream.MapLevels, error)
	MunicipalityPanorama(ctx context.Context, id models.MunicipalityID) (models.MunicipalityPanorama, error)
	MissionPanorama(ctx context.Context) ([]models.MissionSummary, error)
	MissionStatus(ctx context.Context, missionID string) (models.MissionStatusSets, error)
	Mission(ctx context.Context, missionID string) (models.Mission, error)
	Performance(ctx context.Context, id models.MunicipalityID, missionID string) (models.MissionPerformance, error)
	Events(ctx context.Context, q models.EventQuery) (models.EventPage, error)
}

// Deps are the collaborators a Controller needs.
type Deps struct {
	API      API
	Static   *staticdata.Source
	Registry *registry.Registry
	Engine   *coloring.Engine
	Overlay  *overlay.Overlay
	Logger   *zap.Logger
}

// Controller is the single application-state owner.
type Controller struct {
	log     *zap.Logger
	api     API
	static  *staticdata.Source
	reg     *registry.Registry
	engine  *coloring.Engine
	overlay *overlay.Overlay

	listLoads    latest.Tracker[struct{}]
	mapLoads     latest.Tracker[struct{}]
	missionLoads latest.Tracker[string]
	detailLoads  latest.Tracker[models.MunicipalityID]

	version atomic.Uint64 // completed recolor passes

	// filterMu orders a mission apply against ResetFilters, so a reset that
	// lands after the ticket check cannot be overwritten.
	filterMu sync.Mutex

	mu                   sync.RWMutex
	mapLoaded            bool
	selectedMunicipality models.MunicipalityID
	selectedMission      string
	missions             []models.MissionSummary
	lastRefresh          time.Time
	lastErr              error
}

// New wires a Controller and attaches the overlay to the engine.
func New(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		log:     logger,
		api:     d.API,
		static:  d.Static,
		reg:     d.Registry,
		engine:  d.Engine,
		overlay: d.Overlay,
	}
	c.engine.OnRecolor(func(counts coloring.Counts) {
		c.version.Add(1)
		c.log.Debug("map recolored",
			zap.String("mode", counts.Mode.String()),
			zap.Int("shapes", counts.Shapes),
			zap.Int("participants", counts.Participants()))
	})
	if d.Overlay != nil {
		c.engine.AttachOverlay(d.Overlay)
	}
	return c
}

// LoadMunicipalities refreshes the municipality records. On failure the
// registry keeps its previous contents and the error is returned.
func (c *Controller) LoadMunicipalities(ctx context.Context) error {
	ticket := c.listLoads.Begin(struct{}{})

	ms, err := c.api.ListMunicipalities(ctx)
	if err != nil {
		c.log.Warn("load municipalities failed; keeping previous data", zap.Error(err))
		return err
	}
	if !ticket.Current() {
		return ErrSuperseded
	}
	c.reg.SetMunicipalities(ms)

	c.mu.Lock()
	seeded := false
	if !c.mapLoaded {
		// Until the map panorama arrives, participation comes from status.
		part := models.IDSet{}
		for _, m := range ms {
			if m.Participating {
				part[m.ID] = struct{}{}
			}
		}
		c.engine.SetLevelData(nil, part)
		seeded = true
	}
	c.mu.Unlock()
	if seeded {
		c.engine.ScheduleRecolor()
	}
	c.log.Info("municipalities loaded", zap.Int("count", len(ms)))
	return nil
}

// LoadMapPanorama rebuilds the level assignments and participation set
// from the map panorama and schedules a recolor.
func (c *Controller) LoadMapPanorama(ctx context.Context) error {
	ticket := c.mapLoads.Begin(struct{}{})

	ml, err := c.api.MapPanorama(ctx)
	if err != nil {
		c.log.Warn("load map panorama failed; keeping previous levels", zap.Error(err))
		return err
	}
	if !ticket.Current() {
		return ErrSuperseded
	}

	levels, part := levelData(ml)

	c.mu.Lock()
	c.mapLoaded = true
	c.engine.SetLevelData(levels, part)
	c.mu.Unlock()
	c.engine.ScheduleRecolor()

	c.log.Info("map panorama loaded",
		zap.Int("municipalities", len(levels)),
		zap.Int("participating", len(part)))
	return nil
}

// levelData derives the assignments and the participation set. Every id
// with a level other than NP participates; the distribution block fills
// ids the per-municipality list left out.
func levelData(ml upstream.MapLevels) (map[models.MunicipalityID]models.Level, models.IDSet) {
	levels := make(map[models.MunicipalityID]models.Level, len(ml.Levels))
	for id, l := range ml.Levels {
		levels[id] = l
	}
	for l, ids := range ml.Distribution {
		for _, id := range ids {
			if _, ok := levels[id]; !ok {
				levels[id] = l
			}
		}
	}
	part := make(models.IDSet, len(levels))
	for id, l := range levels {
		if l.IsParticipating() {
			part[id] = struct{}{}
		}
	}
	return levels, part
}

// Refresh reloads the municipality list and the map panorama, then the
// selected mission's status if a mission filter is active.
func (c *Controller) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return ignoreSuperseded(c.LoadMunicipalities(ctx)) })
	g.Go(func() error { return ignoreSuperseded(c.LoadMapPanorama(ctx)) })
	err := g.Wait()

	if mission := c.SelectedMission(); mission != "" && err == nil {
		err = ignoreSuperseded(c.SelectMission(ctx, mission))
	}

	c.mu.Lock()
	c.lastRefresh = time.Now()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// SelectMission colors the map by status on missionID. The statuses come
// from the API, or from the fallback files when it fails. On error the
// previous coloring and selection stay.
func (c *Controller) SelectMission(ctx context.Context, missionID string) error {
	ticket := c.missionLoads.Begin(missionID)

	sets, err := staticdata.Fallback(ctx, c.log, "mission status",
		func() (models.MissionStatusSets, error) { return c.api.MissionStatus(ctx, missionID) },
		func() (models.MissionStatusSets, error) { return c.static.MissionStatus(missionID) },
	)
	if err != nil {
		c.log.Warn("load mission status failed", zap.String("mission", missionID), zap.Error(err))
		return err
	}
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	if !ticket.Current() {
		return ErrSuperseded
	}

	c.engine.SetMissionFilterColors(sets)
	c.mu.Lock()
	c.selectedMission = missionID
	c.mu.Unlock()
	return nil
}

// ResetFilters clears the mission filter and both selections.
func (c *Controller) ResetFilters() {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()

	c.missionLoads.Reset()
	c.detailLoads.Reset()

	c.mu.Lock()
	c.selectedMission = ""
	c.selectedMunicipality = ""
	c.mu.Unlock()

	if c.overlay != nil {
		c.overlay.Highlight("")
	}
	c.engine.ClearMissionFilter()
}

// SelectMunicipality makes id the selection, highlights its shape and
// returns the ticket its detail load must present.
func (c *Controller) SelectMunicipality(id models.MunicipalityID) (latest.Ticket[models.MunicipalityID], error) {
	if !c.known(id) {
		return latest.Ticket[models.MunicipalityID]{}, ErrUnknownMunicipality
	}
	c.mu.Lock()
	c.selectedMunicipality = id
	c.mu.Unlock()
	if c.overlay != nil {
		c.overlay.Highlight(id)
	}
	return c.detailLoads.Begin(id), nil
}

func (c *Controller) known(id models.MunicipalityID) bool {
	if id == "" {
		return false
	}
	if c.overlay != nil && c.overlay.Has(id) {
		return true
	}
	_, ok := c.reg.Municipality(id)
	return ok
}

// Selection is the current UI selection.
type Selection struct {
	Municipality     models.MunicipalityID
	MunicipalityName string
	MissionID        string
	MissionTitle     string
}

// Selection returns the current selection with display names filled in.
func (c *Controller) Selection() Selection {
	c.mu.RLock()
	s := Selection{Municipality: c.selectedMunicipality, MissionID: c.selectedMission}
	missions := c.missions
	c.mu.RUnlock()

	if s.Municipality != "" {
		s.MunicipalityName = c.municipalityName(s.Municipality)
	}
	for _, m := range missions {
		if m.Mission.ID == s.MissionID {
			s.MissionTitle = m.Mission.Description
			break
		}
	}
	return s
}

// SelectedMission is the active mission filter, or "".
func (c *Controller) SelectedMission() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedMission
}

func (c *Controller) municipalityName(id models.MunicipalityID) string {
	if m, ok := c.reg.Municipality(id); ok && m.Name != "" {
		return m.Name
	}
	if c.overlay != nil {
		if name, ok := c.overlay.Name(id); ok && name != "" {
			return name
		}
	}
	return "Município"
}

// MissionPanorama lists mission completion stats, from the fallback files
// when the API fails. The result is kept for mission titles.
func (c *Controller) MissionPanorama(ctx context.Context) ([]models.MissionSummary, error) {
	sums, err := staticdata.Fallback(ctx, c.log, "mission panorama",
		func() ([]models.MissionSummary, error) { return c.api.MissionPanorama(ctx) },
		c.static.MissionPanorama,
	)
	if err != nil {
		c.log.Warn("load mission panorama failed", zap.Error(err))
		return nil, err
	}
	c.mu.Lock()
	c.missions = sums
	c.mu.Unlock()
	return sums, nil
}

// Events returns one page of the events feed, from the fallback file when
// the API fails.
func (c *Controller) Events(ctx context.Context, q models.EventQuery) (models.EventPage, error) {
	page, err := staticdata.Fallback(ctx, c.log, "events",
		func() (models.EventPage, error) { return c.api.Events(ctx, q) },
		func() (models.EventPage, error) { return c.static.Events(q) },
	)
	if err != nil {
		c.log.Warn("load events failed", zap.Error(err))
		return models.EventPage{}, err
	}
	return page, nil
}

// Counts drains any pending recolor and returns the drawn histogram.
func (c *Controller) Counts() coloring.Counts {
	c.engine.Flush()
	return c.engine.LastCounts()
}

// Legend drains any pending recolor and builds the legend for what was
// drawn.
func (c *Controller) Legend() legend.View {
	counts := c.Counts()
	return legend.Build(counts, counts.Mode)
}

// ShapesJSON drains any pending recolor and returns the styled GeoJSON.
func (c *Controller) ShapesJSON() ([]byte, error) {
	if c.overlay == nil {
		return nil, errors.New("panorama: overlay not loaded")
	}
	c.engine.Flush()
	return json.Marshal(c.overlay)
}

// Version changes every time the map is recolored.
func (c *Controller) Version() uint64 { return c.version.Load() }

// Participants lists participating municipalities sorted by name.
func (c *Controller) Participants() []models.Municipality {
	all := c.reg.Municipalities()
	out := make([]models.Municipality, 0, len(all))
	for _, m := range all {
		if c.reg.Participating(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// SearchParticipants is Participants narrowed to names matching q,
// ignoring case and accents. An empty q returns every participant.
func (c *Controller) SearchParticipants(q string) []models.Municipality {
	if q == "" {
		return c.Participants()
	}
	var out []models.Municipality
	for _, m := range c.reg.Search(q) {
		if c.reg.Participating(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// Status summarizes the controller for the health endpoint.
type Status struct {
	RegistryLoaded bool
	Municipalities int
	Participating  int
	Shapes         int
	Mode           string
	LastRefresh    time.Time
	LastError      string
}

// Status reports load state without touching the network.
func (c *Controller) Status() Status {
	c.mu.RLock()
	st := Status{LastRefresh: c.lastRefresh}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	c.mu.RUnlock()

	st.RegistryLoaded = c.reg.Loaded()
	st.Municipalities = c.reg.Len()
	st.Participating = c.reg.ParticipatingCount()
	st.Mode = c.engine.Mode().String()
	if c.overlay != nil {
		st.Shapes = c.overlay.Len()
	}
	return st
}
