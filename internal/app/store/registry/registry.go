// internal/app/store/registry/registry.go
//
// Package registry is the participation/level cache: which municipalities
// take part in the program and at which level, plus the municipality records
// from the last successful list load.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Registry is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	levels        map[models.MunicipalityID]models.Level
	participating models.IDSet
	records       map[models.MunicipalityID]models.Municipality
	levelsLoaded  bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		levels:        map[models.MunicipalityID]models.Level{},
		participating: models.IDSet{},
		records:       map[models.MunicipalityID]models.Municipality{},
	}
}

// Snapshot is an immutable copy of the level data taken for one recolor pass.
type Snapshot struct {
	Levels        map[models.MunicipalityID]models.Level
	Participating models.IDSet
}

// Effective resolves the level a shape should show: NotParticipating when
// the id is outside the participation set, whatever its assignment says;
// otherwise the assignment, defaulting to level 0.
func (s Snapshot) Effective(id models.MunicipalityID) models.Level {
	if !s.Participating.Has(id) {
		return models.NotParticipating
	}
	if l, ok := s.Levels[id]; ok {
		return l
	}
	return models.Level0
}

// SetLevelData replaces both the level assignments and the participation
// set. The inputs are copied as given; no consistency repair is applied.
func (r *Registry) SetLevelData(levels map[models.MunicipalityID]models.Level, participating models.IDSet) {
	lv := make(map[models.MunicipalityID]models.Level, len(levels))
	for id, l := range levels {
		lv[id] = l
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = lv
	r.participating = participating.Clone()
	r.levelsLoaded = true
}

// SetMunicipalities merges records by id. Known records are updated in
// place and never removed.
func (r *Registry) SetMunicipalities(ms []models.Municipality) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range ms {
		if m.ID == "" {
			continue
		}
		if l, ok := r.levels[m.ID]; ok && r.participating.Has(m.ID) {
			m.Level = l
		}
		r.records[m.ID] = m
	}
}

// Update applies fn to the record for id in place. It reports false when
// the id is unknown.
func (r *Registry) Update(id models.MunicipalityID, fn func(*models.Municipality)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.records[id]
	if !ok {
		return false
	}
	fn(&m)
	m.ID = id
	r.records[id] = m
	return true
}

// Snapshot copies the current level data.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lv := make(map[models.MunicipalityID]models.Level, len(r.levels))
	for id, l := range r.levels {
		lv[id] = l
	}
	return Snapshot{Levels: lv, Participating: r.participating.Clone()}
}

// Effective resolves the displayed level of id against the current data.
func (r *Registry) Effective(id models.MunicipalityID) models.Level {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{Levels: r.levels, Participating: r.participating}.Effective(id)
}

// Participating reports whether id is in the participation set.
func (r *Registry) Participating(id models.MunicipalityID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.participating.Has(id)
}

// ParticipatingCount is the size of the participation set.
func (r *Registry) ParticipatingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participating)
}

// Municipality returns the record for id with its effective level applied.
func (r *Registry) Municipality(id models.MunicipalityID) (models.Municipality, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.records[id]
	if !ok {
		return models.Municipality{}, false
	}
	m.Level = Snapshot{Levels: r.levels, Participating: r.participating}.Effective(id)
	return m, true
}

// Municipalities returns all records sorted by name (pt-BR collation, so
// "Acaraú" sorts next to "Acarape").
func (r *Registry) Municipalities() []models.Municipality {
	r.mu.RLock()
	snap := Snapshot{Levels: r.levels, Participating: r.participating}
	out := make([]models.Municipality, 0, len(r.records))
	for id, m := range r.records {
		m.Level = snap.Effective(id)
		out = append(out, m)
	}
	r.mu.RUnlock()

	// A Collator keeps scratch buffers and is not safe for concurrent use.
	coll := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.Slice(out, func(i, j int) bool {
		if c := coll.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search returns records whose folded name contains the folded query, so
// "acarau" finds "Acaraú".
func (r *Registry) Search(q string) []models.Municipality {
	q = text.Fold(strings.TrimSpace(q))
	all := r.Municipalities()
	if q == "" {
		return all
	}
	out := all[:0]
	for _, m := range all {
		if strings.Contains(text.Fold(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// Loaded reports whether level data and municipality records have both been
// set at least once.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.levelsLoaded && len(r.records) > 0
}

// Len is the number of municipality records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
