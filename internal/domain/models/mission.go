// internal/domain/models/mission.go
package models

import (
	"math"
	"strings"
)

// Mission category codes. The API uses both "CTG1" and "CTG-1".
const (
	CategoryOne   = "CTG1"
	CategoryTwo   = "CTG2"
	CategoryThree = "CTG3"
)

// Categories is the fixed badge/category order shown in the detail panel.
var Categories = []string{CategoryOne, CategoryTwo, CategoryThree}

// NormalizeCategory folds "CTG-1" into "CTG1". Empty input yields CategoryOne.
func NormalizeCategory(c string) string {
	c = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c), "-", ""))
	if c == "" {
		return CategoryOne
	}
	return c
}

// EvidenceRequirement is one piece of evidence a mission asks for.
type EvidenceRequirement struct {
	Title       string
	Description string
}

// Mission is a program mission a municipality can complete for points.
type Mission struct {
	ID                  string
	Category            string
	CategoryDescription string
	Description         string
	Points              int
	Evidence            []EvidenceRequirement
	FormURL             string
}

// ValidationStatus is a municipality's progress on one mission.
type ValidationStatus string

const (
	StatusPending   ValidationStatus = "pending"
	StatusStarted   ValidationStatus = "started"
	StatusValidated ValidationStatus = "validated"
)

// ParseValidationStatus maps the API's mixed vocabulary onto the three states.
func ParseValidationStatus(raw string) ValidationStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "VALIDADO", "VALID", "VALIDATED", "CONCLUÍDO", "CONCLUIDO":
		return StatusValidated
	case "STARTED", "EM AÇÃO", "EM ACAO", "INICIADO", "EM ANDAMENTO":
		return StatusStarted
	default:
		return StatusPending
	}
}

// Label is the Portuguese label used by the detail panel.
func (s ValidationStatus) Label() string {
	switch s {
	case StatusValidated:
		return "Concluída"
	case StatusStarted:
		return "Em andamento"
	default:
		return "Pendente"
	}
}

// SubmittedEvidence is evidence a municipality sent for a mission.
type SubmittedEvidence struct {
	Title       string
	Description string
	URL         string
}

// MissionPerformance is one municipality's standing on one mission.
type MissionPerformance struct {
	Mission  Mission
	Status   ValidationStatus
	Evidence []SubmittedEvidence
}

// Completed reports whether the mission was validated.
func (p MissionPerformance) Completed() bool { return p.Status == StatusValidated }

// EvidenceFor returns the submitted evidence whose title matches the
// requirement, if any.
func (p MissionPerformance) EvidenceFor(title string) (SubmittedEvidence, bool) {
	for _, e := range p.Evidence {
		if e.Title == title {
			return e, true
		}
	}
	return SubmittedEvidence{}, false
}

// BadgeCount is how many badges of one category a municipality holds.
type BadgeCount struct {
	Category string
	Name     string
	Count    int
}

// MunicipalityDetail is the full profile behind the detail panel.
type MunicipalityDetail struct {
	Municipality Municipality
	Points       int
	Badges       []BadgeCount
	Missions     []MissionPerformance
}

// TotalBadges sums the badge counts across categories.
func (d MunicipalityDetail) TotalBadges() int {
	n := 0
	for _, b := range d.Badges {
		n += b.Count
	}
	return n
}

// BadgeFor returns the badge entry for a category (normalized), or a
// zero-count entry when the municipality holds none.
func (d MunicipalityDetail) BadgeFor(category string) BadgeCount {
	want := NormalizeCategory(category)
	for _, b := range d.Badges {
		if NormalizeCategory(b.Category) == want {
			return b
		}
	}
	return BadgeCount{Category: want}
}

// MunicipalityPanorama is the per-municipality summary from the map panorama.
type MunicipalityPanorama struct {
	Municipality Municipality
	Level        Level
	TotalPoints  int
	CountValid   int
	CountStarted int
	CountPending int
}

// MissionSummary is one card of the mission panorama.
type MissionSummary struct {
	Mission             Mission
	CountValid          int
	TotalMunicipalities int
}

// PercentComplete is the rounded share of municipalities that completed
// the mission (0 when the total is unknown).
func (s MissionSummary) PercentComplete() int {
	if s.TotalMunicipalities <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CountValid) / float64(s.TotalMunicipalities) * 100))
}

// IDSet is a set of municipality ids.
type IDSet map[MunicipalityID]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...MunicipalityID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id MunicipalityID) bool {
	_, ok := s[id]
	return ok
}

// Clone copies the set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MissionStatusSets partitions municipalities by status on one mission.
type MissionStatusSets struct {
	Completed IDSet
	Started   IDSet
	Pending   IDSet
}

// StatusOf applies completed > started > pending precedence. Municipalities
// in none of the sets default to pending.
func (m MissionStatusSets) StatusOf(id MunicipalityID) Level {
	switch {
	case m.Completed.Has(id):
		return MissionCompleted
	case m.Started.Has(id):
		return MissionStarted
	default:
		return MissionPending
	}
}
