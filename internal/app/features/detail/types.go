// internal/app/features/detail/types.go
package detail

import (
	"html/template"

	"github.com/dalemusser/pactomapa/internal/app/features/shared/views"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pactomapa/internal/domain/models"
)

// headerVM is the avatar, name and score block at the top of every panel.
type headerVM struct {
	ID        string
	Name      string
	AvatarURL string
	Level     int
	Progress  int // points inside the current level, out of 100
	Points    int
	Badges    int
}

type notJoinedVM struct {
	Header  headerVM
	JoinURL string
}

type evidenceVM struct {
	Title       string
	Description template.HTML
	URL         string
}

type missionRowVM struct {
	ID          string
	Title       template.HTML
	Category    string
	Background  template.CSS
	Points      int
	StatusLabel string
	StatusClass string
	Evidence    []evidenceVM
	FormURL     string
}

type badgeVM struct {
	Category   string
	Name       string
	Count      int
	Background template.CSS
}

type profileVM struct {
	Header   headerVM
	Missions []missionRowVM
	Badges   []badgeVM
}

type requirementVM struct {
	Title       string
	Description template.HTML
	Submitted   bool
	URL         string
}

type missionVM struct {
	Header       headerVM
	MissionID    string
	Title        template.HTML
	Category     string
	Background   template.CSS
	Points       int
	StatusLabel  string
	StatusClass  string
	Completed    bool
	Requirements []requirementVM
	FormURL      string
	CountValid   int
	CountStarted int
	CountPending int
}

func statusClass(s models.ValidationStatus) string {
	switch s {
	case models.StatusValidated:
		return "status--concluida"
	case models.StatusStarted:
		return "status--andamento"
	default:
		return "status--pendente"
	}
}

func newHeader(m models.Municipality, points, badges int) headerVM {
	return headerVM{
		ID:        m.ID.String(),
		Name:      m.Name,
		AvatarURL: views.Avatar(m.AvatarURL),
		Level:     models.LevelFromPoints(points),
		Progress:  models.LevelProgress(points),
		Points:    points,
		Badges:    badges,
	}
}

func buildNotJoined(d panorama.Detail, joinURL string) notJoinedVM {
	return notJoinedVM{
		Header:  newHeader(d.Municipality, 0, 0),
		JoinURL: htmlsanitize.SafeURL(joinURL),
	}
}

func buildProfile(d panorama.Detail) profileVM {
	p := d.Profile
	vm := profileVM{Header: newHeader(d.Municipality, p.Points, p.TotalBadges())}

	for _, mp := range p.Missions {
		row := missionRowVM{
			ID:          mp.Mission.ID,
			Title:       htmlsanitize.SanitizeToHTML(mp.Mission.Description),
			Category:    mp.Mission.CategoryDescription,
			Background:  views.CategoryBackground(mp.Mission.Category),
			Points:      mp.Mission.Points,
			StatusLabel: mp.Status.Label(),
			StatusClass: statusClass(mp.Status),
			FormURL:     htmlsanitize.SafeURL(mp.Mission.FormURL),
		}
		for _, e := range mp.Evidence {
			row.Evidence = append(row.Evidence, evidenceVM{
				Title:       e.Title,
				Description: htmlsanitize.SanitizeToHTML(e.Description),
				URL:         htmlsanitize.SafeURL(e.URL),
			})
		}
		vm.Missions = append(vm.Missions, row)
	}

	// Every category gets a slot, held or not.
	for _, c := range models.Categories {
		b := p.BadgeFor(c)
		vm.Badges = append(vm.Badges, badgeVM{
			Category:   c,
			Name:       b.Name,
			Count:      b.Count,
			Background: views.CategoryBackground(c),
		})
	}
	return vm
}

func buildMission(d panorama.Detail) missionVM {
	perf := d.Performance
	m := d.Mission
	vm := missionVM{
		Header:       newHeader(d.Municipality, d.Panorama.TotalPoints, d.Municipality.Badges),
		MissionID:    m.ID,
		Title:        htmlsanitize.SanitizeToHTML(m.Description),
		Category:     m.CategoryDescription,
		Background:   views.CategoryBackground(m.Category),
		Points:       m.Points,
		StatusLabel:  perf.Status.Label(),
		StatusClass:  statusClass(perf.Status),
		Completed:    perf.Completed(),
		FormURL:      htmlsanitize.SafeURL(m.FormURL),
		CountValid:   d.Panorama.CountValid,
		CountStarted: d.Panorama.CountStarted,
		CountPending: d.Panorama.CountPending,
	}
	for _, req := range m.Evidence {
		sub, ok := perf.EvidenceFor(req.Title)
		vm.Requirements = append(vm.Requirements, requirementVM{
			Title:       req.Title,
			Description: htmlsanitize.SanitizeToHTML(req.Description),
			Submitted:   ok,
			URL:         htmlsanitize.SafeURL(sub.URL),
		})
	}
	return vm
}
