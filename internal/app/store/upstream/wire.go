// internal/app/store/upstream/wire.go
package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/pactomapa/internal/domain/models"
)

// envelope is the {status, data, pagination} wrapper most endpoints use.
type envelope struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Pagination *wirePagination `json:"pagination"`
	Message    string          `json:"message"`
}

func (e envelope) ok() bool {
	return e.Status == "success" && len(bytes.TrimSpace(e.Data)) > 0 && !bytes.Equal(bytes.TrimSpace(e.Data), []byte("null"))
}

type wirePagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func (p *wirePagination) toModel(q models.EventQuery, n int) models.Pagination {
	if p == nil {
		return models.Pagination{Total: n, Page: q.Page, Limit: q.Limit, Pages: models.PagesFor(n, q.Limit)}
	}
	return models.Pagination{Total: p.Total, Page: p.Page, Limit: p.Limit, Pages: p.Pages}
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(b)
	return nil
}

// flexInt accepts a JSON number or numeric string; anything else is 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// wireMunicipality covers both spellings of the avatar field; the list
// endpoint sends imagemAvatar while the detail payload sends imagem_avatar.
type wireMunicipality struct {
	ID           models.MunicipalityID `json:"codIbge"`
	Name         string                `json:"nome"`
	Status       string                `json:"status"`
	Points       flexInt               `json:"points"`
	Badges       flexInt               `json:"badges"`
	Avatar       string                `json:"imagemAvatar"`
	AvatarLegacy string                `json:"imagem_avatar"`
}

func (w wireMunicipality) toModel() models.Municipality {
	avatar := w.Avatar
	if avatar == "" {
		avatar = w.AvatarLegacy
	}
	return models.Municipality{
		ID:            w.ID,
		Name:          strings.TrimSpace(w.Name),
		Status:        w.Status,
		Participating: w.Status == models.StatusParticipating,
		Level:         models.NotParticipating,
		Points:        int(w.Points),
		Badges:        int(w.Badges),
		AvatarURL:     avatar,
	}
}

type wireEvidenceRequirement struct {
	Title       string `json:"titulo"`
	Description string `json:"descricao"`
}

// wireMission is the mission object. Descriptions arrive as
// descricao_da_missao or, in the detail payload, descrição_da_missao; the
// category as categoria or id_categoria.
type wireMission struct {
	ID                  flexString                `json:"id"`
	Category            string                    `json:"categoria"`
	CategoryID          string                    `json:"id_categoria"`
	CategoryDescription string                    `json:"descricao_da_categoria"`
	Description         string                    `json:"descricao_da_missao"`
	DescriptionAccented string                    `json:"descrição_da_missao"`
	Points              flexInt                   `json:"qnt_pontos"`
	Evidence            []wireEvidenceRequirement `json:"evidencias"`
	FormURL             string                    `json:"link_formulario"`
}

func (w wireMission) toModel() models.Mission {
	cat := w.Category
	if cat == "" {
		cat = w.CategoryID
	}
	desc := w.Description
	if desc == "" {
		desc = w.DescriptionAccented
	}
	m := models.Mission{
		ID:                  string(w.ID),
		Category:            models.NormalizeCategory(cat),
		CategoryDescription: w.CategoryDescription,
		Description:         desc,
		Points:              int(w.Points),
		FormURL:             w.FormURL,
	}
	for _, ev := range w.Evidence {
		if ev.Title == "" {
			continue
		}
		m.Evidence = append(m.Evidence, models.EvidenceRequirement{Title: ev.Title, Description: ev.Description})
	}
	return m
}

type wireSubmittedEvidence struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"evidencia"`
}

// evidenceList decodes either a JSON array or a JSON string holding one;
// the performance endpoint stores evidence as serialized text.
type evidenceList []wireSubmittedEvidence

func (l *evidenceList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		b = []byte(s)
	}
	var items []wireSubmittedEvidence
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

func (l evidenceList) toModel() []models.SubmittedEvidence {
	out := make([]models.SubmittedEvidence, 0, len(l))
	for _, e := range l {
		out = append(out, models.SubmittedEvidence{Title: e.Title, Description: e.Description, URL: e.URL})
	}
	return out
}

// ---- municipality detail (data.json is a serialized document) ----

type wireDetailOuter struct {
	JSON json.RawMessage `json:"json"`
}

type wireDetailDoc struct {
	Data wireDetail `json:"data"`
}

type wireDetail struct {
	Municipality wireMunicipality `json:"municipio"`
	Missions     struct {
		Missions []wireMissionPerformance `json:"missoes"`
	} `json:"missoesMunicipio"`
	Badges struct {
		Points int         `json:"points"`
		Badges []wireBadge `json:"insignias"`
	} `json:"insigniasMunicipio"`
}

type wireMissionPerformance struct {
	Status   string       `json:"status_de_validacao"`
	Mission  wireMission  `json:"missao"`
	Evidence evidenceList `json:"evidencias"`
}

type wireBadge struct {
	Category string `json:"category"`
	Name     string `json:"nome"`
	Count    int    `json:"number"`
}

func (w wireDetail) toModel() models.MunicipalityDetail {
	d := models.MunicipalityDetail{
		Municipality: w.Municipality.toModel(),
		Points:       w.Badges.Points,
	}
	for _, b := range w.Badges.Badges {
		d.Badges = append(d.Badges, models.BadgeCount{
			Category: models.NormalizeCategory(b.Category),
			Name:     b.Name,
			Count:    b.Count,
		})
	}
	for _, mp := range w.Missions.Missions {
		perf := models.MissionPerformance{
			Mission: mp.Mission.toModel(),
			Status:  models.ParseValidationStatus(mp.Status),
		}
		for _, ev := range mp.Evidence {
			// Requirements without both title and description are not shown.
			if ev.Title == "" || ev.Description == "" {
				continue
			}
			perf.Evidence = append(perf.Evidence, models.SubmittedEvidence{Title: ev.Title, Description: ev.Description, URL: ev.URL})
		}
		d.Missions = append(d.Missions, perf)
	}
	return d
}

// ---- map panorama ----

type wireMapPanorama struct {
	Municipalities []struct {
		ID          models.MunicipalityID `json:"codIbge"`
		Performance *struct {
			Level models.Level `json:"level"`
		} `json:"desempenho"`
	} `json:"municipios"`
	LevelDistribution []struct {
		Level          models.Level            `json:"level"`
		Municipalities []models.MunicipalityID `json:"municipios"`
	} `json:"levelDistribution"`
}

type wireMunicipalityPanorama struct {
	MapPanorama struct {
		Municipality wireMunicipality `json:"municipio"`
		CountValid   int              `json:"countValid"`
		CountStarted int              `json:"countStarted"`
		CountPending int              `json:"countPending"`
	} `json:"mapPanorama"`
	Level       models.Level `json:"level"`
	TotalPoints int          `json:"totalPoints"`
}

// ---- mission panorama ----

type wireMissionSummary struct {
	Mission             wireMission `json:"missao"`
	CountValid          int         `json:"countValid"`
	TotalMunicipalities int         `json:"totalMunicipios"`
}

type wireIDRef struct {
	ID models.MunicipalityID `json:"codIbge"`
}

type wireMissionStatus struct {
	Completed []wireIDRef `json:"completedMunicipios"`
	Started   []wireIDRef `json:"startedMunicipios"`
	Pending   []wireIDRef `json:"pendingMunicipios"`
}

func idSet(refs []wireIDRef) models.IDSet {
	s := make(models.IDSet, len(refs))
	for _, r := range refs {
		if r.ID != "" {
			s[r.ID] = struct{}{}
		}
	}
	return s
}

func (w wireMissionStatus) toModel() models.MissionStatusSets {
	return models.MissionStatusSets{
		Completed: idSet(w.Completed),
		Started:   idSet(w.Started),
		Pending:   idSet(w.Pending),
	}
}

type wirePerformance struct {
	Status   string       `json:"validation_status"`
	Evidence evidenceList `json:"evidence"`
}

// ---- events ----

type wireEvent struct {
	Type         string           `json:"event"`
	Municipality wireMunicipality `json:"municipio"`
	Mission      *wireMission     `json:"missao"`
	Badge        string           `json:"emblema"`
	ChangedAt    string           `json:"data_alteracao"`
}

// eventTimeLayouts are tried in order; the backend has sent both.
var eventTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseEventTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (w wireEvent) toModel() models.Event {
	ev := models.Event{
		Type:         w.Type,
		Municipality: w.Municipality.toModel(),
		Badge:        w.Badge,
		ChangedAt:    parseEventTime(w.ChangedAt),
	}
	if w.Mission != nil {
		m := w.Mission.toModel()
		ev.MissionID = m.ID
		ev.MissionDescription = m.Description
	}
	return ev
}

// DecodeEvents converts a raw events envelope body. Exposed for the static
// fallback source, which stores the same document on disk.
func DecodeEvents(body []byte, q models.EventQuery) (models.EventPage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.EventPage{}, err
	}
	if !env.ok() {
		return models.EventPage{}, ErrBadEnvelope
	}
	var raw []wireEvent
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return models.EventPage{}, err
	}
	events := make([]models.Event, 0, len(raw))
	for _, w := range raw {
		events = append(events, w.toModel())
	}
	return models.EventPage{Events: events, Pagination: env.Pagination.toModel(q, len(events))}, nil
}

// DecodeMissionPanorama converts a raw mission panorama envelope body.
func DecodeMissionPanorama(body []byte) ([]models.MissionSummary, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if !env.ok() {
		return nil, ErrBadEnvelope
	}
	var raw []wireMissionSummary
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, err
	}
	out := make([]models.MissionSummary, 0, len(raw))
	for _, w := range raw {
		out = append(out, models.MissionSummary{
			Mission:             w.Mission.toModel(),
			CountValid:          w.CountValid,
			TotalMunicipalities: w.TotalMunicipalities,
		})
	}
	return out, nil
}

// DecodeMissionStatus converts a raw mission status envelope body.
func DecodeMissionStatus(body []byte) (models.MissionStatusSets, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.MissionStatusSets{}, err
	}
	if !env.ok() {
		return models.MissionStatusSets{}, ErrBadEnvelope
	}
	var raw wireMissionStatus
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return models.MissionStatusSets{}, err
	}
	return raw.toModel(), nil
}
