// internal/app/store/upstream/endpoints.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dalemusser/pactomapa/internal/app/system/timeouts"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
)

// ListMunicipalities returns every municipality the API knows.
// Entries without a usable IBGE code are dropped.
func (c *Client) ListMunicipalities(ctx context.Context) ([]models.Municipality, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), c.log, "list municipalities")
	defer cancel()

	var raw []wireMunicipality
	if err := c.getData(ctx, "/municipios", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Municipality, 0, len(raw))
	for _, w := range raw {
		if w.ID == "" {
			c.log.Warn("municipality without ibge code skipped", zap.String("name", w.Name))
			continue
		}
		out = append(out, w.toModel())
	}
	return out, nil
}

// MunicipalityDetail fetches the full profile. Concurrent calls for the same
// id share one request. The shared request is detached from the caller's
// cancellation so one caller giving up does not fail the others; each
// caller still stops waiting when its own ctx ends.
func (c *Client) MunicipalityDetail(ctx context.Context, id models.MunicipalityID) (models.MunicipalityDetail, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("detail:"+string(id), func() (any, error) {
		ctx, cancel := timeouts.WithTimeout(shared, timeouts.Short(), c.log, "municipality detail")
		defer cancel()

		var outer wireDetailOuter
		if err := c.getData(ctx, "/municipios/"+url.PathEscape(string(id)), nil, &outer); err != nil {
			return models.MunicipalityDetail{}, err
		}
		doc, err := decodeDetailDoc(outer.JSON)
		if err != nil {
			return models.MunicipalityDetail{}, err
		}
		d := doc.Data.toModel()
		if d.Municipality.ID == "" {
			d.Municipality.ID = id
		}
		return d, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return models.MunicipalityDetail{}, res.Err
		}
		return res.Val.(models.MunicipalityDetail), nil
	case <-ctx.Done():
		return models.MunicipalityDetail{}, ctx.Err()
	}
}

// decodeDetailDoc reads data.json, which the API sends as a JSON string
// holding a document; an embedded object is accepted too.
func decodeDetailDoc(raw json.RawMessage) (wireDetailDoc, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return wireDetailDoc{}, fmt.Errorf("%w: detail without json document", ErrBadEnvelope)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return wireDetailDoc{}, fmt.Errorf("upstream: decode detail document: %w", err)
		}
		raw = []byte(s)
	}
	var doc wireDetailDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return wireDetailDoc{}, fmt.Errorf("upstream: decode detail document: %w", err)
	}
	return doc, nil
}

// MapLevels is the decoded map panorama.
type MapLevels struct {
	// Levels holds one entry per municipality the panorama mentions.
	Levels map[models.MunicipalityID]models.Level
	// Distribution is the levelDistribution block: level to ids.
	Distribution map[models.Level][]models.MunicipalityID
}

// MapPanorama fetches per-municipality levels. The endpoint has been seen
// both with and without the {status, data} envelope.
func (c *Client) MapPanorama(ctx context.Context) (MapLevels, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), c.log, "map panorama")
	defer cancel()

	body, err := c.get(ctx, "/dashboard/map-panorama", nil)
	if err != nil {
		return MapLevels{}, err
	}
	return decodeMapPanorama(body)
}

func decodeMapPanorama(body []byte) (MapLevels, error) {
	var probe struct {
		Status         string          `json:"status"`
		Data           json.RawMessage `json:"data"`
		Municipalities json.RawMessage `json:"municipios"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return MapLevels{}, fmt.Errorf("upstream: decode map panorama: %w", err)
	}

	payload := body
	if len(probe.Municipalities) == 0 {
		if probe.Status != "" && probe.Status != "success" {
			return MapLevels{}, fmt.Errorf("%w: map panorama status=%q", ErrBadEnvelope, probe.Status)
		}
		if len(probe.Data) == 0 {
			return MapLevels{}, fmt.Errorf("%w: map panorama without municipios", ErrBadEnvelope)
		}
		payload = probe.Data
	}

	var raw wireMapPanorama
	if err := json.Unmarshal(payload, &raw); err != nil {
		return MapLevels{}, fmt.Errorf("upstream: decode map panorama: %w", err)
	}

	out := MapLevels{
		Levels:       make(map[models.MunicipalityID]models.Level, len(raw.Municipalities)),
		Distribution: make(map[models.Level][]models.MunicipalityID, len(raw.LevelDistribution)),
	}
	for _, m := range raw.Municipalities {
		if m.ID == "" {
			continue
		}
		if m.Performance == nil {
			out.Levels[m.ID] = models.NotParticipating
			continue
		}
		out.Levels[m.ID] = m.Performance.Level
	}
	for _, d := range raw.LevelDistribution {
		for _, id := range d.Municipalities {
			if id != "" {
				out.Distribution[d.Level] = append(out.Distribution[d.Level], id)
			}
		}
	}
	return out, nil
}

// MunicipalityPanorama fetches one municipality's panorama summary.
func (c *Client) MunicipalityPanorama(ctx context.Context, id models.MunicipalityID) (models.MunicipalityPanorama, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), c.log, "municipality panorama")
	defer cancel()

	var raw wireMunicipalityPanorama
	if err := c.getData(ctx, "/dashboard/map-panorama/"+url.PathEscape(string(id)), nil, &raw); err != nil {
		return models.MunicipalityPanorama{}, err
	}
	m := raw.MapPanorama.Municipality.toModel()
	if m.ID == "" {
		m.ID = id
	}
	return models.MunicipalityPanorama{
		Municipality: m,
		Level:        raw.Level,
		TotalPoints:  raw.TotalPoints,
		CountValid:   raw.MapPanorama.CountValid,
		CountStarted: raw.MapPanorama.CountStarted,
		CountPending: raw.MapPanorama.CountPending,
	}, nil
}

// MissionPanorama fetches completion stats for every mission.
func (c *Client) MissionPanorama(ctx context.Context) ([]models.MissionSummary, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), c.log, "mission panorama")
	defer cancel()

	body, err := c.get(ctx, "/dashboard/mission-panorama", nil)
	if err != nil {
		return nil, err
	}
	return DecodeMissionPanorama(body)
}

// MissionStatus fetches which municipalities completed, started or have
// pending the given mission.
func (c *Client) MissionStatus(ctx context.Context, missionID string) (models.MissionStatusSets, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), c.log, "mission status")
	defer cancel()

	body, err := c.get(ctx, "/dashboard/mission-panorama/"+url.PathEscape(missionID), nil)
	if err != nil {
		return models.MissionStatusSets{}, err
	}
	return DecodeMissionStatus(body)
}

// Mission fetches one mission with its evidence requirements.
func (c *Client) Mission(ctx context.Context, missionID string) (models.Mission, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), c.log, "mission")
	defer cancel()

	var raw wireMission
	if err := c.getData(ctx, "/missoes/"+url.PathEscape(missionID), nil, &raw); err != nil {
		return models.Mission{}, err
	}
	m := raw.toModel()
	if m.ID == "" {
		m.ID = missionID
	}
	return m, nil
}

// Performance fetches one municipality's status and evidence on one mission.
func (c *Client) Performance(ctx context.Context, id models.MunicipalityID, missionID string) (models.MissionPerformance, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), c.log, "performance")
	defer cancel()

	path := "/desempenhos/municipio/" + url.PathEscape(string(id)) + "/missao/" + url.PathEscape(missionID)
	var raw wirePerformance
	if err := c.getData(ctx, path, nil, &raw); err != nil {
		return models.MissionPerformance{}, err
	}
	return models.MissionPerformance{
		Mission:  models.Mission{ID: missionID},
		Status:   models.ParseValidationStatus(raw.Status),
		Evidence: raw.Evidence.toModel(),
	}, nil
}

// Events fetches one page of the events feed.
func (c *Client) Events(ctx context.Context, q models.EventQuery) (models.EventPage, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), c.log, "events")
	defer cancel()

	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Type != "" {
		v.Set("event", q.Type)
	}
	sort := q.Sort
	if sort == "" {
		sort = models.SortDesc
	}
	v.Set("sortDirection", sort)
	if q.Municipality != "" {
		v.Set("municipioSearch", q.Municipality)
	}

	body, err := c.get(ctx, "/eventos", v)
	if err != nil {
		return models.EventPage{}, err
	}
	page, err := DecodeEvents(body, q)
	if err != nil {
		return models.EventPage{}, fmt.Errorf("upstream: events: %w", err)
	}
	return page, nil
}
