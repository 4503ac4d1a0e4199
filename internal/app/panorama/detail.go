// internal/app/panorama/detail.go
package panorama

import (
	"context"
	"regexp"

	"github.com/dalemusser/pactomapa/internal/app/system/latest"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DetailKind says which panel a Detail fills.
type DetailKind int

const (
	// DetailNotParticipating is the "has not joined" panel, built from the
	// registry without a fetch.
	DetailNotParticipating DetailKind = iota
	// DetailProfile is the full profile: points, badges and missions.
	DetailProfile
	// DetailMission is one municipality's standing on the selected mission.
	DetailMission
)

// Detail is the content of the detail panel.
type Detail struct {
	Kind         DetailKind
	Municipality models.Municipality

	Profile     models.MunicipalityDetail   // DetailProfile
	Panorama    models.MunicipalityPanorama // DetailMission
	Mission     models.Mission              // DetailMission
	Performance models.MissionPerformance   // DetailMission
}

// LoadDetail fetches the panel for ticket's municipality. If the selection
// changed while the fetch was in flight the result is discarded and
// ErrSuperseded returned.
func (c *Controller) LoadDetail(ctx context.Context, ticket latest.Ticket[models.MunicipalityID]) (Detail, error) {
	id := ticket.Key
	base, _ := c.reg.Municipality(id)
	base.ID = id
	if base.Name == "" {
		base.Name = c.municipalityName(id)
	}
	base.AvatarURL = ThumbnailURL(base.AvatarURL)

	if !c.reg.Participating(id) {
		if !ticket.Current() {
			return Detail{}, ErrSuperseded
		}
		return Detail{Kind: DetailNotParticipating, Municipality: base}, nil
	}

	var d Detail
	var err error
	if mission := c.SelectedMission(); mission != "" {
		d, err = c.loadMissionDetail(ctx, id, mission)
	} else {
		d, err = c.loadProfile(ctx, id)
	}
	if err != nil {
		c.log.Warn("load municipality detail failed", zap.String("municipality", string(id)), zap.Error(err))
		return Detail{}, err
	}
	if !ticket.Current() {
		c.log.Debug("discarding stale detail response", zap.String("municipality", string(id)))
		return Detail{}, ErrSuperseded
	}

	if d.Municipality.Name == "" {
		d.Municipality.Name = base.Name
	}
	if d.Municipality.AvatarURL == "" {
		d.Municipality.AvatarURL = base.AvatarURL
	}
	d.Municipality.ID = id
	d.Municipality.Level = c.reg.Effective(id)
	return d, nil
}

func (c *Controller) loadProfile(ctx context.Context, id models.MunicipalityID) (Detail, error) {
	p, err := c.api.MunicipalityDetail(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	c.reg.Update(id, func(m *models.Municipality) {
		m.Points = p.Points
		m.Badges = p.TotalBadges()
		if p.Municipality.AvatarURL != "" {
			m.AvatarURL = p.Municipality.AvatarURL
		}
	})

	m := p.Municipality
	m.AvatarURL = ThumbnailURL(m.AvatarURL)
	m.Points = p.Points
	m.Badges = p.TotalBadges()
	return Detail{Kind: DetailProfile, Municipality: m, Profile: p}, nil
}

// loadMissionDetail fetches the mission, the municipality's performance on
// it and its panorama summary concurrently.
func (c *Controller) loadMissionDetail(ctx context.Context, id models.MunicipalityID, missionID string) (Detail, error) {
	d := Detail{Kind: DetailMission}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.api.Mission(gctx, missionID)
		d.Mission = m
		return err
	})
	g.Go(func() error {
		p, err := c.api.Performance(gctx, id, missionID)
		d.Performance = p
		return err
	})
	g.Go(func() error {
		p, err := c.api.MunicipalityPanorama(gctx, id)
		d.Panorama = p
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}
	d.Performance.Mission = d.Mission
	d.Municipality = d.Panorama.Municipality
	d.Municipality.AvatarURL = ThumbnailURL(d.Municipality.AvatarURL)
	d.Municipality.Points = d.Panorama.TotalPoints
	return d, nil
}

var driveFileID = regexp.MustCompile(`/d/(.*?)(/|$)`)

// ThumbnailURL turns a Google Drive share link into its thumbnail URL. Any
// other value yields "" and the panel shows the placeholder image.
func ThumbnailURL(driveURL string) string {
	if driveURL == "" {
		return ""
	}
	m := driveFileID.FindStringSubmatch(driveURL)
	if len(m) < 2 || m[1] == "" {
		return ""
	}
	return "https://drive.google.com/thumbnail?id=" + m[1]
}
