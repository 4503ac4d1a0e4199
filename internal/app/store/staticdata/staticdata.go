// internal/app/store/staticdata/staticdata.go
//
// Package staticdata serves the dashboard's secondary data source: snapshot
// files of upstream responses kept on disk, used when the API fails.
package staticdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"go.uber.org/zap"
)

// Snapshot file names.
const (
	MissionPanoramaFile = "mission-panorama-response.json"
	MissionStatusFile   = "mission-panorama-by-id-response.json"
	EventsFile          = "event-response.json"
)

// ErrNotConfigured is returned by a Source with no directory.
var ErrNotConfigured = errors.New("staticdata: no fallback directory configured")

// Source reads snapshot files from a filesystem. The zero value and a nil
// *Source are valid and report ErrNotConfigured.
type Source struct {
	fsys fs.FS
}

// New returns a Source rooted at dir. An empty dir yields an unconfigured
// Source.
func New(dir string) *Source {
	if strings.TrimSpace(dir) == "" {
		return &Source{}
	}
	return &Source{fsys: os.DirFS(dir)}
}

// NewFS returns a Source over fsys (tests, embedded snapshots).
func NewFS(fsys fs.FS) *Source { return &Source{fsys: fsys} }

// Configured reports whether the source has a filesystem.
func (s *Source) Configured() bool { return s != nil && s.fsys != nil }

func (s *Source) read(name string) ([]byte, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("staticdata: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, fmt.Errorf("staticdata: %s is empty", name)
	}
	return b, nil
}

// MissionPanorama reads the mission panorama snapshot.
func (s *Source) MissionPanorama() ([]models.MissionSummary, error) {
	b, err := s.read(MissionPanoramaFile)
	if err != nil {
		return nil, err
	}
	out, err := upstream.DecodeMissionPanorama(b)
	if err != nil {
		return nil, fmt.Errorf("staticdata: %s: %w", MissionPanoramaFile, err)
	}
	return out, nil
}

// MissionStatus reads the mission status snapshot. The snapshot holds a
// single mission, so missionID is not used to select it.
func (s *Source) MissionStatus(missionID string) (models.MissionStatusSets, error) {
	b, err := s.read(MissionStatusFile)
	if err != nil {
		return models.MissionStatusSets{}, err
	}
	out, err := upstream.DecodeMissionStatus(b)
	if err != nil {
		return models.MissionStatusSets{}, fmt.Errorf("staticdata: %s: %w", MissionStatusFile, err)
	}
	return out, nil
}

// Events reads the events snapshot and applies q locally: type and
// municipality filters, sort order and the requested page.
func (s *Source) Events(q models.EventQuery) (models.EventPage, error) {
	b, err := s.read(EventsFile)
	if err != nil {
		return models.EventPage{}, err
	}
	all, err := upstream.DecodeEvents(b, q)
	if err != nil {
		return models.EventPage{}, fmt.Errorf("staticdata: %s: %w", EventsFile, err)
	}
	return filterEvents(all.Events, q), nil
}

func filterEvents(events []models.Event, q models.EventQuery) models.EventPage {
	search := strings.ToLower(strings.TrimSpace(q.Municipality))
	kept := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if q.Type != "" && ev.Type != q.Type {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ev.Municipality.Name), search) {
			continue
		}
		kept = append(kept, ev)
	}

	// Snapshots are stored newest first.
	if q.Sort == models.SortAsc {
		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = len(kept)
	}
	total := len(kept)
	start := q.Page * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return models.EventPage{
		Events: kept[start:end],
		Pagination: models.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: models.PagesFor(total, limit),
		},
	}
}

// Fallback runs remote and, if it fails for any reason other than the
// caller giving up, runs local instead. The remote error is returned when
// local fails too.
func Fallback[T any](ctx context.Context, log *zap.Logger, what string, remote, local func() (T, error)) (T, error) {
	v, err := remote()
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil || local == nil {
		return v, err
	}

	lv, lerr := local()
	if lerr != nil {
		if !errors.Is(lerr, ErrNotConfigured) && log != nil {
			log.Warn("fallback source failed", zap.String("what", what), zap.Error(lerr))
		}
		return v, err
	}
	if log != nil {
		log.Warn("upstream failed, served from fallback files", zap.String("what", what), zap.Error(err))
	}
	return lv, nil
}
