// internal/app/store/overlay/overlay.go
//
// Package overlay holds the municipality shapes drawn on the map: one GeoJSON
// feature per municipality, each carrying the style the browser applies.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dalemusser/pactomapa/internal/domain/models"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
)

// Style is the Leaflet path style of a shape.
type Style struct {
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
}

// Base and selected stroke styles.
var (
	BaseStyle = Style{FillColor: "#FFFFFF", FillOpacity: 0.35, Color: "#333333", Weight: 1, Opacity: 0.5}

	selectedWeight      = 3.0
	selectedOpacity     = 1.0
	selectedFillOpacity = 0.8
)

// Shape is one municipality polygon.
type Shape struct {
	feature *geojson.Feature
	id      models.MunicipalityID
	name    string
	style   Style
	label   string
}

// ID is the canonical municipality id, or "" when the feature's id property
// could not be read.
func (s *Shape) ID() models.MunicipalityID { return s.id }

// Name is the feature's name property.
func (s *Shape) Name() string { return s.name }

// Style returns the current style.
func (s *Shape) Style() Style { return s.style }

// SetFill changes only the fill color.
func (s *Shape) SetFill(color string) { s.style.FillColor = color }

// SetStyle replaces the whole style.
func (s *Shape) SetStyle(st Style) { s.style = st }

// SetLabel sets the tooltip label ("Nível 2", "Não aderiu").
func (s *Shape) SetLabel(label string) { s.label = label }

// Label returns the tooltip label.
func (s *Shape) Label() string { return s.label }

// Overlay is the full set of shapes. Methods are safe for concurrent use;
// Each holds the write lock while fn runs, so fn must not call back into
// the overlay.
type Overlay struct {
	mu       sync.RWMutex
	fc       *geojson.FeatureCollection
	shapes   []*Shape
	byID     map[models.MunicipalityID]*Shape
	selected models.MunicipalityID
}

// Parse builds an overlay from a GeoJSON FeatureCollection. Features whose
// id property is missing or malformed are kept (they are drawn) with an
// empty ID.
func Parse(data []byte, logger *zap.Logger) (*Overlay, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("overlay: feature collection is empty")
	}

	o := &Overlay{fc: fc, byID: make(map[models.MunicipalityID]*Shape, len(fc.Features))}
	bad := 0
	for _, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = map[string]interface{}{}
		}
		s := &Shape{feature: f, style: BaseStyle, label: "Não aderiu"}
		if id, ok := models.ParseMunicipalityID(f.Properties["id"]); ok {
			s.id = id
			o.byID[id] = s
		} else {
			bad++
		}
		s.name, _ = f.Properties["name"].(string)
		o.shapes = append(o.shapes, s)
	}
	if bad > 0 && logger != nil {
		logger.Warn("geojson features without a usable id", zap.Int("count", bad))
	}
	return o, nil
}

// Load reads the GeoJSON from path when set, otherwise downloads it from
// url.
func Load(ctx context.Context, path, url string, client *http.Client, logger *zap.Logger) (*Overlay, error) {
	var data []byte
	var err error
	switch {
	case strings.TrimSpace(path) != "":
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("overlay: read %s: %w", path, err)
		}
	case strings.TrimSpace(url) != "":
		data, err = download(ctx, url, client)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("overlay: neither geojson_path nor geojson_url is set")
	}
	return Parse(data, logger)
}

func download(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("overlay: new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overlay: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overlay: download %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("overlay: read body: %w", err)
	}
	return data, nil
}

// Len is the number of shapes.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.shapes)
}

// Each visits every shape exactly once, in feature order.
func (o *Overlay) Each(fn func(*Shape)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range o.shapes {
		fn(s)
	}
}

// Has reports whether a shape exists for id.
func (o *Overlay) Has(id models.MunicipalityID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.byID[id]
	return ok
}

// Name returns the shape name for id.
func (o *Overlay) Name(id models.MunicipalityID) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.byID[id]
	if !ok {
		return "", false
	}
	return s.name, true
}

// StyleOf returns the current style of id's shape.
func (o *Overlay) StyleOf(id models.MunicipalityID) (Style, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.byID[id]
	if !ok {
		return Style{}, false
	}
	return s.style, true
}

// Highlight gives id the selected stroke and resets every other shape to
// the base stroke. An empty id clears the highlight.
func (o *Overlay) Highlight(id models.MunicipalityID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = id
	for _, s := range o.shapes {
		fill := s.style.FillColor
		st := BaseStyle
		st.FillColor = fill
		if id != "" && s.id == id {
			st.Weight = selectedWeight
			st.Opacity = selectedOpacity
			st.FillOpacity = selectedFillOpacity
		}
		s.style = st
	}
}

// Selected is the highlighted id, or "".
func (o *Overlay) Selected() models.MunicipalityID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selected
}

// MarshalJSON writes the collection with each feature's style, tooltip
// label and canonical id folded into its properties.
func (o *Overlay) MarshalJSON() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range o.shapes {
		s.feature.SetProperty("style", s.style)
		s.feature.SetProperty("level", s.label)
		s.feature.SetProperty("selected", s.id != "" && s.id == o.selected)
		if s.id != "" {
			s.feature.SetProperty("id", string(s.id))
		}
	}
	return json.Marshal(o.fc)
}
