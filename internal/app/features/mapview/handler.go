// internal/app/features/mapview/handler.go
package mapview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/legend"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// MapConfig is handed to the map script as JSON. Coordinates are [lat, lng].
type MapConfig struct {
	SouthWest [2]float64 `json:"southWest"`
	NorthEast [2]float64 `json:"northEast"`
	Center    [2]float64 `json:"center"`
	MinZoom   float64    `json:"minZoom"`
	MaxZoom   float64    `json:"maxZoom"`
	ShapesURL string     `json:"shapesURL"`
}

// DefaultMapConfig frames the state of Ceará.
var DefaultMapConfig = MapConfig{
	SouthWest: [2]float64{-7.86, -41.42},
	NorthEast: [2]float64{-2.78, -37.25},
	Center:    [2]float64{-4.775, -37.2458},
	MinZoom:   7.35,
	MaxZoom:   8,
	ShapesURL: "/mapa/formas",
}

// Handler serves the dashboard page and the map's data endpoints.
type Handler struct {
	Ctrl   *panorama.Controller
	Map    MapConfig
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a map Handler.
func NewHandler(ctrl *panorama.Controller, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Ctrl:   ctrl,
		Map:    DefaultMapConfig,
		ErrLog: errLog,
		Log:    logger,
	}
}

type option struct {
	ID       string
	Name     string
	Selected bool
}

type pageData struct {
	viewdata.BaseVM
	Legend        legend.View
	Options       []option
	Selection     panorama.Selection
	MapConfigJSON string
	Loaded        bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – dashboard                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	cfg, err := json.Marshal(h.Map)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "marshal map config failed", err, "")
		return
	}
	sel := h.Ctrl.Selection()
	data := pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Mapa"),
		Legend:        h.Ctrl.Legend(),
		Options:       h.options("", sel),
		Selection:     sel,
		MapConfigJSON: string(cfg),
		Loaded:        h.Ctrl.Status().RegistryLoaded,
	}
	templates.Render(w, r, "mapa", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /mapa/formas – styled GeoJSON                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeShapes returns the overlay with each feature's current style. The
// ETag tracks recolors and the highlighted shape, so the map script can
// poll cheaply.
func (h *Handler) ServeShapes(w http.ResponseWriter, r *http.Request) {
	h.Ctrl.Counts() // drain a pending recolor before reading the version
	etag := fmt.Sprintf(`"v%d-%s"`, h.Ctrl.Version(), h.Ctrl.Selection().Municipality)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, err := h.Ctrl.ShapesJSON()
	if err != nil {
		h.Log.Error("shapes unavailable", zap.Error(err))
		http.Error(w, "mapa indisponível", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /mapa/legenda – legend fragment                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLegend(w http.ResponseWriter, r *http.Request) {
	templates.RenderSnippet(w, "mapa_legenda", h.Ctrl.Legend())
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /mapa/resumo – counts for the chart                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type summaryResponse struct {
	Mode          string         `json:"mode"`
	Counts        map[string]int `json:"counts"`
	Total         int            `json:"total"`
	Participating int            `json:"participating"`
	Version       uint64         `json:"version"`
}

func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	counts := h.Ctrl.Counts()
	resp := summaryResponse{
		Mode:          counts.Mode.String(),
		Counts:        counts.Map(),
		Total:         counts.Sum(),
		Participating: counts.Participants(),
		Version:       h.Ctrl.Version(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /mapa/municipios – participant select options                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMunicipalities(w http.ResponseWriter, r *http.Request) {
	opts := h.options(query.Get(r, "busca"), h.Ctrl.Selection())
	templates.RenderSnippet(w, "mapa_municipios_opcoes", opts)
}

func (h *Handler) options(search string, sel panorama.Selection) []option {
	ms := h.Ctrl.SearchParticipants(strings.TrimSpace(search))
	out := make([]option, 0, len(ms))
	for _, m := range ms {
		out = append(out, option{
			ID:       m.ID.String(),
			Name:     m.Name,
			Selected: m.ID == sel.Municipality,
		})
	}
	return out
}
