package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger reports whether the program API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSource reports the dashboard's load state.
type StatusSource interface {
	Status() panorama.Status
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Upstream Pinger
	State    StatusSource
	Log      *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(upstream Pinger, state StatusSource, logger *zap.Logger) *Handler {
	return &Handler{
		Upstream: upstream,
		State:    state,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status         string     `json:"status"`
	Upstream       string     `json:"upstream"`
	RegistryLoaded bool       `json:"registry_loaded"`
	Municipalities int        `json:"municipalities"`
	Participating  int        `json:"participating"`
	Shapes         int        `json:"shapes"`
	Mode           string     `json:"mode"`
	LastRefresh    *time.Time `json:"last_refresh,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// With data loaded and the API reachable: 200 and
//
//	{ "status":"ok", "upstream":"reachable", "registry_loaded":true, ... }
//
// With data loaded but the API down the map still works from memory:
// 200 and "status":"degraded". Without data: 503 and "status":"error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	st := h.State.Status()
	resp := healthResponse{
		Status:         "ok",
		Upstream:       "reachable",
		RegistryLoaded: st.RegistryLoaded,
		Municipalities: st.Municipalities,
		Participating:  st.Participating,
		Shapes:         st.Shapes,
		Mode:           st.Mode,
		Error:          st.LastError,
	}
	if !st.LastRefresh.IsZero() {
		t := st.LastRefresh.UTC()
		resp.LastRefresh = &t
	}

	if err := h.Upstream.Ping(ctx); err != nil {
		h.Log.Warn("health-check: upstream ping failed", zap.Error(err))
		resp.Upstream = "unreachable"
		resp.Status = "degraded"
		if resp.Error == "" {
			resp.Error = err.Error()
		}
	}

	if !st.RegistryLoaded || st.Shapes == 0 {
		resp.Status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
