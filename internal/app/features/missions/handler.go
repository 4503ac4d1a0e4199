// internal/app/features/missions/handler.go
package missions

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/features/shared/views"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// MapUpdatedEvent is the HTMX event the page listens for to refetch the
// shapes, legend and select options.
const MapUpdatedEvent = "mapa-atualizado"

// Handler serves the mission panorama and the map filter actions.
type Handler struct {
	Ctrl   *panorama.Controller
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a missions Handler.
func NewHandler(ctrl *panorama.Controller, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Ctrl:   ctrl,
		ErrLog: errLog,
		Log:    logger,
	}
}

type cardVM struct {
	ID         string
	Title      template.HTML
	Category   string
	Background template.CSS
	Points     int
	Completed  int
	Total      int
	Percent    int
	Selected   bool
}

type listVM struct {
	Cards     []cardVM
	Selected  string
	CSRFToken string
}

func buildCards(sums []models.MissionSummary, selected string) []cardVM {
	out := make([]cardVM, 0, len(sums))
	for _, s := range sums {
		out = append(out, cardVM{
			ID:         s.Mission.ID,
			Title:      htmlsanitize.SanitizeToHTML(s.Mission.Description),
			Category:   s.Mission.CategoryDescription,
			Background: views.CategoryBackground(s.Mission.Category),
			Points:     s.Mission.Points,
			Completed:  s.CountValid,
			Total:      s.TotalMunicipalities,
			Percent:    s.PercentComplete(),
			Selected:   s.Mission.ID == selected,
		})
	}
	return out
}

// ServeList handles GET /missoes.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sums, err := h.Ctrl.MissionPanorama(r.Context())
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load mission panorama failed", err, "")
		return
	}
	templates.RenderSnippet(w, "missoes_lista", listVM{
		Cards:     buildCards(sums, h.Ctrl.SelectedMission()),
		Selected:  h.Ctrl.SelectedMission(),
		CSRFToken: csrf.Token(r),
	})
}

// ServeApply handles POST /missoes/{id}/mapa: color the map by the
// mission's status. A request overtaken by a later choice answers 204.
func (h *Handler) ServeApply(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.ErrLog.LogBadRequest(w, r, "missing mission id", errors.New("empty id"), "Missão inválida.")
		return
	}

	err := h.Ctrl.SelectMission(r.Context(), id)
	switch {
	case errors.Is(err, panorama.ErrSuperseded):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		h.ErrLog.LogUpstreamError(w, r, "apply mission filter failed", err, "Não foi possível carregar a situação da missão.")
		return
	}

	w.Header().Set("HX-Trigger", MapUpdatedEvent)
	templates.RenderSnippet(w, "mapa_legenda", h.Ctrl.Legend())
}

// ServeReset handles POST /filtros/limpar.
func (h *Handler) ServeReset(w http.ResponseWriter, r *http.Request) {
	h.Ctrl.ResetFilters()
	w.Header().Set("HX-Trigger", MapUpdatedEvent)
	templates.RenderSnippet(w, "mapa_legenda", h.Ctrl.Legend())
}
