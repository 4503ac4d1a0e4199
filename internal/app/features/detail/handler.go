// internal/app/features/detail/handler.go
package detail

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/viewdata"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MapUpdatedEvent is the HTMX event the page listens for to refetch the
// shapes, legend and select options.
const MapUpdatedEvent = "mapa-atualizado"

// Handler serves the municipality detail panel.
type Handler struct {
	Ctrl    *panorama.Controller
	JoinURL string
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs a detail Handler.
func NewHandler(ctrl *panorama.Controller, joinURL string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Ctrl:    ctrl,
		JoinURL: joinURL,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// ServeDetail handles GET /municipios/{id}.
//
// Selecting a municipality highlights its shape at once; the panel content
// is fetched after. If another municipality is selected before the fetch
// finishes this response is 204 and the panel is left alone for the newer
// request to fill. A plain browser navigation selects the municipality and
// redirects to the dashboard.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseMunicipalityID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad municipality id", errors.New(chi.URLParam(r, "id")), "Código de município inválido.")
		return
	}

	ticket, err := h.Ctrl.SelectMunicipality(id)
	if errors.Is(err, panorama.ErrUnknownMunicipality) {
		uierrors.RenderNotFound(w, "")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "select municipality failed", err, "")
		return
	}
	if !viewdata.IsHTMX(r) {
		// Direct navigation: the page loads the panel for the selection.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Trigger", MapUpdatedEvent)

	d, err := h.Ctrl.LoadDetail(r.Context(), ticket)
	switch {
	case errors.Is(err, panorama.ErrSuperseded):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		h.ErrLog.LogUpstreamError(w, r, "load municipality detail failed", err, "")
		return
	}

	switch d.Kind {
	case panorama.DetailNotParticipating:
		templates.RenderSnippet(w, "detalhe_nao_aderiu", buildNotJoined(d, h.JoinURL))
	case panorama.DetailMission:
		templates.RenderSnippet(w, "detalhe_missao", buildMission(d))
	default:
		templates.RenderSnippet(w, "detalhe_perfil", buildProfile(d))
	}
}
