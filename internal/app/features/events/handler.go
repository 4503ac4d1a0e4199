// internal/app/features/events/handler.go
package events

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/system/paging"
	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the events feed.
type Handler struct {
	Ctrl     *panorama.Controller
	PageSize int
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an events Handler. pageSize falls back to
// paging.PageSize when out of range.
func NewHandler(ctrl *panorama.Controller, pageSize int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Ctrl:     ctrl,
		PageSize: paging.ClampLimit(pageSize, paging.PageSize),
		ErrLog:   errLog,
		Log:      logger,
	}
}

// parseQuery reads ?pagina&tipo&municipio&ordem. Unknown types and sort
// orders are dropped rather than rejected.
func (h *Handler) parseQuery(r *http.Request) models.EventQuery {
	q := models.EventQuery{
		Page:         paging.ParsePage(r),
		Limit:        h.PageSize,
		Municipality: strings.TrimSpace(query.Get(r, "municipio")),
		Sort:         models.SortDesc,
	}
	if t := query.Get(r, "tipo"); models.IsEventType(t) {
		q.Type = t
	}
	if strings.EqualFold(query.Get(r, "ordem"), models.SortAsc) {
		q.Sort = models.SortAsc
	}
	return q
}

// ServeList handles GET /eventos.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := h.parseQuery(r)
	page, err := h.Ctrl.Events(r.Context(), q)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load events failed", err, "Não foi possível carregar os eventos.")
		return
	}
	templates.RenderSnippet(w, "eventos_lista", buildList(page, q))
}
