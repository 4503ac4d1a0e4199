package mapview

import "github.com/go-chi/chi/v5"

// Routes returns the dashboard page and the /mapa endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePage)
	r.Route("/mapa", func(r chi.Router) {
		r.Get("/formas", h.ServeShapes)
		r.Get("/legenda", h.ServeLegend)
		r.Get("/resumo", h.ServeSummary)
		r.Get("/municipios", h.ServeMunicipalities)
	})
	return r
}
