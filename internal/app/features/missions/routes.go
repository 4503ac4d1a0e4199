package missions

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /missoes. ServeReset is
// registered by the caller at /filtros/limpar.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{id}/mapa", h.ServeApply)
	return r
}
