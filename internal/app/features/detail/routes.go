package detail

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /municipios.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.ServeDetail)
	return r
}
