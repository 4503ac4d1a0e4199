package events

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted under /eventos.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
