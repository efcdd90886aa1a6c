package home

import "github.com/go-chi/chi/v5"

// Routes mounts the public pages; every path here is allowed for anyone.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Get("/browse", h.ServeBrowse)
	r.Get("/universities", h.ServeUniversities)
	return r
}
