package login

import "github.com/go-chi/chi/v5"

// Routes serves /login. The access gate sends signed-in callers to
// /dashboard before these handlers run.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
