// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for OAuth endpoints, mounted at /auth.
// /auth/callback is auth-only: the access gate turns signed-in callers away.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /auth/google - start the flow
	r.Get("/google", h.ServeLogin)

	// GET /auth/callback - provider callback
	r.Get("/callback", h.ServeCallback)

	return r
}
