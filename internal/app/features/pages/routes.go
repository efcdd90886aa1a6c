// internal/app/features/pages/routes.go
package pages

import (
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Each router is mounted at its own path by bootstrap.

func (h *Handler) UploadRouter(sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeUpload)
	return r
}

func (h *Handler) FavoritesRouter(sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeFavorites)
	return r
}

func (h *Handler) AdminRouter(sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeAdmin)
	return r
}

func (h *Handler) UniversityAdminRouter(sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleDirector, models.RoleAdmin))
	r.Get("/", h.ServeUniversityAdmin)
	return r
}
