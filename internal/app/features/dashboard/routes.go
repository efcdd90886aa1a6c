// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/gate"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboards under /dashboard. The role-specific paths
// are the targets of the access gate's role router.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})

	r.With(sm.RequireRole(models.RoleAdmin)).Get(suffix(gate.AdminDashboard), h.ServeAdmin)
	r.With(sm.RequireRole(models.RoleProfessor)).Get(suffix(gate.ProfessorDashboard), h.ServeProfessor)
	r.With(sm.RequireRole(models.RoleDirector)).Get(suffix(gate.DirectorDashboard), h.ServeDirector)
	r.With(sm.RequireRole(studentDashboardRoles...)).Get(suffix(gate.StudentDashboard), h.ServeStudent)

	return r
}

// studentDashboardRoles includes the empty Role: callers whose stored role
// is not recognized are routed to the student dashboard as well.
var studentDashboardRoles = []models.Role{models.RoleStudent, models.RolePerson, ""}

// suffix strips the mount point from a full dashboard path.
func suffix(full string) string {
	return full[len(gate.DashboardPath):]
}
