package gate

import "github.com/akadox/akadox/internal/domain/models"

// Role-specific dashboards.
const (
	AdminDashboard     = "/dashboard/admin"
	ProfessorDashboard = "/dashboard/professor"
	DirectorDashboard  = "/dashboard/diretor"
	StudentDashboard   = "/dashboard/aluno"
)

// DashboardFor maps a role to its dashboard. Students, generic persons and
// unknown roles all land on the student dashboard.
func DashboardFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return AdminDashboard
	case models.RoleProfessor:
		return ProfessorDashboard
	case models.RoleDirector:
		return DirectorDashboard
	default:
		return StudentDashboard
	}
}
