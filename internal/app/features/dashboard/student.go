// internal/app/features/dashboard/student.go
package dashboard

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeStudent serves students and generic persons.
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, "Painel do aluno", "/")

	h.Log.Debug("student dashboard served", zap.String("user", base.UserName))

	templates.Render(w, r, "student_dashboard", baseDashboardData{BaseVM: base})
}
