// internal/app/features/dashboard/professor.go
package dashboard

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func (h *Handler) ServeProfessor(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, "Painel do professor", "/")

	h.Log.Debug("professor dashboard served", zap.String("user", base.UserName))

	templates.Render(w, r, "professor_dashboard", baseDashboardData{BaseVM: base})
}
