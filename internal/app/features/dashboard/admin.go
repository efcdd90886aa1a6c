// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/akadox/akadox/internal/app/store/metrics"
	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	base := viewdata.NewBaseVM(r, "Painel de administração", "/")
	data := dashboardWithCounts{
		baseDashboardData: baseDashboardData{BaseVM: base},
		Counts:            metricsstore.FetchDashboardCounts(ctx, h.DB),
	}

	h.Log.Debug("admin dashboard served", zap.String("user", base.UserName))

	templates.Render(w, r, "admin_dashboard", data)
}
