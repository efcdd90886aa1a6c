// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// ServeDashboard renders the generic dashboard. The access gate normally
// redirects /dashboard to the caller's role dashboard before this runs; the
// page is what callers see when the role could not be looked up.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, "Painel", "/")

	h.Log.Debug("generic dashboard served", zap.String("user", base.UserName))

	templates.Render(w, r, "dashboard", baseDashboardData{BaseVM: base})
}
