// internal/app/features/dashboard/common.go
package dashboard

import (
	"time"

	metricsstore "github.com/akadox/akadox/internal/app/store/metrics"
	"github.com/akadox/akadox/internal/app/system/viewdata"
)

const dashboardTimeout = 5 * time.Second

// baseDashboardData contains fields common to all dashboard views.
type baseDashboardData struct {
	viewdata.BaseVM
}

// dashboardWithCounts extends baseDashboardData with platform totals
// for the admin and director dashboards.
type dashboardWithCounts struct {
	baseDashboardData
	Counts metricsstore.Counts
}
