// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "akadox"
)

var (
	// Access gate
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Access gate outcomes by decision kind.",
	}, []string{"decision"})

	RoleRoutes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_role_routes_total",
		Help:      "Generic dashboard requests routed, by caller role or lookup_failed.",
	}, []string{"role"})

	// Authentication
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Password login attempts by result.",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
