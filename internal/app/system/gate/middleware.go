package gate

import (
	"context"
	"net/http"

	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/metrics"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/domain/models"
	"go.uber.org/zap"
)

// CallerResolver returns the caller for a request, if any.
type CallerResolver interface {
	CurrentCaller(r *http.Request) (*auth.Caller, bool)
}

// RoleLookup reads a caller's role from the identity backend.
type RoleLookup interface {
	CallerRole(ctx context.Context, callerID string) (models.Role, error)
}

// Gate is the request-time access middleware. Both collaborators are
// injected; Gate holds no per-request state.
type Gate struct {
	Callers CallerResolver
	Roles   RoleLookup
	Log     *zap.Logger
}

// New constructs a Gate.
func New(callers CallerResolver, roles RoleLookup, logger *zap.Logger) *Gate {
	return &Gate{Callers: callers, Roles: roles, Log: logger}
}

// Middleware applies the access decision and, for the generic dashboard
// path, the role router.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := g.Callers.CurrentCaller(r)
		if !ok {
			caller = nil
		}

		d := Decide(r.URL.Path, caller)
		metrics.GateDecisions.WithLabelValues(d.Kind.String()).Inc()

		if d.Kind != Allow {
			g.Log.Debug("gate redirect",
				zap.String("path", r.URL.Path),
				zap.String("decision", d.Kind.String()),
				zap.String("location", d.Location))
			redirect(w, r, d.Location)
			return
		}

		if r.URL.Path == DashboardPath && caller != nil {
			if dest, ok := g.routeDashboard(r, caller); ok {
				redirect(w, r, dest)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// routeDashboard looks up the caller's role. A lookup error is logged and
// reported as not routed so the request proceeds to the generic page.
func (g *Gate) routeDashboard(r *http.Request, caller *auth.Caller) (string, bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), g.Log, "role lookup")
	defer cancel()

	role, err := g.Roles.CallerRole(ctx, caller.ID)
	if err != nil {
		g.Log.Warn("role lookup failed; serving generic dashboard",
			zap.String("caller_id", caller.ID), zap.Error(err))
		metrics.RoleRoutes.WithLabelValues("lookup_failed").Inc()
		return "", false
	}

	label := string(role)
	if label == "" {
		label = "unknown"
	}
	metrics.RoleRoutes.WithLabelValues(label).Inc()
	return DashboardFor(role), true
}

func redirect(w http.ResponseWriter, r *http.Request, dest string) {
	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
