// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	authgooglefeature "github.com/akadox/akadox/internal/app/features/authgoogle"
	dashboardfeature "github.com/akadox/akadox/internal/app/features/dashboard"
	errorsfeature "github.com/akadox/akadox/internal/app/features/errors"
	healthfeature "github.com/akadox/akadox/internal/app/features/health"
	homefeature "github.com/akadox/akadox/internal/app/features/home"
	loginfeature "github.com/akadox/akadox/internal/app/features/login"
	logoutfeature "github.com/akadox/akadox/internal/app/features/logout"
	pagesfeature "github.com/akadox/akadox/internal/app/features/pages"
	profilefeature "github.com/akadox/akadox/internal/app/features/profile"
	registerfeature "github.com/akadox/akadox/internal/app/features/register"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/gate"
	"github.com/akadox/akadox/internal/app/system/metrics"
	"github.com/akadox/akadox/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// Page routes run behind three middlewares in order: LoadCaller resolves
// the session, the access gate decides on the resolved caller (and routes
// /dashboard by role), and CSRF protection runs last so redirects never
// need a token.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh profile data on each request, so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetCallerFetcher(profilestore.NewFetcher(deps.MongoDatabase))

	// Dev mode enables template reloading.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	profiles := profilestore.New(deps.MongoDatabase)
	errLog := errorsfeature.NewErrorLogger(logger)

	var limiter *ratelimit.LoginLimiter
	if deps.Redis != nil {
		limiter = ratelimit.NewRedisLoginLimiter(deps.Redis, appCfg.LoginMaxAttempts, appCfg.LoginWindow, logger)
	} else {
		limiter = ratelimit.NewMemoryLoginLimiter(appCfg.LoginMaxAttempts, appCfg.LoginWindow, logger)
	}

	r := chi.NewRouter()

	// Operational endpoints and static assets carry no session: they are
	// mounted outside the caller, gate and CSRF chain.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		app.Use(sessionMgr.LoadCaller)
		app.Use(gate.New(sessionMgr, profiles, logger).Middleware)
		app.Use(csrfMiddleware(appCfg.SessionKey, secure, logger)...)

		// Public pages
		homeHandler := homefeature.NewHandler(logger)
		app.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		googleHandler := authgooglefeature.NewHandler(profiles, sessionMgr, appCfg.SessionKey,
			appCfg.OAuthClientID, appCfg.OAuthClientSecret, appCfg.BaseURL, secure, logger)
		app.Mount("/auth", authgooglefeature.Routes(googleHandler))

		loginHandler := loginfeature.NewHandler(profiles, sessionMgr, errLog, limiter, googleHandler.IsConfigured(), logger)
		app.Mount("/login", loginfeature.Routes(loginHandler))

		registerHandler := registerfeature.NewHandler(profiles, sessionMgr, errLog, logger)
		app.Mount("/register", registerfeature.Routes(registerHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		app.Get("/forbidden", errorsHandler.Forbidden)

		// Role-based dashboards
		dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, logger)
		app.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		profileHandler := profilefeature.NewHandler(profiles, errLog, logger)
		app.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		// Protected page shells
		pagesHandler := pagesfeature.NewHandler(logger)
		app.Mount("/upload", pagesHandler.UploadRouter(sessionMgr))
		app.Mount("/favorites", pagesHandler.FavoritesRouter(sessionMgr))
		app.Mount("/admin", pagesHandler.AdminRouter(sessionMgr))
		app.Mount("/university-admin", pagesHandler.UniversityAdminRouter(sessionMgr))
	})

	return r, nil
}

// csrfMiddleware returns the form-token protection chain. Over plain HTTP
// (dev) the request is marked plaintext so the Referer check is skipped.
func csrfMiddleware(sessionKey string, secure bool, logger *zap.Logger) []func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))

	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("akadox_csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf validation failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderForbidden(w, r, "O formulário expirou. Recarregue a página e tente novamente.", r.URL.Path)
		})),
	)

	if secure {
		return []func(http.Handler) http.Handler{protect}
	}
	plaintext := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
	return []func(http.Handler) http.Handler{plaintext, protect}
}
