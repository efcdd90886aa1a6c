// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/akadox/akadox/internal/app/features/errors"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/metrics"
	"github.com/akadox/akadox/internal/app/system/normalize"
	"github.com/akadox/akadox/internal/app/system/ratelimit"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const badCredentials = "Email ou palavra-passe incorretos."

type Handler struct {
	Profiles      *profilestore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Limiter       *ratelimit.LoginLimiter
	GoogleEnabled bool // True if the OAuth client is configured
}

func NewHandler(
	profiles *profilestore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	limiter *ratelimit.LoginLimiter,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Profiles:      profiles,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Limiter:       limiter,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	data := loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Entrar", "/"),
		ReturnURL:     query.Get(r, auth.ReturnParam),
		GoogleEnabled: h.GoogleEnabled,
	}
	if query.Get(r, "error") != "" {
		data.Error = "Não foi possível entrar com o Google. Tente novamente."
	}

	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue(auth.ReturnParam))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, http.StatusOK, "Indique o email e a palavra-passe.", email, ret)
		return
	}

	if ok, msg := h.Limiter.Check(r, email); !ok {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("email", email))
		h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, email, ret)
		return
	}

	/*── look-up profile by email_ci ─────────────────────────────────────────*/

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, profilestore.ErrNotFound):
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		h.renderFormWithError(w, r, http.StatusOK, badCredentials, email, ret)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find profile", err, "Ocorreu um erro no servidor.", "/login")
		return
	}

	/*── disabled accounts cannot sign in ────────────────────────────────────*/

	if normalize.Status(p.Status) == profilestore.StatusDisabled {
		metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		h.renderFormWithError(w, r, http.StatusOK, "A sua conta está desativada. Contacte um administrador.", email, ret)
		return
	}

	// Accounts created through the OAuth callback have no password.
	if p.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		h.renderFormWithError(w, r, http.StatusOK, badCredentials, email, ret)
		return
	}

	h.Limiter.ResetEmail(ctx, email)

	role, _ := models.ParseRole(string(p.Role))
	if err := h.SessionMgr.SignIn(w, r, auth.Caller{
		ID:    p.ID.Hex(),
		Name:  p.Name,
		Email: p.Email,
		Role:  role,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", email))
		h.renderFormWithError(w, r, http.StatusOK, "Não foi possível iniciar a sessão. Tente novamente.", email, ret)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.Log.Info("login succeeded", zap.String("caller_id", p.ID.Hex()))

	dest := urlutil.SafeReturn(ret, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, email, ret string) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Entrar", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
