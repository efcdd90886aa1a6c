// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	uierrors "github.com/akadox/akadox/internal/app/features/errors"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/normalize"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen is counted in runes.
const minPasswordLen = 8

type Handler struct {
	Profiles   *profilestore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(profiles *profilestore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles:   profiles,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type registerFormData struct {
	viewdata.BaseVM
	Error      string
	Name       string
	Email      string
	University string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, "Criar conta", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/register")
		return
	}

	form := registerFormData{
		BaseVM:     viewdata.NewBaseVM(r, "Criar conta", "/"),
		Name:       normalize.Name(r.FormValue("name")),
		Email:      normalize.Email(r.FormValue("email")),
		University: normalize.Name(r.FormValue("university")),
	}
	password := r.FormValue("password")

	switch {
	case form.Name == "" || form.Email == "":
		form.Error = "Indique o nome e o email."
	case utf8.RuneCountInString(password) < minPasswordLen:
		form.Error = "A palavra-passe deve ter pelo menos 8 caracteres."
	case password != r.FormValue("confirm"):
		form.Error = "As palavras-passe não coincidem."
	}
	if form.Error != "" {
		templates.Render(w, r, "register", form)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "Ocorreu um erro no servidor.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Create(ctx, models.Profile{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		University:   form.University,
	})
	if errors.Is(err, profilestore.ErrDuplicateEmail) {
		form.Error = "Já existe uma conta com este email."
		templates.Render(w, r, "register", form)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create profile", err, "Não foi possível criar a conta.", "/register")
		return
	}

	h.Log.Info("profile registered", zap.String("caller_id", p.ID.Hex()))

	if err := h.SessionMgr.SignIn(w, r, auth.Caller{
		ID:    p.ID.Hex(),
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}); err != nil {
		// The account exists; let them sign in by hand.
		h.Log.Error("save session after register failed", zap.Error(err))
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
