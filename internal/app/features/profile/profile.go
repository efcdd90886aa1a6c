// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	Name       string
	Email      string
	Role       string
	University string
	Since      string

	// Password section; OAuth-only accounts set a first password without
	// giving a current one.
	HasPassword bool

	Error   string
	Success string
}

var roleLabels = map[models.Role]string{
	models.RoleAdmin:     "Administrador",
	models.RoleDirector:  "Diretor",
	models.RoleProfessor: "Professor",
	models.RoleStudent:   "Aluno",
	models.RolePerson:    "Pessoa",
}

// ServeProfile renders the caller's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	data := h.viewData(r, p)
	if query.Get(r, "success") == "password" {
		data.Success = "Palavra-passe atualizada."
	}
	templates.Render(w, r, "profile", data)
}

// HandleChangePassword processes POST /profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Dados do formulário inválidos.", "/profile")
		return
	}

	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	current := r.FormValue("current")
	next := r.FormValue("password")

	data := h.viewData(r, p)
	switch {
	case p.PasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(current)) != nil:
		data.Error = "A palavra-passe atual está incorreta."
	case utf8.RuneCountInString(next) < minPasswordLen:
		data.Error = "A nova palavra-passe deve ter pelo menos 8 caracteres."
	case next != r.FormValue("confirm"):
		data.Error = "As palavras-passe não coincidem."
	}
	if data.Error != "" {
		templates.Render(w, r, "profile", data)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "Ocorreu um erro no servidor.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Profiles.UpdatePassword(ctx, p.ID, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "update password", err, "Não foi possível atualizar a palavra-passe.", "/profile")
		return
	}

	h.Log.Info("password changed", zap.String("caller_id", p.ID.Hex()))
	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

// loadProfile fetches the signed-in caller's profile, writing the error
// response itself when it cannot.
func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	c, ok := auth.CurrentCaller(r)
	if !ok {
		http.Redirect(w, r, auth.LoginURL(r.URL.Path), http.StatusSeeOther)
		return nil, false
	}

	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad caller id", err, "Sessão inválida.", "/")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, oid)
	if errors.Is(err, profilestore.ErrNotFound) {
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile", err, "Não foi possível carregar o perfil.", "/")
		return nil, false
	}
	return p, true
}

func (h *Handler) viewData(r *http.Request, p *models.Profile) profileData {
	role, _ := models.ParseRole(string(p.Role))
	return profileData{
		BaseVM:      viewdata.NewBaseVM(r, "O meu perfil", "/dashboard"),
		Name:        p.Name,
		Email:       p.Email,
		Role:        roleLabels[role],
		University:  p.University,
		Since:       p.CreatedAt.Format("02/01/2006"),
		HasPassword: p.PasswordHash != "",
	}
}
