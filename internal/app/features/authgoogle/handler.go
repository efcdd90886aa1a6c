// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/normalize"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// CallbackPath is registered with the OAuth provider.
	CallbackPath = "/auth/callback"

	stateCookie = "akadox_oauth_state"
	stateTTL    = 10 * time.Minute

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler handles the OAuth2 authorization-code flow against Google.
type Handler struct {
	Profiles   *profilestore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://akadox.cv/auth/callback"
	Endpoint     oauth2.Endpoint
	UserInfoURL  string

	state  *securecookie.SecureCookie
	secure bool
}

// NewHandler creates the OAuth handler. stateKey signs the short-lived
// state cookie; the session key is a fine choice.
func NewHandler(
	profiles *profilestore.Store,
	sessionMgr *auth.SessionManager,
	stateKey string,
	clientID, clientSecret, baseURL string,
	secure bool,
	logger *zap.Logger,
) *Handler {
	codec := securecookie.New([]byte(stateKey), nil)
	codec.MaxAge(int(stateTTL / time.Second))

	return &Handler{
		Profiles:     profiles,
		Log:          logger,
		SessionMgr:   sessionMgr,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + CallbackPath,
		Endpoint:     google.Endpoint,
		UserInfoURL:  googleUserInfoURL,
		state:        codec,
		secure:       secure,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if client credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Starts the flow by redirecting to the provider's consent screen.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	encoded, err := h.state.Encode(stateCookie, map[string]string{
		"state":    state,
		"redirect": query.Get(r, auth.ReturnParam),
	})
	if err != nil {
		h.Log.Error("failed to sign OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth",
		MaxAge:   int(stateTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/callback                                                           |
| Exchanges the code, fetches the account email, finds or creates the          |
| profile and signs the caller in.                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		redirectToLogin(w, r, "google_denied")
		return
	}

	returnURL, ok := h.checkState(w, r)
	if !ok {
		redirectToLogin(w, r, "invalid_state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		redirectToLogin(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		redirectToLogin(w, r, "token_exchange")
		return
	}

	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		redirectToLogin(w, r, "user_info")
		return
	}
	if info.Email == "" || !info.EmailVerified {
		h.Log.Info("Google account email missing or unverified", zap.String("email", info.Email))
		redirectToLogin(w, r, "unverified_email")
		return
	}

	p, err := h.findOrCreate(ctx, info)
	switch {
	case errors.Is(err, errProfileDisabled):
		redirectToLogin(w, r, "account_disabled")
		return
	case err != nil:
		h.Log.Error("failed to resolve profile for OAuth login", zap.Error(err))
		redirectToLogin(w, r, "internal")
		return
	}

	role, _ := models.ParseRole(string(p.Role))
	if err := h.SessionMgr.SignIn(w, r, auth.Caller{
		ID:    p.ID.Hex(),
		Name:  p.Name,
		Email: p.Email,
		Role:  role,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err))
		redirectToLogin(w, r, "internal")
		return
	}

	h.Log.Info("OAuth login succeeded", zap.String("caller_id", p.ID.Hex()))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"), http.StatusSeeOther)
}

// checkState verifies the state parameter against the signed cookie and
// clears the cookie. It returns the return path stored at flow start.
func (h *Handler) checkState(w http.ResponseWriter, r *http.Request) (string, bool) {
	state := query.Get(r, "state")
	c, err := r.Cookie(stateCookie)
	if state == "" || err != nil {
		h.Log.Warn("missing OAuth state")
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
	})

	var vals map[string]string
	if err := h.state.Decode(stateCookie, c.Value, &vals); err != nil {
		h.Log.Warn("invalid or expired OAuth state cookie", zap.Error(err))
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(vals["state"]), []byte(state)) != 1 {
		h.Log.Warn("OAuth state mismatch")
		return "", false
	}
	return vals["redirect"], true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profile lookup                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

var errProfileDisabled = errors.New("profile disabled")

// userInfo is the subset of the provider's userinfo response we use.
type userInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	client := h.oauth2Config().Client(ctx, token)

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreate matches the account by email and creates a student profile
// on first sign-in.
func (h *Handler) findOrCreate(ctx context.Context, info *userInfo) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByEmail(ctx, info.Email)
	if errors.Is(err, profilestore.ErrNotFound) {
		name := info.Name
		if normalize.Name(name) == "" {
			name = info.Email
		}
		created, cerr := h.Profiles.Create(ctx, models.Profile{
			Name:  name,
			Email: info.Email,
			Role:  models.RoleStudent,
		})
		if errors.Is(cerr, profilestore.ErrDuplicateEmail) {
			// Lost a race with a concurrent first sign-in.
			p, err = h.Profiles.GetByEmail(ctx, info.Email)
		} else if cerr != nil {
			return nil, cerr
		} else {
			h.Log.Info("profile created from OAuth login", zap.String("caller_id", created.ID.Hex()))
			return &created, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if normalize.Status(p.Status) == profilestore.StatusDisabled {
		return nil, errProfileDisabled
	}
	return p, nil
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, auth.LoginPath+"?error="+code, http.StatusSeeOther)
}

// generateState creates a random state parameter.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
