package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akadox/akadox/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/login"
	// ReturnParam carries the originally requested path through login.
	ReturnParam = "redirect"

	isAuthKey   = "is_authenticated"
	callerIDKey = "caller_id"
	callerName  = "caller_name"
	callerEmail = "caller_email"
	callerRole  = "caller_role"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Caller                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Caller is the authenticated identity resolved from the session for the
// current request. It is read-only here; profiles are owned by the store.
type Caller struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// CallerFetcher loads fresh caller data on each request so role changes
// and disabled accounts take effect immediately. A nil Caller with a nil
// error means the account no longer resolves (missing or disabled).
type CallerFetcher interface {
	FetchCaller(ctx context.Context, callerID string) (*Caller, error)
}

type ctxKey string

const currentCallerKey ctxKey = "currentCaller"

// CurrentCaller returns the caller & "found?" flag.
func CurrentCaller(r *http.Request) (*Caller, bool) {
	c, ok := r.Context().Value(currentCallerKey).(*Caller)
	return c, ok && c != nil
}

// WithCaller returns a shallow copy of r carrying c. LoadCaller uses it;
// tests use it to simulate a signed-in caller.
func WithCaller(r *http.Request, c *Caller) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentCallerKey, c))
}

// LoginURL builds the login location for a caller that asked for returnPath.
func LoginURL(returnPath string) string {
	if returnPath == "" {
		return LoginPath
	}
	q := url.Values{}
	q.Set(ReturnParam, returnPath)
	return LoginPath + "?" + q.Encode()
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store. It is built once in bootstrap and
// passed to whatever needs sessions.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher CallerFetcher
	log     *zap.Logger
}

// NewSessionManager creates the cookie-backed session store.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	if maxAge > 0 {
		store.MaxAge(int(maxAge / time.Second))
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetCallerFetcher installs the fetcher used by LoadCaller.
func (sm *SessionManager) SetCallerFetcher(f CallerFetcher) {
	sm.fetcher = f
}

// Store exposes the underlying cookie store (logout copies its options).
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// Name is the session cookie name.
func (sm *SessionManager) Name() string {
	return sm.name
}

// GetSession returns the session for r. On decode failure gorilla still
// returns a fresh session alongside the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// CurrentCaller implements the gate's caller resolver by reading what
// LoadCaller placed in the request context.
func (sm *SessionManager) CurrentCaller(r *http.Request) (*Caller, bool) {
	return CurrentCaller(r)
}

// LoadCaller reads the session cookie, resolves the caller, puts it into
// the request context and re-saves the session so its expiry rolls forward.
// Any failure leaves the request anonymous.
func (sm *SessionManager) LoadCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.log.Debug("session decode failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		c := sm.resolve(r, sess)
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		if err := sess.Save(r, w); err != nil {
			sm.log.Warn("session refresh failed", zap.Error(err))
		}
		next.ServeHTTP(w, WithCaller(r, c))
	})
}

func (sm *SessionManager) resolve(r *http.Request, sess *sessions.Session) *Caller {
	id := getString(sess, callerIDKey)
	if id == "" {
		return nil
	}

	if sm.fetcher == nil {
		role, _ := models.ParseRole(getString(sess, callerRole))
		return &Caller{
			ID:    id,
			Name:  getString(sess, callerName),
			Email: getString(sess, callerEmail),
			Role:  role,
		}
	}

	c, err := sm.fetcher.FetchCaller(r.Context(), id)
	if err != nil {
		sm.log.Warn("caller lookup failed; treating request as anonymous",
			zap.String("caller_id", id), zap.Error(err))
		return nil
	}
	return c
}

// SignIn marks the session authenticated for c and writes the cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, c Caller) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// Stale or foreign cookie; start over with the fresh session gorilla handed back.
		sm.log.Debug("replacing undecodable session", zap.Error(err))
	}
	sm.dropPendingCookie(w)
	sess.Values[isAuthKey] = true
	sess.Values[callerIDKey] = c.ID
	sess.Values[callerName] = c.Name
	sess.Values[callerEmail] = c.Email
	sess.Values[callerRole] = string(c.Role)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sm.log.Warn("session decode failed during sign-out", zap.Error(err))
	}

	// Ensure the deletion-cookie matches the original store settings.
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	sm.dropPendingCookie(w)
	return sess.Save(r, w)
}

// dropPendingCookie removes a session Set-Cookie already queued on w (the
// LoadCaller refresh), so the response carries a single session cookie.
func (sm *SessionManager) dropPendingCookie(w http.ResponseWriter) {
	h := w.Header()
	prefix := sm.name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guards                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a caller in context (set by LoadCaller).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?redirect=...
//   - HTML: 303 redirect to /login?redirect=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentCaller(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyAnonymous(w, r)
	})
}

// RequireRole ensures the caller has one of the allowed roles. Signed-in
// callers with another role are sent to /forbidden.
func (sm *SessionManager) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := CurrentCaller(r)
			if !ok {
				denyAnonymous(w, r)
				return
			}

			if _, has := set[c.Role]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func denyAnonymous(w http.ResponseWriter, r *http.Request) {
	dest := LoginURL(r.URL.Path)

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
