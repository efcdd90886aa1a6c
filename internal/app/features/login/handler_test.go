package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/akadox/akadox/internal/app/features/errors"
	"github.com/akadox/akadox/internal/app/features/login"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/ratelimit"
	"github.com/akadox/akadox/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	handler  *login.Handler
	fixtures *testutil.Fixtures
	sm       *auth.SessionManager
}

func newTestEnv(t *testing.T, maxAttempts int) *testEnv {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "akadox-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	emailLimiter := ratelimit.New(maxAttempts, time.Minute)
	ipLimiter := ratelimit.New(100, time.Minute)
	t.Cleanup(emailLimiter.Close)
	t.Cleanup(ipLimiter.Close)

	h := login.NewHandler(
		profilestore.New(db),
		sm,
		uierrors.NewErrorLogger(logger),
		ratelimit.NewLoginLimiter(ipLimiter, emailLimiter, logger),
		false,
		logger,
	)
	return &testEnv{handler: h, fixtures: testutil.NewFixtures(t, db), sm: sm}
}

func postLogin(h *login.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleLoginPost(rec, req)
	return rec
}

func TestServeLogin_CarriesRedirect(t *testing.T) {
	env := newTestEnv(t, 5)

	req := httptest.NewRequest("GET", "/login?redirect=%2Fupload", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `value="/upload"`) {
		t.Error("form should carry the redirect path")
	}
}

func TestHandleLoginPost_Success(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	p := env.fixtures.CreateProfileWithPassword(ctx, "Ana Lima", "ana@unicv.cv", "aluno", "segredo123")

	rec := postLogin(env.handler, url.Values{
		"email":    {"Ana@UniCV.cv"},
		"password": {"segredo123"},
		"redirect": {"/upload"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/upload" {
		t.Errorf("Location = %q, want /upload", loc)
	}

	// The issued cookie must resolve back to the caller.
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	var got *auth.Caller
	env.sm.LoadCaller(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentCaller(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != p.ID.Hex() || got.Role != "student" {
		t.Errorf("caller from cookie = %+v, want id %s role student", got, p.ID.Hex())
	}
}

func TestHandleLoginPost_DefaultsToDashboard(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateProfileWithPassword(ctx, "Rui", "rui@unicv.cv", "professor", "segredo123")

	tests := []struct {
		name     string
		redirect string
	}{
		{"empty", ""},
		{"absolute url", "https://evil.example/phish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(env.handler, url.Values{
				"email":    {"rui@unicv.cv"},
				"password": {"segredo123"},
				"redirect": {tt.redirect},
			})
			if loc := rec.Header().Get("Location"); loc != "/dashboard" {
				t.Errorf("Location = %q, want /dashboard", loc)
			}
		})
	}
}

func TestHandleLoginPost_Rejections(t *testing.T) {
	env := newTestEnv(t, 50)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateProfileWithPassword(ctx, "Ana", "ana@unicv.cv", "student", "segredo123")
	env.fixtures.CreateDisabledProfile(ctx, "Off", "off@unicv.cv")
	env.fixtures.CreateProfile(ctx, "OAuth Only", "oauth@unicv.cv", "student")

	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"missing fields", "", "", "Indique o email"},
		{"unknown email", "nobody@unicv.cv", "x", "incorretos"},
		{"wrong password", "ana@unicv.cv", "errada", "incorretos"},
		{"disabled", "off@unicv.cv", "x", "desativada"},
		{"no password set", "oauth@unicv.cv", "x", "incorretos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(env.handler, url.Values{"email": {tt.email}, "password": {tt.password}})

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no session cookie should be set")
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateProfileWithPassword(ctx, "Ana", "ana@unicv.cv", "student", "segredo123")

	bad := url.Values{"email": {"ana@unicv.cv"}, "password": {"errada"}}
	postLogin(env.handler, bad)
	postLogin(env.handler, bad)

	rec := postLogin(env.handler, url.Values{"email": {"ana@unicv.cv"}, "password": {"segredo123"}})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}
