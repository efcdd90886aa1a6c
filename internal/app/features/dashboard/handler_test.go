package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akadox/akadox/internal/app/features/dashboard"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "akadox-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/dashboard", dashboard.Routes(dashboard.NewHandler(db, logger), sm))
	return r
}

func get(router http.Handler, path string, c *testutil.TestCaller) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "text/html")
	if c != nil {
		req = testutil.WithCaller(req, *c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoleDashboards_MatchingRole(t *testing.T) {
	router := newTestRouter(t)

	person := testutil.StudentCaller()
	person.Role = "person"
	unknown := testutil.StudentCaller()
	unknown.Role = ""

	tests := []struct {
		path   string
		caller testutil.TestCaller
		want   string
	}{
		{"/dashboard/admin", testutil.AdminCaller(), "Painel de administração"},
		{"/dashboard/professor", testutil.ProfessorCaller(), "Painel do professor"},
		{"/dashboard/diretor", testutil.DirectorCaller(), "Painel do diretor"},
		{"/dashboard/aluno", testutil.StudentCaller(), "Painel do aluno"},
		{"/dashboard/aluno", person, "Painel do aluno"},
		{"/dashboard/aluno", unknown, "Painel do aluno"},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.caller.Role.String(), func(t *testing.T) {
			rec := get(router, tt.path, &tt.caller)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestRoleDashboards_WrongRoleForbidden(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path   string
		caller testutil.TestCaller
	}{
		{"/dashboard/admin", testutil.StudentCaller()},
		{"/dashboard/professor", testutil.DirectorCaller()},
		{"/dashboard/diretor", testutil.ProfessorCaller()},
		{"/dashboard/aluno", testutil.AdminCaller()},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(router, tt.path, &tt.caller)
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/forbidden" {
				t.Errorf("got %d %q, want 303 to /forbidden", rec.Code, rec.Header().Get("Location"))
			}
		})
	}
}

func TestDashboards_Anonymous(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/dashboard", "/dashboard/admin", "/dashboard/aluno"} {
		rec := get(router, path, nil)
		if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/login?redirect=") {
			t.Errorf("%s: got %d %q, want redirect to login", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestServeDashboard_GenericFallback(t *testing.T) {
	router := newTestRouter(t)

	c := testutil.ProfessorCaller()
	rec := get(router, "/dashboard", &c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "/dashboard/professor") {
		t.Error("fallback page should link to role dashboards")
	}
}
