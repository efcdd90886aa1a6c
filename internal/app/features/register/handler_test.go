package register_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/akadox/akadox/internal/app/features/errors"
	"github.com/akadox/akadox/internal/app/features/register"
	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/domain/models"
	"github.com/akadox/akadox/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*register.Handler, *mongo.Database) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := profilestore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "akadox-test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return register.NewHandler(store, sm, uierrors.NewErrorLogger(logger), logger), db
}

func post(h *register.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleRegisterPost(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"name":       {"  Maria <b>Tavares</b> "},
		"email":      {"Maria@UniCV.cv"},
		"university": {"Universidade de Cabo Verde"},
		"password":   {"segredo123"},
		"confirm":    {"segredo123"},
	}
}

func TestHandleRegisterPost_CreatesStudent(t *testing.T) {
	h, db := newTestHandler(t)

	rec := post(h, validForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	p, err := profilestore.New(db).GetByEmail(ctx, "maria@unicv.cv")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if p.Name != "Maria Tavares" {
		t.Errorf("Name = %q, want markup stripped", p.Name)
	}
	if p.Role != models.RoleStudent {
		t.Errorf("Role = %q, want student", p.Role)
	}
	if p.PasswordHash == "" || p.PasswordHash == "segredo123" {
		t.Error("password should be stored hashed")
	}
}

func TestHandleRegisterPost_Duplicate(t *testing.T) {
	h, _ := newTestHandler(t)

	post(h, validForm())
	rec := post(h, validForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Já existe uma conta") {
		t.Error("expected duplicate email message")
	}
}

func TestHandleRegisterPost_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{"missing name", func(f url.Values) { f.Set("name", "<i></i>") }, "Indique o nome"},
		{"short password", func(f url.Values) { f.Set("password", "curta"); f.Set("confirm", "curta") }, "pelo menos 8"},
		{"mismatch", func(f url.Values) { f.Set("confirm", "outra-coisa") }, "não coincidem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)
			rec := post(h, form)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}
