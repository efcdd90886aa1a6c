package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestCaller represents caller data for testing HTTP handlers.
type TestCaller struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// AdminCaller returns a TestCaller with admin role.
func AdminCaller() TestCaller {
	return TestCaller{ID: primitive.NewObjectID().Hex(), Name: "Test Admin", Email: "admin@test.cv", Role: models.RoleAdmin}
}

// DirectorCaller returns a TestCaller with director role.
func DirectorCaller() TestCaller {
	return TestCaller{ID: primitive.NewObjectID().Hex(), Name: "Test Director", Email: "diretor@test.cv", Role: models.RoleDirector}
}

// ProfessorCaller returns a TestCaller with professor role.
func ProfessorCaller() TestCaller {
	return TestCaller{ID: primitive.NewObjectID().Hex(), Name: "Test Professor", Email: "professor@test.cv", Role: models.RoleProfessor}
}

// StudentCaller returns a TestCaller with student role.
func StudentCaller() TestCaller {
	return TestCaller{ID: primitive.NewObjectID().Hex(), Name: "Test Student", Email: "aluno@test.cv", Role: models.RoleStudent}
}

// WithCaller adds a caller to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the caller directly.
func WithCaller(r *http.Request, c TestCaller) *http.Request {
	return auth.WithCaller(r, &auth.Caller{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
