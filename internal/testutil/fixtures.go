package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/akadox/akadox/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a profile with the given stored role (written
// as-is, so aliases and unknown values can be exercised).
func (f *Fixtures) CreateProfile(ctx context.Context, name, email, role string) models.Profile {
	f.t.Helper()
	return f.insert(ctx, name, email, role, "active", "")
}

// CreateProfileWithPassword inserts an active profile with a bcrypt hash.
func (f *Fixtures) CreateProfileWithPassword(ctx context.Context, name, email, role, password string) models.Profile {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	return f.insert(ctx, name, email, role, "active", string(hash))
}

// CreateDisabledProfile inserts a profile with disabled status.
func (f *Fixtures) CreateDisabledProfile(ctx context.Context, name, email string) models.Profile {
	f.t.Helper()
	return f.insert(ctx, name, email, "student", "disabled", "")
}

func (f *Fixtures) insert(ctx context.Context, name, email, role, status, hash string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: hash,
		Role:         models.Role(role),
		Status:       status,
		University:   "Universidade de Cabo Verde",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("perfis_usuarios").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}
