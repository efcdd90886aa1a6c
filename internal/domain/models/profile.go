// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is a row of perfis_usuarios: one per account.
//
// NOTE:
//   - Role is stored as written by the backend; use ParseRole to read it.
//   - PasswordHash is empty for accounts created through the OAuth callback.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"nome" json:"nome"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled
	University   string             `bson:"universidade,omitempty" json:"universidade,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
