package profilestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akadox/akadox/internal/app/system/normalize"
	"github.com/akadox/akadox/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the backend table holding one profile per account.
const Collection = "perfis_usuarios"

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

var (
	// ErrNotFound is returned when no profile matches.
	ErrNotFound = errors.New("profile not found")
	// ErrDuplicateEmail is returned when attempting to create a profile with an email that already exists.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"director"|"professor"|"student"|"person"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errEmailNeeded    = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// EnsureIndexes creates the unique case-insensitive email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email_ci"),
	})
	if err != nil {
		return fmt.Errorf("create %s email index: %w", Collection, err)
	}
	return nil
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"email_ci": normalize.EmailCI(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.Email = normalize.Email(p.Email)
	p.EmailCI = normalize.EmailCI(p.Email)
	p.Status = normalize.Status(p.Status)
	if p.Status == "" {
		p.Status = StatusActive
	}

	if p.Email == "" {
		return models.Profile{}, errEmailNeeded
	}

	role := models.Role(normalize.Role(string(p.Role)))
	if role == "" {
		return models.Profile{}, errBadRole
	}
	p.Role = role

	if p.Status != StatusActive && p.Status != StatusDisabled {
		return models.Profile{}, errBadStatus
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CallerRole returns the caller's role. Values outside the closed set come
// back as the empty Role with no error; callers treat that as unknown.
func (s *Store) CallerRole(ctx context.Context, callerID string) (models.Role, error) {
	oid, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return "", fmt.Errorf("caller id %q: %w", callerID, err)
	}

	var doc struct {
		Role string `bson:"role"`
	}
	proj := options.FindOne().SetProjection(bson.M{"role": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", err
	}

	role, _ := models.ParseRole(doc.Role)
	return role, nil
}
