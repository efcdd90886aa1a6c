package profilestore

import (
	"context"
	"errors"

	"github.com/akadox/akadox/internal/app/system/auth"
	"github.com/akadox/akadox/internal/app/system/normalize"
	"github.com/akadox/akadox/internal/app/system/timeouts"
	"github.com/akadox/akadox/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.CallerFetcher over perfis_usuarios.
type Fetcher struct {
	profiles *mongo.Collection
}

// NewFetcher creates a CallerFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{profiles: db.Collection(Collection)}
}

// FetchCaller returns nil with no error when the id is malformed, the
// profile is gone, or it is disabled. Backend failures are returned.
func (f *Fetcher) FetchCaller(ctx context.Context, callerID string) (*auth.Caller, error) {
	oid, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var p models.Profile
	proj := options.FindOne().SetProjection(bson.M{
		"_id":    1,
		"nome":   1,
		"email":  1,
		"role":   1,
		"status": 1,
	})
	if err := f.profiles.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	if normalize.Status(p.Status) == StatusDisabled {
		return nil, nil
	}

	role, _ := models.ParseRole(string(p.Role))
	return &auth.Caller{
		ID:    p.ID.Hex(),
		Name:  p.Name,
		Email: p.Email,
		Role:  role,
	}, nil
}
