package metricsstore

import (
	"context"

	profilestore "github.com/akadox/akadox/internal/app/store/profiles"
	"github.com/akadox/akadox/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Backend collections counted on dashboards.
const (
	DocumentsCollection = "documentos"
	CommentsCollection  = "comentarios"
	RatingsCollection   = "avaliacoes"
	FavoritesCollection = "favoritos"
)

// Counts is the set of totals shown on the admin and director dashboards.
type Counts struct {
	Admins     int64
	Directors  int64
	Professors int64
	Students   int64 // includes the generic person role
	Documents  int64
	Comments   int64
	Ratings    int64
	Favorites  int64
}

// FetchDashboardCounts returns the high-level counts used by dashboards.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	countRoles(ctx, db, &out)

	if n, err := db.Collection(DocumentsCollection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Documents = n
	}
	if n, err := db.Collection(CommentsCollection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Comments = n
	}
	if n, err := db.Collection(RatingsCollection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Ratings = n
	}
	if n, err := db.Collection(FavoritesCollection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Favorites = n
	}

	return out
}

// countRoles groups profiles by stored role and folds aliases and casing
// onto the closed set. Unknown roles are not counted.
func countRoles(ctx context.Context, db *mongo.Database, out *Counts) {
	cur, err := db.Collection(profilestore.Collection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$role"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Role string `bson:"_id"`
			N    int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			continue
		}
		role, _ := models.ParseRole(row.Role)
		switch role {
		case models.RoleAdmin:
			out.Admins += row.N
		case models.RoleDirector:
			out.Directors += row.N
		case models.RoleProfessor:
			out.Professors += row.N
		case models.RoleStudent, models.RolePerson:
			out.Students += row.N
		}
	}
}
