package metricsstore_test

import (
	"testing"

	metricsstore "github.com/akadox/akadox/internal/app/store/metrics"
	"github.com/akadox/akadox/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected zero counts, got %+v", counts)
	}
}

func TestFetchDashboardCounts_FoldsRoleSpellings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	fx.CreateProfile(ctx, "A", "a@unicv.cv", "admin")
	fx.CreateProfile(ctx, "D1", "d1@unicv.cv", "director")
	fx.CreateProfile(ctx, "D2", "d2@unicv.cv", "Diretor")
	fx.CreateProfile(ctx, "P", "p@unicv.cv", "professor")
	fx.CreateProfile(ctx, "S1", "s1@unicv.cv", "aluno")
	fx.CreateProfile(ctx, "S2", "s2@unicv.cv", "estudante")
	fx.CreateProfile(ctx, "S3", "s3@unicv.cv", "pessoa")
	fx.CreateProfile(ctx, "X", "x@unicv.cv", "librarian")

	for i := 0; i < 3; i++ {
		if _, err := db.Collection(metricsstore.DocumentsCollection).InsertOne(ctx, bson.M{"titulo": i}); err != nil {
			t.Fatalf("insert document: %v", err)
		}
	}
	if _, err := db.Collection(metricsstore.FavoritesCollection).InsertOne(ctx, bson.M{"documento": 1}); err != nil {
		t.Fatalf("insert favorite: %v", err)
	}

	got := metricsstore.FetchDashboardCounts(ctx, db)
	want := metricsstore.Counts{
		Admins:     1,
		Directors:  2,
		Professors: 1,
		Students:   3,
		Documents:  3,
		Favorites:  1,
	}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}
