package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/db"
	"github.com/Simplici0/paint.works/internal/migrations"
)

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	database := newSeedTestDB(t)
	cfg := Config{
		AdminEmail:    "admin@paint.works",
		AdminPassword: "12345",
	}
	defaults := len(catalog.Default())

	for i := 0; i < 5; i++ {
		stats, err := Run(context.Background(), database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Users != 1 || stats.Paints != defaults {
				t.Fatalf("expected 1 user and %d paints in first run, got %+v", defaults, stats)
			}
			continue
		}
		if stats.Inserts() != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, []any{"admin@paint.works"}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM paints`, nil, defaults)

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "admin@paint.works").Scan(&hash); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected admin hash to match password: %v", err)
	}
}

func TestRunWithoutAdminSeedsOnlyCatalog(t *testing.T) {
	t.Parallel()

	database := newSeedTestDB(t)
	custom := []catalog.Product{{ID: "house", Brand: "Acme", Name: "House", Color: "Cream", PricePerLiter: 9, CoveragePerLiter: 300}}

	stats, err := Run(context.Background(), database, Config{Paints: custom})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Users != 0 || stats.Paints != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
	assertCount(t, database, `SELECT COUNT(*) FROM paints WHERE id = ?`, []any{"house"}, 1)
}

func assertCount(t *testing.T, database *sql.DB, query string, args []any, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
