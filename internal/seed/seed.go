package seed

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Paints seeds the catalog; empty means the embedded default catalog.
	Paints        []catalog.Product
}

// Stats contains seed operation counters.
type Stats struct {
	Users  int
	Paints int
}

// Inserts is the total number of rows written.
func (s Stats) Inserts() int {
	return s.Users + s.Paints
}

// Run executes the startup seed in an idempotent way: rows that already exist
// are left untouched.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if stats.Users, err = seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	paints := cfg.Paints
	if len(paints) == 0 {
		paints = catalog.Default()
	}
	if stats.Paints, err = store.InsertMissingPaints(ctx, tx, paints); err != nil {
		_ = tx.Rollback()
		return Stats{}, fmt.Errorf("seed paints: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string) (int, error) {
	if email == "" || password == "" {
		return 0, nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return 0, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return 0, fmt.Errorf("insert admin user: %w", err)
	}
	return 1, nil
}
