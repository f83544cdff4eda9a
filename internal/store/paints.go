package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/paint.works/internal/catalog"
)

// PaintStore reads and writes the paint catalog.
type PaintStore struct {
	db *sql.DB
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// List returns every paint in catalog order.
func (s *PaintStore) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand, name, color, description, price_per_liter, coverage_per_liter, thumbnail_url
		FROM paints
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query paints: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Brand, &p.Name, &p.Color, &p.Description, &p.PricePerLiter, &p.CoveragePerLiter, &p.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("scan paint: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paints: %w", err)
	}

	return products, nil
}

// Get returns one paint.
func (s *PaintStore) Get(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, brand, name, color, description, price_per_liter, coverage_per_liter, thumbnail_url
		FROM paints
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Brand, &p.Name, &p.Color, &p.Description, &p.PricePerLiter, &p.CoveragePerLiter, &p.ThumbnailURL)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, ErrRecordNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("query paint %s: %w", id, err)
	}
	return p, nil
}

// Upsert inserts p or replaces the paint with the same id, keeping its position.
// It reports whether a new row was created.
func (s *PaintStore) Upsert(ctx context.Context, p catalog.Product) (bool, error) {
	return upsertPaint(ctx, s.db, p)
}

func upsertPaint(ctx context.Context, q queryer, p catalog.Product) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM paints WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check paint existence: %w", err)
	}

	if exists {
		if _, err := q.ExecContext(ctx, `
			UPDATE paints
			SET
				brand = ?,
				name = ?,
				color = ?,
				description = ?,
				price_per_liter = ?,
				coverage_per_liter = ?,
				thumbnail_url = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, p.Brand, p.Name, p.Color, p.Description, p.PricePerLiter, p.CoveragePerLiter, p.ThumbnailURL, p.ID); err != nil {
			return false, fmt.Errorf("update paint %s: %w", p.ID, err)
		}
		return false, nil
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO paints (id, brand, name, color, description, price_per_liter, coverage_per_liter, thumbnail_url, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM paints))
	`, p.ID, p.Brand, p.Name, p.Color, p.Description, p.PricePerLiter, p.CoveragePerLiter, p.ThumbnailURL); err != nil {
		return false, fmt.Errorf("insert paint %s: %w", p.ID, err)
	}
	return true, nil
}

// InsertMissing adds the products whose id is not stored yet, in one
// transaction, and returns how many were inserted.
func (s *PaintStore) InsertMissing(ctx context.Context, products []catalog.Product) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin paint transaction: %w", err)
	}

	inserted, err := InsertMissingPaints(ctx, tx, products)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit paint transaction: %w", err)
	}
	return inserted, nil
}

// InsertMissingPaints is InsertMissing inside a caller-owned transaction.
func InsertMissingPaints(ctx context.Context, tx *sql.Tx, products []catalog.Product) (int, error) {
	inserted := 0
	for _, p := range products {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM paints WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("check paint existence: %w", err)
		}
		if exists {
			continue
		}
		if _, err := upsertPaint(ctx, tx, p); err != nil {
			return 0, err
		}
		inserted++
	}
	return inserted, nil
}

// Catalog snapshots the stored paints into a catalog.
func (s *PaintStore) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(products)
}
