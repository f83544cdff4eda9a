// Package store persists the paint catalog, saved floor plans and estimate
// snapshots in SQLite.
package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrRecordNotFound is returned when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")

// Store groups the repositories sharing one database handle.
type Store struct {
	db        *sql.DB
	paints    *PaintStore
	plans     *PlanStore
	estimates *EstimateStore
}

func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		paints:    &PaintStore{db: db},
		plans:     &PlanStore{db: db},
		estimates: &EstimateStore{db: db},
	}
}

func (s *Store) Paints() *PaintStore {
	return s.paints
}

func (s *Store) Plans() *PlanStore {
	return s.plans
}

func (s *Store) Estimates() *EstimateStore {
	return s.estimates
}

// DB exposes the handle for seeding and migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// timestamp formats t the way SQLite's CURRENT_TIMESTAMP does, so datetime()
// ordering works on every stored row.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}
