package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/paint.works/internal/floorplan"
)

// Plan is a saved floor plan.
type Plan struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Layout    floorplan.Layout `json:"layout"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// PlanListItem is a plan without its layout.
type PlanListItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlanStore saves floor plans as JSON documents.
type PlanStore struct {
	db *sql.DB
}

func (s *PlanStore) Create(ctx context.Context, name string, layout floorplan.Layout) (Plan, error) {
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return Plan{}, fmt.Errorf("encode layout: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	plan := Plan{ID: uuid.New(), Name: name, Layout: layout, CreatedAt: now, UpdatedAt: now}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, layout_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, plan.ID.String(), plan.Name, string(layoutJSON), timestamp(now), timestamp(now)); err != nil {
		return Plan{}, fmt.Errorf("insert plan: %w", err)
	}
	return plan, nil
}

func (s *PlanStore) Get(ctx context.Context, id uuid.UUID) (Plan, error) {
	var (
		plan       Plan
		rawID      string
		layoutJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, layout_json, created_at, updated_at
		FROM plans
		WHERE id = ?
	`, id.String()).Scan(&rawID, &plan.Name, &layoutJSON, &plan.CreatedAt, &plan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrRecordNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query plan %s: %w", id, err)
	}

	if plan.ID, err = uuid.Parse(rawID); err != nil {
		return Plan{}, fmt.Errorf("parse plan id: %w", err)
	}
	if err := json.Unmarshal([]byte(layoutJSON), &plan.Layout); err != nil {
		return Plan{}, fmt.Errorf("decode layout of plan %s: %w", id, err)
	}
	return plan, nil
}

func (s *PlanStore) Update(ctx context.Context, id uuid.UUID, name string, layout floorplan.Layout) (Plan, error) {
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return Plan{}, fmt.Errorf("encode layout: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE plans
		SET
			name = ?,
			layout_json = ?,
			updated_at = ?
		WHERE id = ?
	`, name, string(layoutJSON), timestamp(time.Now()), id.String())
	if err != nil {
		return Plan{}, fmt.Errorf("update plan %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Plan{}, fmt.Errorf("update plan %s: %w", id, err)
	}
	if affected == 0 {
		return Plan{}, ErrRecordNotFound
	}
	return s.Get(ctx, id)
}

// List returns plans newest first. A non-empty query filters by name.
func (s *PlanStore) List(ctx context.Context, query string) ([]PlanListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, updated_at
		FROM plans
		WHERE (? = '' OR name LIKE ?)
		ORDER BY datetime(updated_at) DESC, name
	`, query, search)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := make([]PlanListItem, 0)
	for rows.Next() {
		var (
			item  PlanListItem
			rawID string
		)
		if err := rows.Scan(&rawID, &item.Name, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if item.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse plan id: %w", err)
		}
		plans = append(plans, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}
