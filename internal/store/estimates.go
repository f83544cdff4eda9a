package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/paint.works/internal/estimate"
)

// Snapshot is an estimate saved for a plan. It is read back as stored, never
// recalculated, so later catalog price changes do not rewrite history.
type Snapshot struct {
	ID         uuid.UUID        `json:"id"`
	PlanID     uuid.UUID        `json:"planId"`
	GrandTotal float64          `json:"grandTotal"`
	Summary    estimate.Summary `json:"summary"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// EstimateStore keeps estimate snapshots.
type EstimateStore struct {
	db *sql.DB
}

func (s *EstimateStore) Save(ctx context.Context, planID uuid.UUID, summary estimate.Summary) (Snapshot, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode summary: %w", err)
	}

	snap := Snapshot{
		ID:         uuid.New(),
		PlanID:     planID,
		GrandTotal: summary.GrandTotal,
		Summary:    summary,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates (id, plan_id, grand_total, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID.String(), planID.String(), snap.GrandTotal, string(summaryJSON), timestamp(snap.CreatedAt)); err != nil {
		return Snapshot{}, fmt.Errorf("insert estimate: %w", err)
	}
	return snap, nil
}

// ListForPlan returns the plan's snapshots, newest first.
func (s *EstimateStore) ListForPlan(ctx context.Context, planID uuid.UUID) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, grand_total, summary_json, created_at
		FROM estimates
		WHERE plan_id = ?
		ORDER BY datetime(created_at) DESC, rowid DESC
	`, planID.String())
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0)
	for rows.Next() {
		var (
			snap        Snapshot
			rawID       string
			summaryJSON string
		)
		if err := rows.Scan(&rawID, &snap.GrandTotal, &summaryJSON, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		if snap.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse estimate id: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &snap.Summary); err != nil {
			return nil, fmt.Errorf("decode estimate %s: %w", rawID, err)
		}
		snap.PlanID = planID
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return snaps, nil
}
