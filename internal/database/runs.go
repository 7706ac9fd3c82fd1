package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createRun = `
INSERT INTO runs (id, company_id, status, scheduled_for)
VALUES ($1, $2, $3, $4)
RETURNING id, company_id, status, scheduled_for, created_at`

// CreateRunParams are the inputs for CreateRun.
type CreateRunParams struct {
	CompanyID    uuid.UUID
	ScheduledFor time.Time
}

// CreateRun inserts a brand-new run in CREATED status. Runs are never
// upserted; every import gets its own.
func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (*Run, error) {
	var r Run
	err := q.db.QueryRow(ctx, createRun, uuid.New(), arg.CompanyID, RunStatusCreated, arg.ScheduledFor).
		Scan(&r.ID, &r.CompanyID, &r.Status, &r.ScheduledFor, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const getRun = `
SELECT id, company_id, status, scheduled_for, created_at
FROM runs
WHERE id = $1`

// GetRun fetches a run by id.
func (q *Queries) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := q.db.QueryRow(ctx, getRun, id).
		Scan(&r.ID, &r.CompanyID, &r.Status, &r.ScheduledFor, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

const createPickEntry = `
INSERT INTO pick_entries (id, run_id, coil_item_id, count, current, par, need, forecast, total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, run_id, coil_item_id, count, current, par, need, forecast, total`

// CreatePickEntryParams are the inputs for CreatePickEntry.
type CreatePickEntryParams struct {
	RunID      uuid.UUID
	CoilItemID uuid.UUID
	Count      float64
	Current    *float64
	Par        *float64
	Need       *float64
	Forecast   *float64
	Total      *float64
}

// CreatePickEntry inserts one pick entry for a run.
func (q *Queries) CreatePickEntry(ctx context.Context, arg CreatePickEntryParams) (*PickEntry, error) {
	var p PickEntry
	err := q.db.QueryRow(ctx, createPickEntry,
		uuid.New(), arg.RunID, arg.CoilItemID, arg.Count,
		arg.Current, arg.Par, arg.Need, arg.Forecast, arg.Total).
		Scan(&p.ID, &p.RunID, &p.CoilItemID, &p.Count,
			&p.Current, &p.Par, &p.Need, &p.Forecast, &p.Total)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const countPickEntriesByRun = `
SELECT COUNT(*) FROM pick_entries WHERE run_id = $1`

// CountPickEntriesByRun returns how many pick entries a run has.
func (q *Queries) CountPickEntriesByRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, countPickEntriesByRun, runID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
