// Package importer runs the workbook import pipeline: decode, parse, flatten
// and persist one schedulable run per upload, all-or-nothing.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vendway/routeboard/internal/config"
	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/logging"
	"github.com/vendway/routeboard/internal/workbook"
)

// Service orchestrates workbook imports against the database.
type Service struct {
	pool *pgxpool.Pool
	cfg  *config.Config

	// now is swappable in tests; undated runs are scheduled "now".
	now func() time.Time
}

// NewService creates an import service on the given pool.
func NewService(pool *pgxpool.Pool, cfg *config.Config) *Service {
	return &Service{pool: pool, cfg: cfg, now: time.Now}
}

// ImportRequest is one workbook upload to import.
type ImportRequest struct {
	CompanyID uuid.UUID
	FileName  string
	// Timezone optionally overrides the company/default timezone for run
	// scheduling. Must be a valid IANA identifier when set.
	Timezone string
	Data     io.Reader
}

// RunInfo is the caller-facing view of the persisted run.
type RunInfo struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
	CreatedAt    time.Time `json:"createdAt"`
	PickEntries  int64     `json:"pickEntries"`
}

// ImportSummary reports what an import produced. Runs is 0 when the workbook
// held no location sheets at all (Run is nil in that case) and 1 otherwise.
type ImportSummary struct {
	Runs        int                `json:"runs"`
	Machines    int                `json:"machines"`
	PickEntries int                `json:"pickEntries"`
	Run         *RunInfo           `json:"run,omitempty"`
	Parsed      *workbook.ParsedRun `json:"parsed,omitempty"`
}

// ImportWorkbook runs the full pipeline for one upload.
//
// The timezone is validated before any parsing. All database writes happen in
// a single transaction bounded by Import.TxTimeout; on any failure nothing
// from this import is left behind.
func (s *Service) ImportWorkbook(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	loc, err := s.scheduleLocation(req.Timezone)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "company_id", req.CompanyID, "file", req.FileName)

	wb, err := workbook.Decode(req.Data)
	if err != nil {
		return nil, err
	}

	parsed, err := workbook.Parse(wb)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		logger.Info("workbook has no location sheets, nothing created")
		return &ImportSummary{}, nil
	}
	if len(parsed.Entries) == 0 {
		return nil, ErrNothingToImport
	}

	scheduledFor := s.now().UTC()
	if parsed.RunDate != nil {
		scheduledFor = workbook.RunInstant(*parsed.RunDate, loc)
	}

	logger.Info("workbook parsed",
		"locations", len(parsed.Locations),
		"pick_entries", len(parsed.Entries),
		"scheduled_for", scheduledFor,
	)

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.Import.TxTimeout)
	defer cancel()

	tx, err := s.pool.Begin(txCtx)
	if err != nil {
		return nil, &PersistenceError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(txCtx)

	run, machineCount, err := persistRun(txCtx, database.New(tx), parsed, req.CompanyID, database.CreateRunParams{
		CompanyID:    req.CompanyID,
		ScheduledFor: scheduledFor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, &PersistenceError{Op: "commit", Err: err}
	}

	logger.Info("import committed",
		"run_id", run.ID,
		"machines", machineCount,
		"pick_entries", len(parsed.Entries),
	)

	return &ImportSummary{
		Runs:        1,
		Machines:    machineCount,
		PickEntries: len(parsed.Entries),
		Run: &RunInfo{
			ID:           run.ID,
			Status:       run.Status,
			ScheduledFor: run.ScheduledFor,
			CreatedAt:    run.CreatedAt,
			PickEntries:  int64(len(parsed.Entries)),
		},
		Parsed: parsed,
	}, nil
}

// GetRun fetches a previously imported run with its pick entry count.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*RunInfo, error) {
	q := database.New(s.pool)

	run, err := q.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "get run", Err: err}
	}

	entries, err := q.CountPickEntriesByRun(ctx, run.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "count pick entries", Err: err}
	}

	return &RunInfo{
		ID:           run.ID,
		Status:       run.Status,
		ScheduledFor: run.ScheduledFor,
		CreatedAt:    run.CreatedAt,
		PickEntries:  entries,
	}, nil
}

// Ping verifies database connectivity for health checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// scheduleLocation resolves the effective scheduling timezone: the request
// override first, then the configured default, then none (UTC midnight).
func (s *Service) scheduleLocation(override string) (*time.Location, error) {
	name := override
	if name == "" {
		name = s.cfg.Import.DefaultTimezone
	}
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}
