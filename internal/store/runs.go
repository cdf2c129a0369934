package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invoicepost/internal/model"
)

// RunStore keeps the history of runs, dry and real alike. Summary counters
// are stored as columns for cheap listing; the full report is a JSON blob.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Save assigns the report an ID and persists it. The report's ID field is
// filled in on success.
func (s *RunStore) Save(ctx context.Context, report *model.Report) error {
	report.ID = uuid.NewString()
	sum := report.Summary()

	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, dry_run, started_at, finished_at, processed, sent, skipped, failed, diagnostics, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.DryRun,
		report.StartedAt.Format(time.RFC3339Nano),
		report.FinishedAt.Format(time.RFC3339Nano),
		sum.Processed,
		sum.Sent,
		sum.Skipped,
		sum.Failed,
		sum.Diagnostics,
		blob,
	)
	return err
}

// List returns the most recent runs, newest first, without full reports.
func (s *RunStore) List(ctx context.Context, limit int) ([]model.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dry_run, started_at, finished_at, processed, sent, skipped, failed, diagnostics
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		var started, finished string
		if err := rows.Scan(
			&rec.ID, &rec.DryRun, &started, &finished,
			&rec.Summary.Processed, &rec.Summary.Sent, &rec.Summary.Skipped,
			&rec.Summary.Failed, &rec.Summary.Diagnostics,
		); err != nil {
			return nil, err
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one run with its full report.
func (s *RunStore) Get(ctx context.Context, id string) (*model.RunRecord, error) {
	var rec model.RunRecord
	var started, finished string
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dry_run, started_at, finished_at, processed, sent, skipped, failed, diagnostics, report
		FROM runs WHERE id = ?`, id).Scan(
		&rec.ID, &rec.DryRun, &started, &finished,
		&rec.Summary.Processed, &rec.Summary.Sent, &rec.Summary.Skipped,
		&rec.Summary.Failed, &rec.Summary.Diagnostics,
		&blob,
	)
	if err != nil {
		return nil, err
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)

	var report model.Report
	if err := json.Unmarshal(blob, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	rec.Report = &report
	return &rec, nil
}
