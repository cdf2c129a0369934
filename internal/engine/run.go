package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/invoicepost/internal/model"
)

// RowSource supplies the spreadsheet rows for a run.
type RowSource interface {
	Rows() ([]model.Row, error)
}

// Lister supplies the invoices-directory filename snapshot.
type Lister interface {
	List() ([]string, error)
}

// Runner wires one run of the engine: list files once, expand all rows,
// dispatch in order. Collaborator failures (unreadable spreadsheet or
// directory) are fatal and abort before anything is sent.
type Runner struct {
	Source    RowSource
	Lister    Lister
	Transport Transport
	Settings  *model.AppSettings
	Logger    *slog.Logger
}

func (r *Runner) Execute(ctx context.Context, dryRun bool) (*model.Report, error) {
	if err := r.Settings.Validate(dryRun); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	started := time.Now().UTC()

	filenames, err := r.Lister.List()
	if err != nil {
		return nil, err
	}
	rows, err := r.Source.Rows()
	if err != nil {
		return nil, err
	}

	tasks, diags := Plan(rows, filenames, ExpandOptions{
		InvoicesDir: r.Settings.InvoicesDir,
		Extension:   r.Settings.Extension(),
		Subject:     r.Settings.Subject,
		Body:        r.Settings.Body,
	})

	d := NewDispatcher(r.Transport, r.Settings.Delay(), r.Settings.MaxRetries, r.Logger)
	outcomes := d.Run(ctx, tasks, dryRun)

	return &model.Report{
		DryRun:      dryRun,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Diagnostics: diags,
		Outcomes:    outcomes,
	}, nil
}
