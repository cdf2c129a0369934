package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoicepost/internal/engine"
	"github.com/invoicepost/internal/invoice"
	"github.com/invoicepost/internal/mailer"
	"github.com/invoicepost/internal/model"
	"github.com/invoicepost/internal/sheet"
)

type runStore interface {
	Save(ctx context.Context, report *model.Report) error
	List(ctx context.Context, limit int) ([]model.RunRecord, error)
	Get(ctx context.Context, id string) (*model.RunRecord, error)
}

// RunHandler starts engine runs from the UI and serves run history.
type RunHandler struct {
	BaseHandler
	settings  settingsStore
	runs      runStore
	templates *template.Template
}

func NewRunHandler(logger *slog.Logger, settings settingsStore, runs runStore, tmpl *template.Template) *RunHandler {
	return &RunHandler{BaseHandler: BaseHandler{Logger: logger}, settings: settings, runs: runs, templates: tmpl}
}

// Start executes one run synchronously. The engine is sequential and rate
// limited, so a large batch holds the request open; the UI labels the
// button accordingly.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DryRun bool `json:"dryRun"`
	}
	if err := h.readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if err := s.Validate(input.DryRun); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	runner := &engine.Runner{
		Source: sheet.Source{
			Path:  s.SpreadsheetPath,
			Sheet: s.SheetName,
			Columns: sheet.Columns{
				Company: s.CompanyColumn,
				Account: s.AccountColumn,
				Emails:  s.EmailsColumn,
			},
		},
		Lister:    invoice.DirLister{Dir: s.InvoicesDir},
		Transport: mailer.New(mailer.NewConfigFromSettings(s)),
		Settings:  s,
		Logger:    h.Logger,
	}

	report, err := runner.Execute(r.Context(), input.DryRun)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.runs.Save(r.Context(), report); err != nil {
		// The run itself finished; losing history is worth a warning,
		// not a failed response.
		h.Logger.Error("run: failed to persist report", "err", err)
	}

	if err := h.writeJSON(w, http.StatusOK, report, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// HistoryPage renders the run history.
func (h *RunHandler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	records, err := h.runs.List(r.Context(), 50)
	if err != nil {
		h.Logger.Error("runs: failed to list", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := h.templates.ExecuteTemplate(w, "runs.html", records); err != nil {
		h.Logger.Error("runs: template error", "err", err)
	}
}

// List returns recent runs as JSON.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.runs.List(r.Context(), 50)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if err := h.writeJSON(w, http.StatusOK, records, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// Get returns one run with its full report.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, r, http.StatusNotFound, "run not found")
		return
	}
	if err := h.writeJSON(w, http.StatusOK, rec, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
