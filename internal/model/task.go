package model

import "time"

// Row is one spreadsheet line as supplied by the sheet reader. The raw
// account and email cells may each hold several delimited values.
type Row struct {
	Company     string
	RawAccounts string
	RawEmails   string
}

// SendTask is the unit of work: one matched (account, invoice) pair for one
// company, carrying the fully rendered message. Immutable once built.
type SendTask struct {
	Account    string   `json:"account"`
	Company    string   `json:"company"`
	Recipients []string `json:"recipients"`
	PDFPath    string   `json:"pdfPath"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// Status is the final state of one task.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped" // dry run, no transport call
	StatusFailed  Status = "failed"
)

// SendOutcome records how one task ended. Attempts counts transport calls
// actually made; a skipped task has zero.
type SendOutcome struct {
	Task     SendTask `json:"task"`
	Status   Status   `json:"status"`
	Attempts int      `json:"attempts"`
	Error    string   `json:"error,omitempty"`
}

// Diagnostic is a non-fatal problem found while expanding rows: a malformed
// token, a row with nothing usable, or an account with no (or several)
// matching invoice files.
type Diagnostic struct {
	Company string `json:"company,omitempty"`
	Account string `json:"account,omitempty"`
	Message string `json:"message"`
}

// Report is the durable artifact of one run.
type Report struct {
	ID          string        `json:"id,omitempty"`
	DryRun      bool          `json:"dryRun"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Outcomes    []SendOutcome `json:"outcomes"`
}

// Summary aggregates a report for display.
type Summary struct {
	Processed   int `json:"processed"`
	Sent        int `json:"sent"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Diagnostics int `json:"diagnostics"`
}

func (r *Report) Summary() Summary {
	s := Summary{Processed: len(r.Outcomes), Diagnostics: len(r.Diagnostics)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSent:
			s.Sent++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// RunRecord is a persisted run as listed from the history store. The full
// report is only populated when a single run is fetched.
type RunRecord struct {
	ID         string    `json:"id"`
	DryRun     bool      `json:"dryRun"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Summary    Summary   `json:"summary"`
	Report     *Report   `json:"report,omitempty"`
}
