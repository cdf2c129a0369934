package model

import (
	"fmt"
	"strings"
	"time"
)

// Default column positions for the standard accounts sheet: company name in
// column A, account numbers in column B, recipient emails in column G.
const (
	DefaultCompanyColumn = 0
	DefaultAccountColumn = 1
	DefaultEmailsColumn  = 6
)

const (
	DefaultSubject = "Your Invoice"
	DefaultBody    = "Hello %COMPANY%,\n\nHere is the invoice for account %ACCOUNT%.\n\nThank you."
)

type AppSettings struct {
	// Input files
	SpreadsheetPath string `json:"spreadsheetPath"`
	SheetName       string `json:"sheetName"`
	InvoicesDir     string `json:"invoicesDir"`
	FileExtension   string `json:"fileExtension"`

	// Zero-based spreadsheet column indexes
	CompanyColumn int `json:"companyColumn"`
	AccountColumn int `json:"accountColumn"`
	EmailsColumn  int `json:"emailsColumn"`

	// Message
	FromAddress string `json:"fromAddress"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`

	// SMTP server
	SMTPHost string `json:"smtpHost"`
	SMTPPort int    `json:"smtpPort"`
	SMTPUser string `json:"smtpUser"`
	SMTPPass string `json:"smtpPass"`
	SMTPTLS  bool   `json:"smtpTLS"`

	// Rate limiting
	SendDelaySeconds float64 `json:"sendDelaySeconds"`
	MaxRetries       int     `json:"maxRetries"`
}

// Delay returns the configured inter-send delay. The same interval spaces
// retries of a failing task.
func (s *AppSettings) Delay() time.Duration {
	return time.Duration(s.SendDelaySeconds * float64(time.Second))
}

// Extension returns the invoice file extension to match, defaulting to .pdf.
func (s *AppSettings) Extension() string {
	if s.FileExtension == "" {
		return ".pdf"
	}
	return s.FileExtension
}

// Validate reports the first fatal configuration problem for a run, or nil.
// SMTP settings are only required for a real run; a dry run never touches
// the transport.
func (s *AppSettings) Validate(dryRun bool) error {
	if strings.TrimSpace(s.SpreadsheetPath) == "" {
		return fmt.Errorf("spreadsheet path is required")
	}
	if strings.TrimSpace(s.InvoicesDir) == "" {
		return fmt.Errorf("invoices directory is required")
	}
	if s.CompanyColumn < 0 || s.AccountColumn < 0 || s.EmailsColumn < 0 {
		return fmt.Errorf("column indexes must not be negative")
	}
	if s.SendDelaySeconds < 0 {
		return fmt.Errorf("send delay must not be negative")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if dryRun {
		return nil
	}
	if strings.TrimSpace(s.SMTPHost) == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if s.SMTPPort <= 0 || s.SMTPPort > 65535 {
		return fmt.Errorf("SMTP port %d is out of range", s.SMTPPort)
	}
	if strings.TrimSpace(s.FromAddress) == "" {
		return fmt.Errorf("from address is required")
	}
	return nil
}
