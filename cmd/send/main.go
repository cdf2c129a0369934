// Command send dispatches invoices from the command line without the web UI
// or database. Configuration comes from flags with .env fallbacks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/invoicepost/internal/engine"
	"github.com/invoicepost/internal/invoice"
	"github.com/invoicepost/internal/mailer"
	"github.com/invoicepost/internal/model"
	"github.com/invoicepost/internal/sheet"
)

func main() {
	_ = godotenv.Load()

	s := &model.AppSettings{}
	var (
		dryRun  bool
		verbose bool
	)

	flag.StringVar(&s.SpreadsheetPath, "excel", os.Getenv("UI_EXCEL"), "Path to the accounts spreadsheet (.xlsx or .csv)")
	flag.StringVar(&s.SheetName, "sheet", os.Getenv("UI_SHEET"), "Sheet name (default: first sheet)")
	flag.StringVar(&s.InvoicesDir, "invoices", os.Getenv("UI_INVOICES"), "Directory holding the invoice files")
	flag.StringVar(&s.FileExtension, "ext", envOr("UI_EXT", ".pdf"), "Invoice file extension")
	flag.IntVar(&s.CompanyColumn, "company-column", envInt("COMPANY_COLUMN", model.DefaultCompanyColumn), "Zero-based company column")
	flag.IntVar(&s.AccountColumn, "account-column", envInt("ACCOUNT_COLUMN", model.DefaultAccountColumn), "Zero-based accounts column")
	flag.IntVar(&s.EmailsColumn, "emails-column", envInt("EMAILS_COLUMN", model.DefaultEmailsColumn), "Zero-based emails column")
	flag.StringVar(&s.FromAddress, "from", envOr("EMAIL_FROM", os.Getenv("SMTP_USER")), "From address")
	flag.StringVar(&s.Subject, "subject", envOr("EMAIL_SUBJECT", model.DefaultSubject), "Subject template")
	flag.StringVar(&s.Body, "body", envOr("EMAIL_BODY", model.DefaultBody), "Body template")
	flag.StringVar(&s.SMTPHost, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host")
	flag.IntVar(&s.SMTPPort, "smtp-port", envInt("SMTP_PORT", 587), "SMTP port")
	flag.StringVar(&s.SMTPUser, "smtp-user", os.Getenv("SMTP_USER"), "SMTP user (empty skips authentication)")
	flag.StringVar(&s.SMTPPass, "smtp-pass", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.BoolVar(&s.SMTPTLS, "smtp-tls", envBool("SMTP_USE_TLS", true), "Use STARTTLS")
	flag.Float64Var(&s.SendDelaySeconds, "delay", envFloat("SEND_DELAY_SECONDS", 2.1), "Delay between emails in seconds")
	flag.IntVar(&s.MaxRetries, "max-retries", envInt("MAX_RETRIES", 3), "Retries per email after the first attempt")
	flag.BoolVar(&dryRun, "dry-run", false, "Plan and report without sending anything")
	flag.BoolVar(&verbose, "verbose", false, "Debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, s, dryRun, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *model.AppSettings, dryRun bool, logger *slog.Logger) error {
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
		Logger:    logger,
	}

	report, err := runner.Execute(ctx, dryRun)
	if err != nil {
		return err
	}

	for _, d := range report.Diagnostics {
		logger.Warn("row problem", "company", d.Company, "account", d.Account, "reason", d.Message)
	}
	for _, o := range report.Outcomes {
		switch o.Status {
		case model.StatusFailed:
			logger.Error("send failed", "account", o.Task.Account, "company", o.Task.Company, "attempts", o.Attempts, "error", o.Error)
		default:
			logger.Info(string(o.Status), "account", o.Task.Account, "company", o.Task.Company, "recipients", o.Task.Recipients, "attempts", o.Attempts)
		}
	}

	sum := report.Summary()
	fmt.Printf("processed %d, sent %d, skipped %d, failed %d, diagnostics %d\n",
		sum.Processed, sum.Sent, sum.Skipped, sum.Failed, sum.Diagnostics)

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d emails failed", sum.Failed, sum.Processed)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return v == "true" || v == "1"
	}
	return fallback
}
