package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/invoicepost/internal/crypto"
	"github.com/invoicepost/internal/model"
)

// SettingsStore keeps one settings blob, AES-GCM encrypted at rest so the
// SMTP password never hits disk in the clear.
type SettingsStore struct {
	db      *sql.DB
	crypter *crypto.Crypter
}

func NewSettingsStore(db *sql.DB, crypter *crypto.Crypter) *SettingsStore {
	return &SettingsStore{db: db, crypter: crypter}
}

// Load decrypts and returns the current settings. On first use it seeds
// from environment variables and persists the result.
func (s *SettingsStore) Load(ctx context.Context) (*model.AppSettings, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM app_settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := settingsFromEnv()
		if saveErr := s.Save(ctx, defaults); saveErr != nil {
			return nil, saveErr
		}
		return defaults, nil
	} else if err != nil {
		return nil, err
	}

	plaintext, err := s.crypter.Decrypt(data)
	if err != nil {
		return nil, err
	}
	var settings model.AppSettings
	if err := json.Unmarshal(plaintext, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save encrypts and persists settings.
func (s *SettingsStore) Save(ctx context.Context, settings *model.AppSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	ciphertext, err := s.crypter.Encrypt(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, data) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		ciphertext,
	)
	return err
}

func settingsFromEnv() *model.AppSettings {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	delay, err := strconv.ParseFloat(os.Getenv("SEND_DELAY_SECONDS"), 64)
	if err != nil || delay < 0 {
		delay = 2.1
	}
	retries, err := strconv.Atoi(os.Getenv("MAX_RETRIES"))
	if err != nil || retries < 0 {
		retries = 3
	}

	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	subject := os.Getenv("EMAIL_SUBJECT")
	if subject == "" {
		subject = model.DefaultSubject
	}
	body := os.Getenv("EMAIL_BODY")
	if body == "" {
		body = model.DefaultBody
	}

	return &model.AppSettings{
		SpreadsheetPath:  envOr("UI_EXCEL", "data/accounts.xlsx"),
		SheetName:        os.Getenv("UI_SHEET"),
		InvoicesDir:      envOr("UI_INVOICES", "invoices"),
		FileExtension:    envOr("UI_EXT", ".pdf"),
		CompanyColumn:    envInt("COMPANY_COLUMN", model.DefaultCompanyColumn),
		AccountColumn:    envInt("ACCOUNT_COLUMN", model.DefaultAccountColumn),
		EmailsColumn:     envInt("EMAILS_COLUMN", model.DefaultEmailsColumn),
		FromAddress:      from,
		Subject:          subject,
		Body:             body,
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         port,
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASSWORD"),
		SMTPTLS:          envBool("SMTP_USE_TLS", true),
		SendDelaySeconds: delay,
		MaxRetries:       retries,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
