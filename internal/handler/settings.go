package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/invoicepost/internal/mailer"
	"github.com/invoicepost/internal/model"
)

type settingsStore interface {
	Load(ctx context.Context) (*model.AppSettings, error)
	Save(ctx context.Context, settings *model.AppSettings) error
}

// SettingsHandler serves the settings page and API, including the SMTP
// connection test.
type SettingsHandler struct {
	BaseHandler
	settings  settingsStore
	templates *template.Template
}

func NewSettingsHandler(logger *slog.Logger, settings settingsStore, tmpl *template.Template) *SettingsHandler {
	return &SettingsHandler{BaseHandler: BaseHandler{Logger: logger}, settings: settings, templates: tmpl}
}

// Page renders the settings form.
func (h *SettingsHandler) Page(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.Logger.Error("settings: failed to load", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data := settingsPageData{AppSettings: masked(s), PasswordSet: s.SMTPPass != ""}
	if err := h.templates.ExecuteTemplate(w, "settings.html", data); err != nil {
		h.Logger.Error("settings: template error", "err", err)
	}
}

type settingsPageData struct {
	*model.AppSettings
	PasswordSet bool
}

// Get returns the current settings as JSON with the SMTP password masked.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if err := h.writeJSON(w, http.StatusOK, masked(s), nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// Update saves settings. An empty password keeps the stored one, so the
// form never has to echo the secret back.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := &model.AppSettings{}
	if err := h.readJSON(w, r, s); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if s.SMTPPass == "" {
		current, err := h.settings.Load(r.Context())
		if err != nil {
			h.serverErrorResponse(w, r, err)
			return
		}
		s.SMTPPass = current.SMTPPass
	}

	if err := h.settings.Save(r.Context(), s); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// TestSMTP connects and authenticates against the stored SMTP settings
// without sending anything.
func (h *SettingsHandler) TestSMTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	sender := mailer.New(mailer.NewConfigFromSettings(s))
	if err := sender.Ping(r.Context()); err != nil {
		_ = h.writeJSON(w, http.StatusOK, envelope{"ok": false, "message": err.Error()}, nil)
		return
	}
	_ = h.writeJSON(w, http.StatusOK, envelope{"ok": true, "message": "SMTP connection successful"}, nil)
}

// masked returns a copy with the SMTP password blanked; the secret never
// leaves the server.
func masked(s *model.AppSettings) *model.AppSettings {
	c := *s
	c.SMTPPass = ""
	return &c
}
