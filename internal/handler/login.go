package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/invoicepost/internal/auth"
	"github.com/invoicepost/internal/middleware"
)

// AuthHandler implements the single-password login gate.
type AuthHandler struct {
	BaseHandler
	passwordHash  string
	sessions      *auth.Sessions
	templates     *template.Template
	secureCookies bool
}

func NewAuthHandler(logger *slog.Logger, passwordHash string, sessions *auth.Sessions, tmpl *template.Template, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		passwordHash:  passwordHash,
		sessions:      sessions,
		templates:     tmpl,
		secureCookies: secureCookies,
	}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.ExecuteTemplate(w, "login.html", nil); err != nil {
		h.Logger.Error("login: template error", "err", err)
	}
}

// Login checks the password and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !auth.Verify(h.passwordHash, r.PostFormValue("password")) {
		h.Logger.Warn("login: wrong password")
		http.Redirect(w, r, "/login?failed=1", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    h.sessions.Create(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.sessions.Revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
