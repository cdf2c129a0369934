package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/invoicepost/internal/handler"
	"github.com/invoicepost/internal/middleware"
	"github.com/invoicepost/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS))))

	// Health check
	r.Get("/api/health", handler.Health(app.db))

	// Login gate (public endpoints)
	authHandler := handler.NewAuthHandler(app.logger, app.config.AdminPasswordHash, app.sessions, web.Templates, app.config.SecureCookies)
	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.Login)

	// Everything else requires a session when a password is configured.
	r.Group(func(r chi.Router) {
		if app.config.AdminPasswordHash != "" {
			r.Use(middleware.RequireSession(app.sessions))
		}

		r.Post("/logout", authHandler.Logout)

		settingsHandler := handler.NewSettingsHandler(app.logger, app.settingsStore, web.Templates)
		r.Get("/", settingsHandler.Page)
		r.Get("/api/settings", settingsHandler.Get)
		r.Put("/api/settings", settingsHandler.Update)
		r.Post("/api/settings/test-smtp", settingsHandler.TestSMTP)

		runHandler := handler.NewRunHandler(app.logger, app.settingsStore, app.runStore, web.Templates)
		r.Get("/runs", runHandler.HistoryPage)
		r.Post("/api/run", runHandler.Start)
		r.Get("/api/runs", runHandler.List)
		r.Get("/api/runs/{id}", runHandler.Get)
	})

	return r
}
