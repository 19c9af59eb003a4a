package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	appMiddleware "github.com/cruxstack/oauth-waitlist/internal/middleware"
)

// NewRouter builds the application router. Shared by the server entry point
// and the e2e test harness.
func NewRouter(h *Handlers, sessionStore sessions.Store, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(appMiddleware.Session(sessionStore))

	r.Get("/api/health", h.Health)

	r.Get("/api/auth/initiate", h.AuthInitiate)
	r.Get("/api/auth/callback", h.AuthCallback)

	r.Get("/api/waitlist/count", h.WaitlistCount)
	r.Get("/api/waitlist/all", h.WaitlistAll)

	if h.cfg.WalletEnabled {
		r.Post("/api/wallet/save", h.WalletSave)
	}

	// Front-end fallback
	r.NotFound(h.Static())

	return r
}
