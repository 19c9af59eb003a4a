// Package handler implements the HTTP surface: the OAuth callback
// orchestration, the waitlist read endpoints, and the wallet attach flow.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cruxstack/oauth-waitlist/internal/config"
	"github.com/cruxstack/oauth-waitlist/internal/provider"
	"github.com/cruxstack/oauth-waitlist/internal/service"
	"github.com/cruxstack/oauth-waitlist/internal/store"
	"github.com/cruxstack/oauth-waitlist/internal/waitlist"
)

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	cfg          *config.Config
	provider     provider.Provider
	stateService *service.StateService
	attemptStore store.AttemptStore
	waitlist     waitlist.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	cfg *config.Config,
	p provider.Provider,
	stateService *service.StateService,
	attemptStore store.AttemptStore,
	waitlistStore waitlist.Store,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		cfg:          cfg,
		provider:     p,
		stateService: stateService,
		attemptStore: attemptStore,
		waitlist:     waitlistStore,
		logger:       logger,
	}
}

// writeJSON writes v as a JSON response with the given status.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a conservative JSON error message. Internal detail is
// logged server-side only, never sent to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
