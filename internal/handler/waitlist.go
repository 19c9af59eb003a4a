package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cruxstack/oauth-waitlist/internal/waitlist"
)

// WaitlistCount handles GET /api/waitlist/count.
func (h *Handlers) WaitlistCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.waitlist.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count waitlist", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to get count")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// WaitlistAll handles GET /api/waitlist/all.
func (h *Handlers) WaitlistAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.waitlist.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list waitlist", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to get waitlist")
		return
	}

	if entries == nil {
		entries = []waitlist.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"users": entries})
}

// walletSaveRequest is the POST /api/wallet/save body. The twitter_username
// field is a legacy alias for username kept for the original front end.
type walletSaveRequest struct {
	Username      string `json:"username"`
	TwitterAlias  string `json:"twitter_username"`
	WalletAddress string `json:"wallet_address"`
}

// WalletSave handles POST /api/wallet/save.
// Input is validated before any store access; an unknown username is
// reported as 404 rather than silently succeeding.
func (h *Handlers) WalletSave(w http.ResponseWriter, r *http.Request) {
	var req walletSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := req.Username
	if username == "" {
		username = req.TwitterAlias
	}

	if username == "" || req.WalletAddress == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if !waitlist.ValidWalletAddress(req.WalletAddress) {
		h.writeError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	affected, err := h.waitlist.UpdateWallet(r.Context(), username, req.WalletAddress)
	if err != nil {
		h.logger.Error("failed to save wallet", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save wallet address")
		return
	}

	if affected == 0 {
		h.writeError(w, http.StatusNotFound, "Username not on waitlist")
		return
	}

	h.logger.Info("wallet saved", "username", username)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
