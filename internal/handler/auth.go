package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/cruxstack/oauth-waitlist/internal/crypto"
	"github.com/cruxstack/oauth-waitlist/internal/middleware"
	"github.com/cruxstack/oauth-waitlist/internal/provider"
	"github.com/cruxstack/oauth-waitlist/internal/store"
)

// providerTimeout bounds each outbound provider call. Expiry surfaces as a
// token-exchange or profile-fetch failure; nothing is retried.
const providerTimeout = 10 * time.Second

// Callback redirect error reasons.
const (
	reasonNoCode              = "no_code"
	reasonInvalidState        = "invalid_state"
	reasonTokenExchangeFailed = "token_exchange_failed"
	reasonUserFetchFailed     = "user_fetch_failed"
	reasonAuthFailed          = "auth_failed"
)

// AuthInitiate handles GET /api/auth/initiate.
// It starts an authorization attempt: signed CSRF state, fresh PKCE codes,
// a server-side attempt record, and the attempt id pinned in the session.
func (h *Handlers) AuthInitiate(w http.ResponseWriter, r *http.Request) {
	state, attemptID, err := h.stateService.Issue()
	if err != nil {
		h.logger.Error("failed to issue state", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}

	var codeVerifier, codeChallenge string
	if h.provider.PKCEEnabled() {
		codeVerifier, codeChallenge, err = crypto.GeneratePKCECodes()
		if err != nil {
			h.logger.Error("failed to generate PKCE codes", "error", err)
			h.writeError(w, http.StatusInternalServerError, "Server configuration error")
			return
		}
	}

	if err := h.attemptStore.Store(attemptID, &store.AttemptData{CodeVerifier: codeVerifier}); err != nil {
		h.logger.Error("failed to store attempt", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}

	// Pin the attempt to the initiating browser
	if session := middleware.GetSession(r); session != nil {
		session.Values[middleware.SessionKeyAttemptID] = attemptID
		middleware.SaveSession(r, w)
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"authUrl": h.provider.AuthURL(state, codeChallenge),
	})
}

// AuthCallback handles GET /api/auth/callback.
// Every path terminates in a redirect to the front end; no fault may escape
// to the transport layer.
func (h *Handlers) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, reasonNoCode)
		return
	}

	attemptID, err := h.stateService.Verify(r.URL.Query().Get("state"))
	if err != nil {
		h.logger.Error("state verification failed", "error", err)
		h.redirectError(w, r, reasonInvalidState)
		return
	}

	// The attempt must have been initiated by this browser
	session := middleware.GetSession(r)
	if session == nil {
		h.redirectError(w, r, reasonInvalidState)
		return
	}
	sessionAttemptID, _ := session.Values[middleware.SessionKeyAttemptID].(string)
	if sessionAttemptID != attemptID {
		h.logger.Error("attempt id mismatch", "expected", sessionAttemptID, "got", attemptID)
		h.redirectError(w, r, reasonInvalidState)
		return
	}
	delete(session.Values, middleware.SessionKeyAttemptID)
	middleware.SaveSession(r, w)

	// Single use: a replayed state finds no attempt record
	attempt, err := h.attemptStore.Get(attemptID)
	if err != nil {
		h.logger.Error("failed to load attempt", "error", err)
		h.redirectError(w, r, reasonAuthFailed)
		return
	}
	if attempt == nil {
		h.logger.Error("unknown or expired attempt", "attempt_id", attemptID)
		h.redirectError(w, r, reasonInvalidState)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), providerTimeout)
	defer cancel()

	tokenResp, err := h.provider.ExchangeCode(ctx, code, attempt.CodeVerifier)
	if err != nil {
		var exchangeErr *provider.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			h.logger.Error("token exchange rejected", "status", exchangeErr.StatusCode, "body", exchangeErr.Body)
		} else {
			h.logger.Error("token exchange failed", "error", err)
		}
		h.redirectError(w, r, reasonTokenExchangeFailed)
		return
	}

	user, err := h.provider.FetchUser(ctx, tokenResp.AccessToken)
	if err != nil {
		h.logger.Error("failed to fetch user", "error", err)
		h.redirectError(w, r, reasonUserFetchFailed)
		return
	}

	if err := h.waitlist.Upsert(r.Context(), user.ID, user.Username, user.DisplayName); err != nil {
		h.logger.Error("failed to persist signup", "error", err)
		h.redirectError(w, r, reasonAuthFailed)
		return
	}

	h.logger.Info("user added to waitlist", "username", user.Username)

	params := url.Values{
		"success":     {"true"},
		"username":    {user.Username},
		"displayName": {user.DisplayName},
	}
	http.Redirect(w, r, "/?"+params.Encode(), http.StatusFound)
}

// redirectError terminates the callback with an error reason on the front end.
func (h *Handlers) redirectError(w http.ResponseWriter, r *http.Request, reason string) {
	params := url.Values{"error": {reason}}
	http.Redirect(w, r, "/?"+params.Encode(), http.StatusFound)
}
