// Package provider implements the OAuth 2.0 identity-provider client used
// to authenticate waitlist signups.
package provider

import (
	"context"
	"fmt"
)

// UserData holds normalized profile information from the provider.
type UserData struct {
	ID          string `json:"id"`           // Provider-issued identity id, the waitlist natural key
	Username    string `json:"username"`     // Handle/login
	DisplayName string `json:"display_name"` // Falls back to Username when the provider omits it
}

// TokenResponse holds the tokens returned from the provider's token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Config holds the configuration for an OAuth provider.
type Config struct {
	ClientID     string   // OAuth client ID
	ClientSecret string   // OAuth client secret
	CallbackURL  string   // OAuth callback URL
	AuthURL      string   // Authorization endpoint (optional, uses default if empty)
	TokenURL     string   // Token endpoint (optional, uses default if empty)
	UserURL      string   // User info endpoint (optional, uses default if empty)
	Scopes       []string // OAuth scopes (optional, uses default if empty)
	PKCE         bool     // Whether to send PKCE parameters
}

// Provider defines the client contract for an OAuth 2.0 identity provider.
// Implementations are stateless; the callback orchestrator threads data
// between the calls.
type Provider interface {
	// AuthURL returns the full authorization URL with all required parameters.
	// state: CSRF protection token
	// codeChallenge: PKCE code challenge (S256), ignored when PKCE is disabled
	AuthURL(state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code for tokens.
	// Non-2xx provider responses are returned as *TokenExchangeError.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error)

	// FetchUser fetches profile information using the access token.
	// Non-2xx provider responses are returned as *ProfileFetchError.
	FetchUser(ctx context.Context, accessToken string) (*UserData, error)

	// PKCEEnabled reports whether the provider sends PKCE parameters.
	PKCEEnabled() bool
}

// TokenExchangeError is returned when the provider rejects the code exchange.
// Body carries the provider's raw error response for server-side diagnostics;
// it must never be forwarded to the client.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ProfileFetchError is returned when the provider rejects the profile fetch.
type ProfileFetchError struct {
	StatusCode int
	Body       string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("user endpoint returned %d: %s", e.StatusCode, e.Body)
}
