// Package service holds application services that sit between the HTTP
// handlers and the leaf packages.
package service

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cruxstack/oauth-waitlist/internal/crypto"
)

// attemptIDLength is the length of the random attempt identifier embedded
// in the state token and used as the attempt-store key.
const attemptIDLength = 32

// StateService issues and verifies CSRF state tokens for OAuth
// authorization attempts. The state is a compact HS256-signed JWT carrying
// a random attempt id and an expiry, so tampering and expiry are rejected
// before any store lookup.
type StateService struct {
	signingKey jwk.Key
	ttl        time.Duration
}

// NewStateService creates a state service signing with the given secret.
func NewStateService(secret string, ttl time.Duration) (*StateService, error) {
	if secret == "" {
		return nil, fmt.Errorf("state: signing secret is required")
	}

	key, err := jwk.FromRaw([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("creating signing key: %w", err)
	}

	return &StateService{signingKey: key, ttl: ttl}, nil
}

// Issue creates a new state token. It returns the serialized token and the
// attempt id embedded in it; the caller stores per-attempt data (the PKCE
// verifier) under the attempt id.
func (s *StateService) Issue() (state, attemptID string, err error) {
	attemptID, err = crypto.GenerateRandomString(attemptIDLength)
	if err != nil {
		return "", "", fmt.Errorf("generating attempt id: %w", err)
	}

	now := time.Now()
	token, err := jwt.NewBuilder().
		JwtID(attemptID).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", "", fmt.Errorf("building state token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", "", fmt.Errorf("signing state token: %w", err)
	}

	return string(signed), attemptID, nil
}

// Verify checks the signature and expiry of a state token and returns the
// attempt id it carries.
func (s *StateService) Verify(state string) (attemptID string, err error) {
	token, err := jwt.Parse([]byte(state), jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("parsing state token: %w", err)
	}

	if token.JwtID() == "" {
		return "", fmt.Errorf("state token missing attempt id")
	}

	return token.JwtID(), nil
}
