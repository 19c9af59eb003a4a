// Command mock-provider runs a standalone Twitter-shaped OAuth 2.0 provider
// for local development. It auto-approves every authorization request and
// returns a configurable mock user.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
)

type mockUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type mockProvider struct {
	mu     sync.Mutex
	codes  map[string]*mockUser // code -> user
	tokens map[string]*mockUser // access token -> user
	user   mockUser
	logger *slog.Logger
}

func main() {
	port := flag.Int("port", 4000, "listen port")
	userID := flag.String("user-id", "100001", "mock user id")
	username := flag.String("username", "mockuser", "mock username")
	name := flag.String("name", "Mock User", "mock display name")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	m := &mockProvider{
		codes:  make(map[string]*mockUser),
		tokens: make(map[string]*mockUser),
		user:   mockUser{ID: *userID, Name: *name, Username: *username},
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/i/oauth2/authorize", m.handleAuthorize)
	mux.HandleFunc("/2/oauth2/token", m.handleToken)
	mux.HandleFunc("/2/users/me", m.handleUser)

	logger.Info("starting mock provider", "port", *port, "username", *username)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// handleAuthorize redirects straight back with a fresh code, standing in
// for the provider's consent screen.
func (m *mockProvider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	state := r.URL.Query().Get("state")

	if redirectURI == "" {
		http.Error(w, "missing redirect_uri", http.StatusBadRequest)
		return
	}

	code := randomToken()
	m.mu.Lock()
	user := m.user
	m.codes[code] = &user
	m.mu.Unlock()

	separator := "?"
	if strings.Contains(redirectURI, "?") {
		separator = "&"
	}
	location := fmt.Sprintf("%s%scode=%s&state=%s", redirectURI, separator, code, state)
	http.Redirect(w, r, location, http.StatusFound)
}

func (m *mockProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := r.BasicAuth(); !ok {
		writeJSONError(w, http.StatusUnauthorized, "invalid_client")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.FormValue("grant_type") != "authorization_code" {
		writeJSONError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	m.mu.Lock()
	user, ok := m.codes[r.FormValue("code")]
	if ok {
		delete(m.codes, r.FormValue("code"))
	}
	m.mu.Unlock()

	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	token := randomToken()
	m.mu.Lock()
	m.tokens[token] = user
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   7200,
		"scope":        "tweet.read users.read",
	})
}

func (m *mockProvider) handleUser(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")

	m.mu.Lock()
	user, ok := m.tokens[token]
	m.mu.Unlock()

	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": user})
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}

func randomToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
