package testutil

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// MockTwitterUser represents a mock Twitter user.
type MockTwitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type codeRecord struct {
	user      *MockTwitterUser
	challenge string // PKCE code challenge captured at authorize time
}

// MockTwitterServer is a mock Twitter OAuth 2.0 server for testing. It
// enforces Basic client authentication and, when a code challenge was sent,
// S256 verification of the code verifier.
type MockTwitterServer struct {
	Server *httptest.Server

	mu           sync.RWMutex
	codes        map[string]*codeRecord      // code -> record
	accessTokens map[string]*MockTwitterUser // token -> user
	defaultUser  MockTwitterUser
	failExchange bool
	failUserInfo bool
	nextToken    int
}

// NewMockTwitterServer creates a new mock Twitter server.
func NewMockTwitterServer() *MockTwitterServer {
	m := &MockTwitterServer{
		codes:        make(map[string]*codeRecord),
		accessTokens: make(map[string]*MockTwitterUser),
		defaultUser: MockTwitterUser{
			ID:       "12345",
			Name:     "Test User",
			Username: "testuser",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/i/oauth2/authorize", m.handleAuthorize)
	mux.HandleFunc("/2/oauth2/token", m.handleToken)
	mux.HandleFunc("/2/users/me", m.handleUserInfo)

	m.Server = httptest.NewServer(mux)
	return m
}

// Close shuts down the mock server.
func (m *MockTwitterServer) Close() {
	m.Server.Close()
}

// AuthURL returns the authorization endpoint URL.
func (m *MockTwitterServer) AuthURL() string {
	return m.Server.URL + "/i/oauth2/authorize"
}

// TokenURL returns the token endpoint URL.
func (m *MockTwitterServer) TokenURL() string {
	return m.Server.URL + "/2/oauth2/token"
}

// UserURL returns the user info endpoint URL.
func (m *MockTwitterServer) UserURL() string {
	return m.Server.URL + "/2/users/me"
}

// SetUser sets the user returned for subsequent authorization flows.
func (m *MockTwitterServer) SetUser(user MockTwitterUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultUser = user
}

// FailExchange makes the token endpoint reject all exchanges when set.
func (m *MockTwitterServer) FailExchange(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failExchange = fail
}

// FailUserInfo makes the user endpoint reject all requests when set.
func (m *MockTwitterServer) FailUserInfo(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUserInfo = fail
}

// handleAuthorize stands in for the consent screen: it immediately
// redirects back with a code bound to the current default user.
func (m *MockTwitterServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	state := r.URL.Query().Get("state")

	if redirectURI == "" {
		http.Error(w, "missing redirect_uri", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.nextToken++
	code := "mock-code-" + strconv.Itoa(m.nextToken)
	user := m.defaultUser
	m.codes[code] = &codeRecord{
		user:      &user,
		challenge: r.URL.Query().Get("code_challenge"),
	}
	m.mu.Unlock()

	separator := "?"
	if strings.Contains(redirectURI, "?") {
		separator = "&"
	}
	http.Redirect(w, r, redirectURI+separator+"code="+code+"&state="+state, http.StatusFound)
}

func (m *MockTwitterServer) handleToken(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	failing := m.failExchange
	m.mu.Unlock()

	if failing {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if _, _, ok := r.BasicAuth(); !ok {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	m.mu.Lock()
	record, ok := m.codes[r.FormValue("code")]
	if ok {
		delete(m.codes, r.FormValue("code"))
	}
	m.mu.Unlock()

	if !ok {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	// Verify PKCE when a challenge was presented at authorize time
	if record.challenge != "" {
		hash := sha256.Sum256([]byte(r.FormValue("code_verifier")))
		if base64.RawURLEncoding.EncodeToString(hash[:]) != record.challenge {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
	}

	m.mu.Lock()
	m.nextToken++
	token := "mock-token-" + strconv.Itoa(m.nextToken)
	m.accessTokens[token] = record.user
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   7200,
	})
}

func (m *MockTwitterServer) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	failing := m.failUserInfo
	m.mu.Unlock()

	if failing {
		writeOAuthError(w, http.StatusInternalServerError, "server_error")
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	m.mu.RLock()
	user, ok := m.accessTokens[token]
	m.mu.RUnlock()

	if !ok {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": user})
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
