package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"time"

	"github.com/cruxstack/oauth-waitlist/internal/config"
	"github.com/cruxstack/oauth-waitlist/internal/handler"
	appMiddleware "github.com/cruxstack/oauth-waitlist/internal/middleware"
	"github.com/cruxstack/oauth-waitlist/internal/provider"
	"github.com/cruxstack/oauth-waitlist/internal/service"
	"github.com/cruxstack/oauth-waitlist/internal/store"
	"github.com/cruxstack/oauth-waitlist/internal/waitlist"
)

// TestServer is an in-process application instance backed by memory stores
// and a mock Twitter server.
type TestServer struct {
	Server      *httptest.Server
	URL         string
	Config      *config.Config
	MockTwitter *MockTwitterServer
	Waitlist    *waitlist.MemoryStore

	attemptStore *store.MemoryAttemptStore
}

// TestServerConfig holds configuration for creating a test server.
type TestServerConfig struct {
	// DisablePKCE turns off PKCE parameters for the provider.
	DisablePKCE bool

	// DisableWallet leaves the wallet endpoint unregistered.
	DisableWallet bool

	// StateTTL overrides the state token lifetime.
	StateTTL time.Duration
}

// NewTestServer creates and starts a new test server.
func NewTestServer(tsCfg *TestServerConfig) (*TestServer, error) {
	if tsCfg == nil {
		tsCfg = &TestServerConfig{}
	}

	mockTwitter := NewMockTwitterServer()

	cfg := &config.Config{
		Port:          0,
		Environment:   "development",
		AppURL:        "http://localhost",
		SessionSecret: "test-session-secret",
		StateTTLSecs:  600,
		PKCEEnabled:   !tsCfg.DisablePKCE,
		WalletEnabled: !tsCfg.DisableWallet,
		StaticDir:     "dist",
	}

	p, err := provider.NewTwitterProvider(provider.Config{
		ClientID:     "mock-twitter-client",
		ClientSecret: "mock-twitter-secret",
		CallbackURL:  cfg.CallbackURL(),
		AuthURL:      mockTwitter.AuthURL(),
		TokenURL:     mockTwitter.TokenURL(),
		UserURL:      mockTwitter.UserURL(),
		PKCE:         cfg.PKCEEnabled,
	})
	if err != nil {
		mockTwitter.Close()
		return nil, err
	}

	stateTTL := time.Duration(cfg.StateTTLSecs) * time.Second
	if tsCfg.StateTTL != 0 {
		stateTTL = tsCfg.StateTTL
	}

	stateService, err := service.NewStateService(cfg.SessionSecret, stateTTL)
	if err != nil {
		mockTwitter.Close()
		return nil, err
	}

	attemptStore := store.NewMemoryAttemptStore()
	waitlistStore := waitlist.NewMemoryStore()

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handlers := handler.NewHandlers(cfg, p, stateService, attemptStore, waitlistStore, logger)
	sessionStore := appMiddleware.NewSessionStore(cfg.SessionSecret, false)
	router := handler.NewRouter(handlers, sessionStore, logger)

	srv := httptest.NewServer(router)

	return &TestServer{
		Server:       srv,
		URL:          srv.URL,
		Config:       cfg,
		MockTwitter:  mockTwitter,
		Waitlist:     waitlistStore,
		attemptStore: attemptStore,
	}, nil
}

// Close shuts down the test server and its mock provider.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.MockTwitter.Close()
	ts.attemptStore.Close()
}

// NewClient returns an HTTP client that keeps cookies across requests and
// does not follow redirects, so tests can assert on each hop.
func (ts *TestServer) NewClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
