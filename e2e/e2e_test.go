// Package e2e exercises the full OAuth waitlist flow against an in-process
// server with a mock Twitter provider.
package e2e

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruxstack/oauth-waitlist/e2e/testutil"
)

// newTestServer starts a fresh server instance for one test.
func newTestServer(t *testing.T, cfg *testutil.TestServerConfig) *testutil.TestServer {
	t.Helper()

	ts, err := testutil.NewTestServer(cfg)
	require.NoError(t, err, "failed to start test server")
	t.Cleanup(ts.Close)
	return ts
}

// initiate calls /api/auth/initiate and returns the provider authorization URL.
func initiate(t *testing.T, ts *testutil.TestServer, client *http.Client) string {
	t.Helper()

	resp, err := client.Get(ts.URL + "/api/auth/initiate")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AuthURL string `json:"authUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AuthURL)
	return body.AuthURL
}

// authorize follows the provider authorization URL and returns the callback
// request URI (path + query with code and state).
func authorize(t *testing.T, client *http.Client, authURL string) string {
	t.Helper()

	resp, err := client.Get(authURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := resp.Location()
	require.NoError(t, err)
	return loc.RequestURI()
}

// callback performs the OAuth callback and returns the final redirect URL.
func callback(t *testing.T, ts *testutil.TestServer, client *http.Client, requestURI string) *url.URL {
	t.Helper()

	resp, err := client.Get(ts.URL + requestURI)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := resp.Location()
	require.NoError(t, err)
	return loc
}

// performAuthFlow drives the complete flow and returns the final redirect.
func performAuthFlow(t *testing.T, ts *testutil.TestServer, client *http.Client) *url.URL {
	t.Helper()

	authURL := initiate(t, ts, client)
	callbackURI := authorize(t, client, authURL)
	return callback(t, ts, client, callbackURI)
}

// waitlistCount reads /api/waitlist/count.
func waitlistCount(t *testing.T, ts *testutil.TestServer) int {
	t.Helper()

	resp, err := http.Get(ts.URL + "/api/waitlist/count")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Count
}
