package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxstack/oauth-waitlist/e2e/testutil"
)

const validAddress = "0xAbCdEf0123456789abcdef0123456789ABCDEF01"

// postWallet sends a wallet-save request and returns the response.
func postWallet(t *testing.T, ts *testutil.TestServer, body map[string]string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/wallet/save", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

// TestWalletSave verifies attaching a wallet to an existing entry.
func TestWalletSave(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.MockTwitter.SetUser(testutil.MockTwitterUser{ID: "301", Name: "Wallet User", Username: "walletuser"})
	performAuthFlow(t, ts, ts.NewClient())

	resp := postWallet(t, ts, map[string]string{
		"username":       "walletuser",
		"wallet_address": validAddress,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	entry := ts.Waitlist.Get("301")
	require.NotNil(t, entry)
	require.NotNil(t, entry.WalletAddress)
	assert.Equal(t, validAddress, *entry.WalletAddress)
}

// TestWalletSaveLegacyField verifies the twitter_username alias is accepted.
func TestWalletSaveLegacyField(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.MockTwitter.SetUser(testutil.MockTwitterUser{ID: "302", Name: "Legacy", Username: "legacyuser"})
	performAuthFlow(t, ts, ts.NewClient())

	resp := postWallet(t, ts, map[string]string{
		"twitter_username": "legacyuser",
		"wallet_address":   validAddress,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestWalletSaveRejectsBadAddresses verifies format validation happens
// before any store access.
func TestWalletSaveRejectsBadAddresses(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.MockTwitter.SetUser(testutil.MockTwitterUser{ID: "303", Name: "User", Username: "formatuser"})
	performAuthFlow(t, ts, ts.NewClient())

	for _, addr := range []string{"0x123", "not-an-address", ""} {
		resp := postWallet(t, ts, map[string]string{
			"username":       "formatuser",
			"wallet_address": addr,
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "address %q", addr)
	}

	entry := ts.Waitlist.Get("303")
	require.NotNil(t, entry)
	assert.Nil(t, entry.WalletAddress)
}

// TestWalletSaveMissingFields verifies missing-field validation.
func TestWalletSaveMissingFields(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postWallet(t, ts, map[string]string{"wallet_address": validAddress})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postWallet(t, ts, map[string]string{"username": "someone"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestWalletSaveUnknownUsername verifies the not-found outcome instead of
// the silent success the original behavior allowed.
func TestWalletSaveUnknownUsername(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postWallet(t, ts, map[string]string{
		"username":       "ghost",
		"wallet_address": validAddress,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, waitlistCount(t, ts))
}

// TestWalletDisabled verifies the endpoint is absent when the capability is off.
func TestWalletDisabled(t *testing.T) {
	ts := newTestServer(t, &testutil.TestServerConfig{DisableWallet: true})

	resp := postWallet(t, ts, map[string]string{
		"username":       "anyone",
		"wallet_address": validAddress,
	})
	defer resp.Body.Close()

	// Falls through to the front-end fallback, not the API handler
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}
