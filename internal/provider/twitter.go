package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// TwitterDefaultAuthURL is Twitter's OAuth 2.0 authorization endpoint.
	TwitterDefaultAuthURL = "https://twitter.com/i/oauth2/authorize"
	// TwitterDefaultTokenURL is Twitter's OAuth 2.0 token endpoint.
	TwitterDefaultTokenURL = "https://api.x.com/2/oauth2/token"
	// TwitterDefaultUserURL is Twitter's user info endpoint.
	TwitterDefaultUserURL = "https://api.x.com/2/users/me"
)

// TwitterProvider implements the Provider interface for Twitter OAuth 2.0.
type TwitterProvider struct {
	config Config
	client *http.Client
}

// NewTwitterProvider creates a new Twitter provider.
func NewTwitterProvider(cfg Config) (*TwitterProvider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("twitter: client_id is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("twitter: client_secret is required")
	}
	if cfg.CallbackURL == "" {
		return nil, fmt.Errorf("twitter: callback_url is required")
	}

	// Set defaults
	if cfg.AuthURL == "" {
		cfg.AuthURL = TwitterDefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = TwitterDefaultTokenURL
	}
	if cfg.UserURL == "" {
		cfg.UserURL = TwitterDefaultUserURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"tweet.read", "users.read"}
	}

	return &TwitterProvider{config: cfg, client: http.DefaultClient}, nil
}

// AuthURL returns the full authorization URL.
func (p *TwitterProvider) AuthURL(state, codeChallenge string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"scope":         {strings.Join(p.config.Scopes, " ")},
		"state":         {state},
	}
	if p.config.PKCE {
		params.Set("code_challenge", codeChallenge)
		params.Set("code_challenge_method", "S256")
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *TwitterProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {p.config.CallbackURL},
	}
	if p.config.PKCE {
		data.Set("code_verifier", codeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.config.ClientID, p.config.ClientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &tokenResp, nil
}

// twitterUserResponse represents Twitter's user info response structure.
type twitterUserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

// FetchUser fetches profile information from Twitter.
func (p *TwitterProvider) FetchUser(ctx context.Context, accessToken string) (*UserData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProfileFetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var userResp twitterUserResponse
	if err := json.Unmarshal(body, &userResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	displayName := userResp.Data.Name
	if displayName == "" {
		displayName = userResp.Data.Username
	}

	return &UserData{
		ID:          userResp.Data.ID,
		Username:    userResp.Data.Username,
		DisplayName: displayName,
	}, nil
}

// PKCEEnabled reports whether PKCE parameters are sent.
func (p *TwitterProvider) PKCEEnabled() bool {
	return p.config.PKCE
}
