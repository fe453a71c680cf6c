package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// OAuth client constants for the installed-app flow shared with the gemini
// CLI. These identify the application, not the user; the user credential
// lives in the credential file.
const (
	DefaultTokenURL     = "https://oauth2.googleapis.com/token" //nolint:gosec // endpoint, not a credential
	DefaultClientID     = "681255809395-oo8ft2oprdrnp9e3aqf6av3hmdib135j.apps.googleusercontent.com"
	DefaultClientSecret = "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"
)

// Ensure OAuthTokenProvider implements the interface.
var _ driven.TokenProvider = (*OAuthTokenProvider)(nil)

// OAuthTokenProvider provides access tokens from the persisted credential,
// refreshing transparently when the stored token has expired. The mutex makes
// concurrent callers idempotent-safe: at most one refresh runs per expiry,
// and late arrivals reuse its persisted result.
type OAuthTokenProvider struct {
	store        driven.CredentialsStore
	tokenURL     string
	clientID     string
	clientSecret string
	client       *http.Client

	mu sync.Mutex
}

// OAuthConfig configures the token provider. Zero fields fall back to the
// gemini CLI defaults.
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// NewOAuthTokenProvider creates a token provider over the credential store.
func NewOAuthTokenProvider(store driven.CredentialsStore, cfg OAuthConfig) *OAuthTokenProvider {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = DefaultClientSecret
	}
	return &OAuthTokenProvider{
		store:        store,
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// GetToken returns a valid access token, refreshing first when the stored
// one has expired.
func (p *OAuthTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	creds, err := p.store.Load(ctx)
	if err != nil {
		return "", err
	}

	if !creds.IsExpired() {
		return creds.AccessToken, nil
	}

	logger.Debug("access token expired at %s, refreshing", creds.Expiry().Format(time.RFC3339))
	refreshed, err := p.refresh(ctx, creds.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := p.store.Save(ctx, refreshed); err != nil {
		return "", fmt.Errorf("save refreshed credentials: %w", err)
	}
	return refreshed.AccessToken, nil
}

// refresh exchanges the refresh token for a new access token. The endpoint
// in this flow never rotates the refresh token, so the returned record keeps
// the original one.
func (p *OAuthTokenProvider) refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredentials, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: expired token has no refresh token; re-authenticate with the gemini CLI", domain.ErrTokenRefreshFailed)
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned status %d; re-authenticate with the gemini CLI",
			domain.ErrTokenRefreshFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", domain.ErrTokenRefreshFailed, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", domain.ErrTokenRefreshFailed)
	}

	tokenType := tokenResp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &domain.OAuthCredentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiryDate:   time.Now().UnixMilli() + tokenResp.ExpiresIn*1000,
	}, nil
}

// AuthMethod returns AuthMethodOAuth.
func (p *OAuthTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodOAuth
}
