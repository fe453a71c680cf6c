package domain

import "time"

// AuthMethod identifies how requests to the generation API are authenticated.
type AuthMethod string

const (
	// AuthMethodAPIKey authenticates with a static API key.
	AuthMethodAPIKey AuthMethod = "api_key"
	// AuthMethodOAuth authenticates with a refreshed OAuth access token.
	AuthMethodOAuth AuthMethod = "oauth"
)

// OAuthCredentials is the persisted OAuth credential record. It is written
// as whole-file JSON at the well-known credential path and overwritten in
// full whenever a refresh succeeds. The refresh token is reused unchanged
// across refreshes; the token endpoint in this flow does not rotate it.
type OAuthCredentials struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is exchanged for new access tokens.
	RefreshToken string `json:"refresh_token"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// ExpiryDate is the access token expiry as unix epoch milliseconds.
	ExpiryDate int64 `json:"expiry_date"`
}

// Expiry returns the access token expiry as a time.Time.
func (c *OAuthCredentials) Expiry() time.Time {
	return time.UnixMilli(c.ExpiryDate)
}

// IsExpired returns true if the access token expiry has passed.
func (c *OAuthCredentials) IsExpired() bool {
	if c.ExpiryDate == 0 {
		return true
	}
	return !time.Now().Before(c.Expiry())
}
