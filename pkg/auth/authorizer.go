package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTokenPath is appended to the base URL when no explicit token
// endpoint is configured.
const DefaultTokenPath = "/oauth/token"

// Token is a bearer token issued by the platform.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TTL returns the token lifetime as a duration.
func (t *Token) TTL() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

// AuthenticationError indicates the platform rejected the supplied
// credentials. It is non-retryable.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d)", e.StatusCode)
}

// Authorizer exchanges client credentials for bearer tokens.
type Authorizer struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewAuthorizer creates an authorizer for the given token endpoint.
func NewAuthorizer(tokenURL, clientID, clientSecret string) *Authorizer {
	return &Authorizer{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient overrides the HTTP client (primarily for tests).
func (a *Authorizer) SetHTTPClient(c *http.Client) {
	a.httpClient = c
}

// TokenURL returns the configured token endpoint.
func (a *Authorizer) TokenURL() string {
	return a.tokenURL
}

// Authorize performs the client-credentials exchange.
func (a *Authorizer) Authorize(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &token, nil
}
