// Package linkedin wraps the LinkedIn OpenID Connect userinfo endpoint
// used for federated sign-in.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ProviderName is the provider key stored on OAuth connections
const ProviderName = "linkedin"

const userinfoURL = "https://api.linkedin.com/v2/userinfo"

// Profile is the OpenID Connect userinfo document returned by LinkedIn
type Profile struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Client fetches member profiles from the LinkedIn API
type Client struct {
	httpClient *http.Client
}

// NewClient creates a LinkedIn API client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchProfile retrieves the userinfo document for the authorized member
func (c *Client) FetchProfile(ctx context.Context, source oauth2.TokenSource) (*Profile, error) {
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo request returned %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &profile, nil
}
