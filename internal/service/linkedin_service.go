package service

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/jobboard-service/internal/config"
	"github.com/prperemyshlev/jobboard-service/pkg/linkedin"
	"golang.org/x/oauth2"
	linkedinoauth "golang.org/x/oauth2/linkedin"
)

// ProfileFetcher retrieves the member profile for an authorized token
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, source oauth2.TokenSource) (*linkedin.Profile, error)
}

// LinkedInAuthService drives the OAuth authorization-code flow against
// LinkedIn and hands the verified profile to the auth service
type LinkedInAuthService struct {
	oauth  *oauth2.Config
	client ProfileFetcher
	auth   AuthService
}

// NewLinkedInAuthService creates a LinkedIn sign-in service
func NewLinkedInAuthService(cfg config.LinkedInConfig, client ProfileFetcher, auth AuthService) *LinkedInAuthService {
	return &LinkedInAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     linkedinoauth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		client: client,
		auth:   auth,
	}
}

// AuthCodeURL builds the LinkedIn authorization URL for the given state
func (s *LinkedInAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, fetches the member
// profile and signs the user in
func (s *LinkedInAuthService) HandleCallback(ctx context.Context, code string) (*AuthResponseWithRefreshToken, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	profile, err := s.client.FetchProfile(ctx, s.oauth.TokenSource(ctx, token))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch linkedin profile: %w", err)
	}

	return s.auth.LoginFederated(ctx, profile)
}
