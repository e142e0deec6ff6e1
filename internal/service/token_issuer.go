package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
)

const refreshTokenBytes = 64

// AuthResponseWithRefreshToken bundles the response body with the refresh
// token value, which the handler moves into an httpOnly cookie instead of
// the JSON payload
type AuthResponseWithRefreshToken struct {
	AuthResponse *dto.AuthResponse
	RefreshToken string
	ExpiresIn    int
}

// generateRefreshTokenValue produces an opaque token value. Refresh tokens
// carry no claims; the row in refresh_tokens is the source of truth.
func generateRefreshTokenValue() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// issueTokens mints an access token and persists a new active refresh
// token row. refreshValue may be pre-generated by the rotation path; when
// empty a fresh value is drawn.
func (s *authService) issueTokens(ctx context.Context, user *domain.User, refreshValue string) (*AuthResponseWithRefreshToken, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if refreshValue == "" {
		refreshValue, err = generateRefreshTokenValue()
		if err != nil {
			return nil, fmt.Errorf("failed to generate refresh token: %w", err)
		}
	}

	now := time.Now()
	token := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     refreshValue,
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	expiresIn := s.jwtManager.GetAccessTokenExpiry()

	return &AuthResponseWithRefreshToken{
		AuthResponse: &dto.AuthResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
			User: dto.UserInfo{
				ID:    user.ID,
				Email: user.Email,
				Role:  user.Role,
			},
		},
		RefreshToken: refreshValue,
		ExpiresIn:    int(s.cfg.RefreshTokenExpiry.Seconds()),
	}, nil
}
