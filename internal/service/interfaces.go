package service

import (
	"context"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
	"github.com/prperemyshlev/jobboard-service/pkg/linkedin"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error)
	LoginFederated(ctx context.Context, profile *linkedin.Profile) (*AuthResponseWithRefreshToken, error)
	Refresh(ctx context.Context, accessToken, refreshTokenValue string) (*AuthResponseWithRefreshToken, error)
	Logout(ctx context.Context, userID, refreshTokenValue string) error
	LogoutAll(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// RecommendationService matches candidate profiles against the job
// keyword index
type RecommendationService interface {
	Recommend(ctx context.Context, userID string, page int) (*domain.JobPage, error)
}

// JobAgentService manages job agent subscriptions
type JobAgentService interface {
	Get(ctx context.Context, userID string) (*domain.JobAgent, error)
	Save(ctx context.Context, userID string, enabled bool, frequency domain.Frequency) (*domain.JobAgent, error)
	Unsubscribe(ctx context.Context, token string) error
}

// NotificationPublisher pushes asynchronous notification requests to the
// messaging layer. Delivery is at-least-once; consumers must tolerate
// duplicates.
type NotificationPublisher interface {
	PublishJobAgentDigest(ctx context.Context, profileID int64, userID string, frequency domain.Frequency) error
	PublishWelcomeEmail(ctx context.Context, userID, email string) error
}
