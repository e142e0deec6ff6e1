package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdateLockout(ctx context.Context, userID string, failedCount int, lockoutUntil *time.Time) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByValue(ctx context.Context, value, userID string) (*domain.RefreshToken, error)
	GetActiveByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error)

	// Rotate marks the token revoked and links its successor in a single
	// conditional update. Returns ErrAlreadyRevoked when the row was no
	// longer active, which signals a concurrent rotation or a replay.
	Rotate(ctx context.Context, value, userID, replacedBy string, at time.Time) error

	// Revoke marks an active token revoked without a successor.
	// Returns ErrAlreadyRevoked when the row was not active.
	Revoke(ctx context.Context, value, userID string, at time.Time) error

	// RevokeCreatedAfter revokes every active token of the user created
	// strictly after the given time. Used for replay containment.
	RevokeCreatedAfter(ctx context.Context, userID string, after, at time.Time) (int64, error)

	// RevokeAllForUser revokes every active, non-expired token of the user
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error)

	DeleteExpired(ctx context.Context) error
}

// OAuthProviderRepository defines methods for OAuth provider operations
type OAuthProviderRepository interface {
	Create(ctx context.Context, provider *domain.OAuthProvider) error
	GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthProvider, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthProvider, error)
	Delete(ctx context.Context, providerID string) error
}

// ProfileRepository defines read access to candidate profiles
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// JobRepository defines read access to jobs and the keyword index
type JobRepository interface {
	// FindIDsByKeywords returns distinct ids of jobs whose keyword index
	// intersects the given terms, in ascending id order
	FindIDsByKeywords(ctx context.Context, terms []string) ([]int64, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Job, error)
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
}

// JobAgentRepository defines methods for job agent subscriptions
type JobAgentRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.JobAgent, error)
	Upsert(ctx context.Context, agent *domain.JobAgent) error
	Update(ctx context.Context, agent *domain.JobAgent) error
	FindDue(ctx context.Context, now time.Time) ([]*domain.JobAgent, error)
	DisableByUnsubscribeToken(ctx context.Context, token string) error
}
