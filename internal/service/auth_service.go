package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"github.com/prperemyshlev/jobboard-service/internal/utils"
	"github.com/prperemyshlev/jobboard-service/pkg/linkedin"
	"go.uber.org/zap"
)

const defaultRole = "candidate"

// AuthConfig carries the tunables of the auth service
type AuthConfig struct {
	BCryptCost         int
	RefreshTokenExpiry time.Duration
	MaxLoginAttempts   int
	LockoutDuration    time.Duration
}

// authService implements AuthService interface
type authService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	providerRepo repository.OAuthProviderRepository
	jwtManager   *utils.JWTManager
	publisher    NotificationPublisher
	logger       *zap.Logger
	cfg          AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	providerRepo repository.OAuthProviderRepository,
	jwtManager *utils.JWTManager,
	publisher NotificationPublisher,
	logger *zap.Logger,
	cfg AuthConfig,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		providerRepo: providerRepo,
		jwtManager:   jwtManager,
		publisher:    publisher,
		logger:       logger,
		cfg:          cfg,
	}
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error) {
	// Validate email format
	if !utils.ValidateEmail(req.Email) {
		return nil, fmt.Errorf("invalid email format")
	}

	// Validate password
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err == nil {
		return nil, fmt.Errorf("user with email %s already exists", req.Email)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	// Hash password
	passwordHash, err := utils.HashPassword(req.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:          utils.SanitizeEmail(req.Email),
		PasswordHash:   passwordHash,
		Role:           defaultRole,
		LockoutEnabled: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome email goes through the queue; a publish failure must not
	// fail the registration
	if err := s.publisher.PublishWelcomeEmail(ctx, user.ID, user.Email); err != nil {
		s.logger.Error("failed to enqueue welcome email",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	return s.issueTokens(ctx, user, "")
}

// Login authenticates a user with email and password
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now()
	if user.IsLockedOut(now) {
		return nil, ErrAccountLocked
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.recordFailedLogin(ctx, user, now)
		return nil, ErrInvalidCredentials
	}

	// Successful login clears the failure counter
	if user.FailedLoginCount > 0 || user.LockoutUntil != nil {
		if err := s.userRepo.UpdateLockout(ctx, user.ID, 0, nil); err != nil {
			s.logger.Error("failed to reset lockout state", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user, "")
}

// LoginFederated signs a user in with a verified LinkedIn profile,
// creating the local account on first login
func (s *authService) LoginFederated(ctx context.Context, profile *linkedin.Profile) (*AuthResponseWithRefreshToken, error) {
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("federated profile is missing id or email")
	}

	user, err := s.findOrCreateFederatedUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	if user.IsLockedOut(time.Now()) {
		return nil, ErrAccountLocked
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user, "")
}

func (s *authService) findOrCreateFederatedUser(ctx context.Context, profile *linkedin.Profile) (*domain.User, error) {
	provider, err := s.providerRepo.GetByProvider(ctx, linkedin.ProviderName, profile.ID)
	if err == nil {
		user, err := s.userRepo.GetByID(ctx, provider.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get federated user: %w", err)
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up provider connection: %w", err)
	}

	email := utils.SanitizeEmail(profile.Email)

	// A password account with the same email gets linked instead of duplicated
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &domain.User{
			Email:              email,
			Role:               defaultRole,
			IsEmailVerified:    profile.EmailVerified,
			IsFederated:        true,
			FederationVerified: profile.EmailVerified,
			LockoutEnabled:     true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create federated user: %w", err)
		}

		if err := s.publisher.PublishWelcomeEmail(ctx, user.ID, user.Email); err != nil {
			s.logger.Error("failed to enqueue welcome email",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	} else {
		user.IsFederated = true
		user.FederationVerified = profile.EmailVerified
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to link federated user: %w", err)
		}
	}

	connection := &domain.OAuthProvider{
		UserID:         user.ID,
		Provider:       linkedin.ProviderName,
		ProviderUserID: profile.ID,
		Email:          &email,
	}
	if err := s.providerRepo.Create(ctx, connection); err != nil && !errors.Is(err, repository.ErrDuplicateOAuthProvider) {
		return nil, fmt.Errorf("failed to create provider connection: %w", err)
	}

	return user, nil
}

// Refresh exchanges an access/refresh token pair for a fresh pair.
//
// The state machine: an active token rotates exactly once and is linked to
// its replacement. Presenting an already-rotated token is treated as
// replay, and every active token of the user created after the replayed
// one is revoked as well. Tokens created before the replayed one in the
// chain are deliberately left untouched.
func (s *authService) Refresh(ctx context.Context, accessToken, refreshTokenValue string) (*AuthResponseWithRefreshToken, error) {
	// Signature check only: the access token is expected to be expired here
	claims, err := s.jwtManager.ParseIgnoringExpiry(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Indistinguishable from a bad token on purpose
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	stored, err := s.tokenRepo.GetByValue(ctx, refreshTokenValue, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	now := time.Now()

	if stored.RevokedAt != nil {
		s.containReplay(ctx, user.ID, stored)
		return nil, ErrTokenRevoked
	}

	if stored.IsExpired(now) {
		return nil, ErrTokenExpired
	}

	newValue, err := generateRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokenRepo.Rotate(ctx, refreshTokenValue, user.ID, newValue, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			// A concurrent caller rotated this value between our read and
			// write. Same containment as a replay.
			s.containReplay(ctx, user.ID, stored)
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to rotate token: %w", err)
	}

	return s.issueTokens(ctx, user, newValue)
}

// containReplay revokes the replayed token's active descendants
func (s *authService) containReplay(ctx context.Context, userID string, replayed *domain.RefreshToken) {
	count, err := s.tokenRepo.RevokeCreatedAfter(ctx, userID, replayed.CreatedAt, time.Now())
	if err != nil {
		s.logger.Error("failed to revoke descendant tokens",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	s.logger.Warn("refresh token replay detected",
		zap.String("user_id", userID),
		zap.Int64("revoked_descendants", count),
	)
}

// Logout revokes the presented refresh token for the user
func (s *authService) Logout(ctx context.Context, userID, refreshTokenValue string) error {
	if refreshTokenValue == "" {
		return nil
	}

	err := s.tokenRepo.Revoke(ctx, refreshTokenValue, userID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			// Already rotated, expired or unknown: nothing left to revoke
			return nil
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// LogoutAll revokes every active session of the user
func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	count, err := s.tokenRepo.RevokeAllForUser(ctx, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	s.logger.Info("revoked all sessions",
		zap.String("user_id", userID),
		zap.Int64("revoked", count),
	)
	return nil
}

// ChangePassword verifies the current password, stores the new hash and
// invalidates every session of the user
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if !utils.ValidatePassword(req.NewPassword) {
		return fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.cfg.BCryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	// Credential change invalidates every open session
	return s.LogoutAll(ctx, userID)
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	response := &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Role:            user.Role,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
		IsEmailVerified: user.IsEmailVerified,
		IsFederated:     user.IsFederated,
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		response.LastLoginAt = &lastLogin
	}

	return response, nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return claims, nil
}

func (s *authService) recordFailedLogin(ctx context.Context, user *domain.User, now time.Time) {
	count := user.FailedLoginCount + 1
	var lockoutUntil *time.Time

	if user.LockoutEnabled && count >= s.cfg.MaxLoginAttempts {
		until := now.Add(s.cfg.LockoutDuration)
		lockoutUntil = &until
		count = 0

		s.logger.Warn("account locked after repeated failures",
			zap.String("user_id", user.ID),
			zap.Time("lockout_until", until),
		)
	}

	if err := s.userRepo.UpdateLockout(ctx, user.ID, count, lockoutUntil); err != nil {
		s.logger.Error("failed to record login failure", zap.String("user_id", user.ID), zap.Error(err))
	}
}
