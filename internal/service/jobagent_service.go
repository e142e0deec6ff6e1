package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"go.uber.org/zap"
)

// jobAgentService implements JobAgentService
type jobAgentService struct {
	agentRepo   repository.JobAgentRepository
	profileRepo repository.ProfileRepository
	logger      *zap.Logger
}

// NewJobAgentService creates a new job agent service
func NewJobAgentService(agentRepo repository.JobAgentRepository, profileRepo repository.ProfileRepository, logger *zap.Logger) JobAgentService {
	return &jobAgentService{
		agentRepo:   agentRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// Get returns the user's job agent settings
func (s *jobAgentService) Get(ctx context.Context, userID string) (*domain.JobAgent, error) {
	agent, err := s.agentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job agent: %w", err)
	}
	return agent, nil
}

// Save creates or updates the user's job agent. Enabling an agent makes
// it due immediately; the scheduler picks it up on its next tick.
func (s *jobAgentService) Save(ctx context.Context, userID string, enabled bool, frequency domain.Frequency) (*domain.JobAgent, error) {
	if !frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	now := time.Now()
	agent := &domain.JobAgent{
		ProfileID: profile.ID,
		UserID:    userID,
		Enabled:   enabled,
		Frequency: frequency,
	}
	if enabled {
		agent.NextSendAt = &now
	}

	if err := s.agentRepo.Upsert(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to save job agent: %w", err)
	}

	s.logger.Info("job agent saved",
		zap.String("user_id", userID),
		zap.Bool("enabled", enabled),
		zap.String("frequency", string(frequency)),
	)

	return agent, nil
}

// Unsubscribe disables the agent identified by its unsubscribe token.
// The token arrives from an email link, so no session is required.
func (s *jobAgentService) Unsubscribe(ctx context.Context, token string) error {
	if token == "" {
		return repository.ErrNotFound
	}

	if err := s.agentRepo.DisableByUnsubscribeToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to unsubscribe job agent: %w", err)
	}

	return nil
}
