package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"go.uber.org/zap"
)

const (
	recommendationPageSize = 20
	maxSearchTerms         = 15
)

// recommendationService implements RecommendationService
type recommendationService struct {
	profileRepo repository.ProfileRepository
	jobRepo     repository.JobRepository
	logger      *zap.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(profileRepo repository.ProfileRepository, jobRepo repository.JobRepository, logger *zap.Logger) RecommendationService {
	return &recommendationService{
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
		logger:      logger,
	}
}

// Recommend returns a page of jobs whose keyword index intersects the
// user's profile terms. Results are ordered by ascending job id so pages
// stay stable across requests.
func (s *recommendationService) Recommend(ctx context.Context, userID string, page int) (*domain.JobPage, error) {
	if page < 1 {
		page = 1
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// A profile with no searchable signal gets an empty page, not an error
	if !profile.HasSignal() {
		s.logger.Debug("profile has no recommendation signal", zap.String("user_id", userID))
		return domain.EmptyJobPage(page, recommendationPageSize), nil
	}

	terms := ExtractKeywords(profile)
	if len(terms) > maxSearchTerms {
		terms = terms[:maxSearchTerms]
	}

	ids, err := s.jobRepo.FindIDsByKeywords(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("failed to search job index: %w", err)
	}

	total := len(ids)
	start := (page - 1) * recommendationPageSize
	if start >= total {
		// Beyond the last page the total count is still reported
		result := domain.EmptyJobPage(page, recommendationPageSize)
		result.TotalCount = total
		return result, nil
	}

	end := min(start+recommendationPageSize, total)

	jobs, err := s.jobRepo.GetByIDs(ctx, ids[start:end])
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}

	return &domain.JobPage{
		Items:      jobs,
		TotalCount: total,
		Page:       page,
		PageSize:   recommendationPageSize,
	}, nil
}
