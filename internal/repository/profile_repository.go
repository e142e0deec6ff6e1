package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/pkg/database"
)

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *database.Postgres
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.Postgres) ProfileRepository {
	return &profileRepository{db: db}
}

// GetByUserID retrieves a profile with all its sections loaded
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, job_title, company_name, keywords, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	profile := &domain.Profile{}
	var jobTitle, companyName sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&jobTitle,
		&companyName,
		pq.Array(&profile.Keywords),
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.JobTitle = jobTitle.String
	profile.CompanyName = companyName.String

	if err := r.loadExperiences(ctx, profile); err != nil {
		return nil, err
	}
	if err := r.loadInterests(ctx, profile); err != nil {
		return nil, err
	}
	if err := r.loadSkills(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (r *profileRepository) loadExperiences(ctx context.Context, profile *domain.Profile) error {
	query := `
		SELECT id, profile_id, position, company
		FROM profile_experiences
		WHERE profile_id = $1
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to get experiences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Experience
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Position, &e.Company); err != nil {
			return fmt.Errorf("failed to scan experience: %w", err)
		}
		profile.Experiences = append(profile.Experiences, e)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate experiences: %w", err)
	}

	return nil
}

func (r *profileRepository) loadInterests(ctx context.Context, profile *domain.Profile) error {
	query := `
		SELECT id, profile_id, title
		FROM profile_interests
		WHERE profile_id = $1
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to get interests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i domain.Interest
		if err := rows.Scan(&i.ID, &i.ProfileID, &i.Title); err != nil {
			return fmt.Errorf("failed to scan interest: %w", err)
		}
		profile.Interests = append(profile.Interests, i)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate interests: %w", err)
	}

	return nil
}

func (r *profileRepository) loadSkills(ctx context.Context, profile *domain.Profile) error {
	query := `
		SELECT id, profile_id, name
		FROM profile_skills
		WHERE profile_id = $1
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to get skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.Name); err != nil {
			return fmt.Errorf("failed to scan skill: %w", err)
		}
		profile.Skills = append(profile.Skills, s)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate skills: %w", err)
	}

	return nil
}
