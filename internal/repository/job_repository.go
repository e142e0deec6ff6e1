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

// jobRepository implements JobRepository interface
type jobRepository struct {
	db *database.Postgres
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *database.Postgres) JobRepository {
	return &jobRepository{db: db}
}

// FindIDsByKeywords queries the inverted keyword index for jobs whose
// keyword membership intersects the term set. Ids come back distinct and
// ascending so pagination stays stable across calls.
func (r *jobRepository) FindIDsByKeywords(ctx context.Context, terms []string) ([]int64, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT job_id
		FROM job_keywords
		WHERE lower(keyword) = ANY($1)
		ORDER BY job_id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, pq.Array(terms))
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword index: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job ids: %w", err)
	}

	return ids, nil
}

// GetByIDs retrieves jobs by id, in ascending id order
func (r *jobRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Job, error) {
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}

	query := `
		SELECT id, title, company_name, description, location, created_at
		FROM jobs
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs by ids: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.CompanyName, &j.Description, &j.Location, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// GetByID retrieves a job by id
func (r *jobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT id, title, company_name, description, location, created_at
		FROM jobs
		WHERE id = $1
	`

	j := &domain.Job{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.Title, &j.CompanyName, &j.Description, &j.Location, &j.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}

	return j, nil
}
