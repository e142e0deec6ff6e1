package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/pkg/database"
)

// jobAgentRepository implements JobAgentRepository interface
type jobAgentRepository struct {
	db *database.Postgres
}

// NewJobAgentRepository creates a new job agent repository
func NewJobAgentRepository(db *database.Postgres) JobAgentRepository {
	return &jobAgentRepository{db: db}
}

const agentColumns = `id, profile_id, user_id, enabled, frequency, last_sent_at, next_send_at, unsubscribe_token, created_at, updated_at`

func scanAgent(scan func(dest ...any) error) (*domain.JobAgent, error) {
	agent := &domain.JobAgent{}
	var lastSent, nextSend sql.NullTime

	err := scan(
		&agent.ID,
		&agent.ProfileID,
		&agent.UserID,
		&agent.Enabled,
		&agent.Frequency,
		&lastSent,
		&nextSend,
		&agent.UnsubscribeToken,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastSent.Valid {
		agent.LastSentAt = &lastSent.Time
	}
	if nextSend.Valid {
		agent.NextSendAt = &nextSend.Time
	}

	return agent, nil
}

// GetByUserID retrieves the job agent owned by a user
func (r *jobAgentRepository) GetByUserID(ctx context.Context, userID string) (*domain.JobAgent, error) {
	query := `SELECT ` + agentColumns + ` FROM job_agents WHERE user_id = $1`

	agent, err := scanAgent(r.db.DB.QueryRowContext(ctx, query, userID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job agent for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job agent: %w", err)
	}

	return agent, nil
}

// Upsert creates the agent for its profile or updates the existing one
func (r *jobAgentRepository) Upsert(ctx context.Context, agent *domain.JobAgent) error {
	query := `
		INSERT INTO job_agents (profile_id, user_id, enabled, frequency, last_sent_at, next_send_at, unsubscribe_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (profile_id) DO UPDATE
		SET enabled = EXCLUDED.enabled, frequency = EXCLUDED.frequency,
			next_send_at = EXCLUDED.next_send_at, updated_at = EXCLUDED.updated_at
		RETURNING id, unsubscribe_token, created_at
	`

	if agent.UnsubscribeToken == "" {
		agent.UnsubscribeToken = uuid.New().String()
	}

	now := time.Now()
	err := r.db.DB.QueryRowContext(ctx, query,
		agent.ProfileID,
		agent.UserID,
		agent.Enabled,
		agent.Frequency,
		agent.LastSentAt,
		agent.NextSendAt,
		agent.UnsubscribeToken,
		now,
	).Scan(&agent.ID, &agent.UnsubscribeToken, &agent.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert job agent: %w", err)
	}

	agent.UpdatedAt = now
	return nil
}

// Update persists dispatch bookkeeping for an existing agent
func (r *jobAgentRepository) Update(ctx context.Context, agent *domain.JobAgent) error {
	query := `
		UPDATE job_agents
		SET enabled = $2, frequency = $3, last_sent_at = $4, next_send_at = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		agent.ID,
		agent.Enabled,
		agent.Frequency,
		agent.LastSentAt,
		agent.NextSendAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job agent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("job agent with id %d not found: %w", agent.ID, ErrNotFound)
	}

	return nil
}

// FindDue retrieves enabled agents whose next send time has passed or was never set
func (r *jobAgentRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.JobAgent, error) {
	query := `
		SELECT ` + agentColumns + `
		FROM job_agents
		WHERE enabled = TRUE AND (next_send_at IS NULL OR next_send_at <= $1)
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due job agents: %w", err)
	}
	defer rows.Close()

	var agents []*domain.JobAgent
	for rows.Next() {
		agent, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job agent: %w", err)
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job agents: %w", err)
	}

	return agents, nil
}

// DisableByUnsubscribeToken disables the agent carrying the opaque
// unsubscribe token. Lookup is by token only, without user scoping.
func (r *jobAgentRepository) DisableByUnsubscribeToken(ctx context.Context, token string) error {
	query := `
		UPDATE job_agents
		SET enabled = FALSE, updated_at = $2
		WHERE unsubscribe_token = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to disable job agent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("unsubscribe token not found: %w", ErrNotFound)
	}

	return nil
}
