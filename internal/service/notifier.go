package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	jobAgentStream = "notifications:job-agent"
	welcomeStream  = "notifications:welcome"
)

// RedisNotificationPublisher pushes notification requests onto Redis
// streams consumed by the mailer service
type RedisNotificationPublisher struct {
	client *redis.Client
}

// NewRedisNotificationPublisher creates a stream-backed publisher
func NewRedisNotificationPublisher(client *redis.Client) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{client: client}
}

// PublishJobAgentDigest enqueues a job agent digest request
func (p *RedisNotificationPublisher) PublishJobAgentDigest(ctx context.Context, profileID int64, userID string, frequency domain.Frequency) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: jobAgentStream,
		Values: map[string]interface{}{
			"profile_id":   profileID,
			"user_id":      userID,
			"frequency":    string(frequency),
			"requested_at": time.Now().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish job agent digest: %w", err)
	}
	return nil
}

// PublishWelcomeEmail enqueues a welcome email request
func (p *RedisNotificationPublisher) PublishWelcomeEmail(ctx context.Context, userID, email string) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: welcomeStream,
		Values: map[string]interface{}{
			"user_id":      userID,
			"email":        email,
			"requested_at": time.Now().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish welcome email: %w", err)
	}
	return nil
}
