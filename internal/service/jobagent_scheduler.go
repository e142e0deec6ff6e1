package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// JobAgentScheduler periodically dispatches due job agents to the
// notification queue. Dispatch is at-least-once: the digest is published
// before the schedule advances, so a crash between the two produces a
// duplicate email rather than a missed one.
type JobAgentScheduler struct {
	agents     repository.JobAgentRepository
	publisher  NotificationPublisher
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time
	dispatched metric.Int64Counter
}

// NewJobAgentScheduler creates a scheduler polling at the given interval
func NewJobAgentScheduler(agents repository.JobAgentRepository, publisher NotificationPublisher, interval time.Duration, logger *zap.Logger) *JobAgentScheduler {
	meter := otel.Meter("jobboard-service/scheduler")
	dispatched, err := meter.Int64Counter("job_agent_dispatched_total",
		metric.WithDescription("Number of job agent digests dispatched"),
	)
	if err != nil {
		logger.Warn("failed to create dispatch counter", zap.Error(err))
	}

	return &JobAgentScheduler{
		agents:     agents,
		publisher:  publisher,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
		dispatched: dispatched,
	}
}

// Run blocks until ctx is cancelled, polling for due agents every interval
func (s *JobAgentScheduler) Run(ctx context.Context) {
	s.logger.Info("job agent scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job agent scheduler stopped")
			return
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				s.logger.Error("scheduler tick failed", zap.Error(err))
			}
		}
	}
}

// tick dispatches every currently due agent. Per-agent failures are
// logged and skipped so one broken subscription cannot stall the rest.
func (s *JobAgentScheduler) tick(ctx context.Context) error {
	now := s.now()

	due, err := s.agents.FindDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find due agents: %w", err)
	}

	for _, agent := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.publisher.PublishJobAgentDigest(ctx, agent.ProfileID, agent.UserID, agent.Frequency); err != nil {
			s.logger.Error("failed to dispatch job agent",
				zap.Int64("agent_id", agent.ID),
				zap.String("user_id", agent.UserID),
				zap.Error(err),
			)
			continue
		}

		// Read the clock per agent so the recorded schedule tracks the
		// actual dispatch time through a long tick
		sentAt := s.now()
		nextAt := agent.Frequency.NextSendAfter(sentAt)
		agent.LastSentAt = &sentAt
		agent.NextSendAt = &nextAt

		if err := s.agents.Update(ctx, agent); err != nil {
			// The digest is already queued; the agent stays due and will
			// be retried next tick
			s.logger.Error("failed to advance agent schedule",
				zap.Int64("agent_id", agent.ID),
				zap.Error(err),
			)
			continue
		}

		if s.dispatched != nil {
			s.dispatched.Add(ctx, 1, metric.WithAttributes(
				attribute.String("frequency", string(agent.Frequency)),
			))
		}
	}

	if len(due) > 0 {
		s.logger.Info("job agent tick complete", zap.Int("due", len(due)))
	}

	return nil
}
