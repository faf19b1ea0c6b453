// Package feedback closes the loop between served recommendations and
// future scoring. Submissions are fire-and-forget: the HTTP layer enqueues,
// a background worker commits, and the scoring engine reads only committed
// records.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wandr/cron"
	feedbackRepo "wandr/database/repository/feedback"
	"wandr/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskEnqueuer enqueues background work; *asynq.Client satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service accepts feedback submissions and answers the aggregate queries
// the scoring engine needs.
type Service struct {
	Repo  feedbackRepo.FeedbackRepository
	Queue TaskEnqueuer
	Now   func() time.Time
}

// NewService wires the feedback loop.
func NewService(repo feedbackRepo.FeedbackRepository, queue TaskEnqueuer) *Service {
	return &Service{Repo: repo, Queue: queue, Now: time.Now}
}

// Submit validates the signal, stamps it, and enqueues it for the worker to
// commit. The record ID comes back so callers can reference the submission.
func (s *Service) Submit(ctx context.Context, record models.FeedbackRecord) (string, error) {
	if record.UserID == "" || record.ProviderID == "" {
		return "", fmt.Errorf("feedback requires a user ID and a provider ID")
	}
	switch record.Signal {
	case models.FeedbackAccepted, models.FeedbackRejected:
	case models.FeedbackRated:
		if record.Rating < 0 || record.Rating > 5 {
			return "", fmt.Errorf("rating %.1f out of range [0, 5]", record.Rating)
		}
	default:
		return "", fmt.Errorf("unknown feedback signal %q", record.Signal)
	}

	record.ID = uuid.NewString()
	record.CreatedAt = s.Now()
	if record.CompletedAt.IsZero() {
		record.CompletedAt = record.CreatedAt
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal feedback %s: %w", record.ID, err)
	}
	if _, err := s.Queue.Enqueue(asynq.NewTask(cron.TypeFeedbackCommit, payload)); err != nil {
		return "", fmt.Errorf("failed to enqueue feedback %s: %w", record.ID, err)
	}
	return record.ID, nil
}

// SummaryForVenue returns the user's committed history with one venue.
func (s *Service) SummaryForVenue(ctx context.Context, userID, providerID string) (models.FeedbackSummary, error) {
	return s.Repo.SummaryForVenue(ctx, userID, providerID)
}

// SummaryForCategory returns the user's committed history with a category.
func (s *Service) SummaryForCategory(ctx context.Context, userID string, category models.Category) (models.FeedbackSummary, error) {
	return s.Repo.SummaryForCategory(ctx, userID, category)
}

// AcceptanceForVenue returns the crowd acceptance rate for a venue.
func (s *Service) AcceptanceForVenue(ctx context.Context, providerID string) (models.AcceptanceStats, error) {
	return s.Repo.AcceptanceForVenue(ctx, providerID)
}

// AcceptanceForCategory returns the crowd acceptance rate for a category.
func (s *Service) AcceptanceForCategory(ctx context.Context, category models.Category) (models.AcceptanceStats, error) {
	return s.Repo.AcceptanceForCategory(ctx, category)
}
