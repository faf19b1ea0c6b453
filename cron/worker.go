package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	feedbackRepo "wandr/database/repository/feedback"
	recommendationRepo "wandr/database/repository/recommendation"
	"wandr/models"
	"wandr/utils"

	"github.com/hibiken/asynq"
)

const (
	// TypeBatchPurge removes malformed entries from a user's stored batch.
	TypeBatchPurge = "cache:purge"
	// TypeFeedbackCommit durably records a feedback signal. Scoring reads
	// only committed records, never an in-flight write.
	TypeFeedbackCommit = "feedback:commit"
)

// InitEngineWorker runs the async worker in background.
func InitEngineWorker(recRepo recommendationRepo.RecommendationRepository, fbRepo feedbackRepo.FeedbackRepository) {
	srv := asynq.NewServer(
		utils.QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBatchPurge, handleBatchPurge(recRepo))
	mux.HandleFunc(TypeFeedbackCommit, handleFeedbackCommit(fbRepo))

	// Start async worker with retry logic
	go func() {
		log.Println("[EngineWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[EngineWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[EngineWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleBatchPurge(recRepo recommendationRepo.RecommendationRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BatchPurgePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[BatchPurge] Invalid payload: %v", err)
			return err
		}

		log.Printf("[BatchPurge] Purging %d malformed entries for user %s", len(p.ProviderIDs), p.UserID)
		if err := recRepo.RemoveByProviderIDs(ctx, p.UserID, p.ProviderIDs); err != nil {
			log.Printf("[BatchPurge] Failed to purge entries: %v", err)
			return err
		}
		return nil
	}
}

func handleFeedbackCommit(fbRepo feedbackRepo.FeedbackRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var record models.FeedbackRecord
		if err := json.Unmarshal(task.Payload(), &record); err != nil {
			log.Printf("[FeedbackCommit] Invalid payload: %v", err)
			return err
		}

		if err := fbRepo.Create(ctx, record); err != nil {
			log.Printf("[FeedbackCommit] Failed to commit feedback %s: %v", record.ID, err)
			return err
		}
		return nil
	}
}
