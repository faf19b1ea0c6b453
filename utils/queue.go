// File: utils/queue.go
package utils

import (
	"wandr/config"

	"github.com/hibiken/asynq"
)

// QueueClient is the shared task-queue client for background work
// (cache purges, feedback commits).
var QueueClient *asynq.Client

// QueueRedisOpt builds the Redis options for the task queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitQueue initializes the task-queue client.
func InitQueue() {
	QueueClient = asynq.NewClient(QueueRedisOpt())
}

// GetQueueClient returns the task-queue client.
func GetQueueClient() *asynq.Client {
	if QueueClient == nil {
		InitQueue()
	}
	return QueueClient
}
