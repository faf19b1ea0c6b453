// File: services/feed/cache.go
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wandr/models"
	"wandr/utils"

	"github.com/go-redis/redis/v8"
)

// RecommendationCache stores each user's one live batch. Saves replace
// (refresh) or append (load-more) wholesale, never partial-merge.
type RecommendationCache interface {
	Load(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error)
	SaveReplace(ctx context.Context, batch models.CachedRecommendationBatch) error
	SaveAppend(ctx context.Context, userID string, recs []models.ScoredRecommendation) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisRecommendationCache implements RecommendationCache over Redis with a
// JSON blob per user.
type RedisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecommendationCache builds the cache with the given TTL.
func NewRedisRecommendationCache(client *redis.Client, ttl time.Duration) *RedisRecommendationCache {
	if ttl <= 0 {
		ttl = utils.DefaultCacheTTL
	}
	return &RedisRecommendationCache{client: client, ttl: ttl}
}

func batchKey(userID string) string {
	return fmt.Sprintf("%s%s", utils.RecsCachePrefix, userID)
}

// Load returns the cached batch or nil on a miss. Corrupt payloads count as
// misses rather than errors so a bad cache never blocks the user.
func (c *RedisRecommendationCache) Load(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error) {
	val, err := c.client.Get(ctx, batchKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached batch for user %s: %w", userID, err)
	}

	var batch models.CachedRecommendationBatch
	if err := json.Unmarshal([]byte(val), &batch); err != nil {
		return nil, nil
	}
	return &batch, nil
}

func (c *RedisRecommendationCache) SaveReplace(ctx context.Context, batch models.CachedRecommendationBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch for user %s: %w", batch.UserID, err)
	}
	return c.client.Set(ctx, batchKey(batch.UserID), data, c.ttl).Err()
}

// SaveAppend extends the stored batch with load-more results. The whole
// blob is rewritten in one Set so writes are never partially merged.
func (c *RedisRecommendationCache) SaveAppend(ctx context.Context, userID string, recs []models.ScoredRecommendation) error {
	existing, err := c.Load(ctx, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = &models.CachedRecommendationBatch{UserID: userID, GeneratedAt: time.Now()}
	}
	existing.Recommendations = append(existing.Recommendations, recs...)
	return c.SaveReplace(ctx, *existing)
}

func (c *RedisRecommendationCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, batchKey(userID)).Err()
}
