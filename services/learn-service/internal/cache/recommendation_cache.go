// Package cache stores computed recommendations in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edulearn/platform/services/learn-service/internal/models"
	"github.com/go-redis/redis/v8"
)

const recommendationKeyPrefix = "recommendations:"

// recommendationCache keeps one JSON document per user with a TTL
type recommendationCache struct {
	redis *redis.Client
}

// NewRecommendationCache creates a new Redis backed recommendation cache
func NewRecommendationCache(client *redis.Client) *recommendationCache {
	return &recommendationCache{redis: client}
}

func recommendationKey(userID string) string {
	return recommendationKeyPrefix + userID
}

// Get returns the cached set, or nil without an error on a miss
func (c *recommendationCache) Get(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	data, err := c.redis.Get(ctx, recommendationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached recommendations: %w", err)
	}

	var set models.RecommendationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode cached recommendations: %w", err)
	}
	return &set, nil
}

// Set stores the set for ttl
func (c *recommendationCache) Set(ctx context.Context, set *models.RecommendationSet, ttl time.Duration) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	if err := c.redis.Set(ctx, recommendationKey(set.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache recommendations: %w", err)
	}
	return nil
}

// Delete drops the cached set of a user
func (c *recommendationCache) Delete(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, recommendationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached recommendations: %w", err)
	}
	return nil
}
