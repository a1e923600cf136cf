package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "auth:rl:"

// RedisRateLimitStore implements fixed-window request counting in Redis.
// The window TTL is set when a key is first seen, so counts reset on their
// own and no sweeper is needed.
type RedisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates a rate-limit store backed by Redis.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := rateLimitKeyPrefix + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (s *RedisRateLimitStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, rateLimitKeyPrefix+key).Err()
}
