package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisTokenRevocationStore keeps a short-lived tombstone per revoked access
// token digest. The bearer gate consults it before touching Postgres so a
// logged-out token is rejected without a database round trip.
type RedisTokenRevocationStore struct {
	client *redis.Client
}

func NewRedisTokenRevocationStore(client *redis.Client) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{client: client}
}

func (s *RedisTokenRevocationStore) MarkRevoked(ctx context.Context, tokenDigest string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Hour
	}
	return s.client.Set(ctx, "auth:revoked:"+tokenDigest, "1", ttl).Err()
}

func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, tokenDigest string) (bool, error) {
	n, err := s.client.Exists(ctx, "auth:revoked:"+tokenDigest).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
