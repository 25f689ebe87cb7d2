package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerificationStore implements usecase.VerificationStore using Redis.
type VerificationStore struct {
	client *redis.Client
	prefix string
}

// NewVerificationStore creates a new VerificationStore.
func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{
		client: client,
		prefix: "ourllet:",
	}
}

// Set stores value under key, replacing any previous value.
func (s *VerificationStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// ConsumeIfValid deletes key and reports whether its value matched.
// The key is gone afterwards whether or not the value matched.
func (s *VerificationStore) ConsumeIfValid(ctx context.Context, key, value string) (bool, error) {
	stored, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(value)) == 1, nil
}
