// Package memory holds in-process adapters for single-instance deployments.
package memory

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// VerificationStore implements usecase.VerificationStore in process memory.
// Codes are lost on restart, which only forces users to request a new one.
type VerificationStore struct {
	cache *ttlcache.Cache[string, string]
}

// NewVerificationStore creates a new VerificationStore.
func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		cache: ttlcache.New[string, string](
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

// Set stores value under key until ttl elapses. Expired keys are swept here,
// so no janitor goroutine is needed.
func (s *VerificationStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.cache.DeleteExpired()
	s.cache.Set(key, value, ttl)
	return nil
}

// ConsumeIfValid deletes key and reports whether its unexpired value matched.
func (s *VerificationStore) ConsumeIfValid(_ context.Context, key, value string) (bool, error) {
	it, ok := s.cache.GetAndDelete(key)
	if !ok || it == nil || it.IsExpired() {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(it.Value()), []byte(value)) == 1, nil
}
