package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client, clientCacheTTL ...time.Duration) *Store {
	s := &Store{client: c}
	if len(clientCacheTTL) > 0 {
		s.cacheTTL = clientCacheTTL[0]
	}
	return s
}
