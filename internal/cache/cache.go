// Package cache provides the analysis response cache used by the HTTP
// adapter. The engine recomputes everything from scratch on every call,
// so callers that poll the same symbol benefit from a short TTL cache.
//
// Two tiers exist: an in-process TTL map and an optional Redis tier
// guarded by a circuit breaker so a cache outage degrades to recompute,
// never to request failure.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized analysis responses keyed by symbol + config
// fingerprint. Implementations must treat errors as misses.
type Cache interface {
	// Get returns the cached bytes and whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. Best effort.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Nop is a Cache that stores nothing. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
