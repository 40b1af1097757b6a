package cache

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"trading-advisor/internal/metrics"
)

// keyPrefix namespaces advisor entries in a shared Redis.
const keyPrefix = "advisor:analysis:"

// Redis is a Cache backed by a Redis server, guarded by a circuit
// breaker so a cache outage degrades to recompute rather than failing
// requests. Errors surface as misses.
type Redis struct {
	client  *goredis.Client
	breaker *CircuitBreaker
	log     zerolog.Logger
}

// NewRedis creates a Redis cache tier. The breaker opens after 5
// consecutive failures and probes again after 10s; its state feeds the
// breaker gauge and trip counter.
func NewRedis(addr, password string, db int, m *metrics.Metrics, log zerolog.Logger) *Redis {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	r := &Redis{
		client:  client,
		breaker: NewCircuitBreaker(5, 10*time.Second),
		log:     log.With().Str("component", "rediscache").Logger(),
	}
	r.breaker.OnStateChange = func(from, to State) {
		m.CacheBreakerState.Set(float64(to))
		if to == StateOpen {
			m.CacheBreakerTrips.Inc()
		}
		r.log.Warn().Stringer("from", from).Stringer("to", to).Msg("circuit breaker state change")
	}
	return r
}

// Ping verifies connectivity. Used at startup to decide whether the
// Redis tier should be enabled at all.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	found := false
	err := r.breaker.Execute(func() error {
		b, err := r.client.Get(ctx, keyPrefix+key).Bytes()
		if err == goredis.Nil {
			// A miss is a healthy response, not a failure.
			return nil
		}
		if err != nil {
			return err
		}
		val = b
		found = true
		return nil
	})
	if err != nil {
		if err != ErrCircuitOpen {
			r.log.Debug().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}
	return val, found
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := r.breaker.Execute(func() error {
		return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		r.log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
