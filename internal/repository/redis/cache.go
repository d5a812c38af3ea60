package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/matchday/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache holds the public fixture listings as JSON. Concurrent misses on one
// listing share a single store read.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// lookup decodes the listing under key into dst. A payload that no longer
// decodes counts as a miss so the next load overwrites it.
func (c *Cache) lookup(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return false, nil
	}

	return true, nil
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, string(b), ttl).Err()
}

// GetOrSetJSON returns the listing cached under key, or runs load and caches
// its result for ttl. When redis cannot be read the listing is loaded
// straight from the store, so an outage slows listings down but never fails
// them.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var cached T
	ok, err := c.lookup(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookup("error")
		return load(ctx)
	case ok:
		metrics.CacheLookup("hit")
		return cached, nil
	}

	metrics.CacheLookup("miss")

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// a concurrent caller may have filled it while we waited
		var again T
		if ok, err := c.lookup(ctx, key, &again); err == nil && ok {
			return again, nil
		}

		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}

		// a failed write only costs the next caller a reload
		_ = c.store(ctx, key, fresh, ttl)

		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache %s: unexpected value type %T", key, v)
	}

	return out, nil
}

// InvalidateFixtures drops every cached fixture listing. Listings embed
// orders and sold counts, so any order or fixture write makes them stale.
func (c *Cache) InvalidateFixtures(ctx context.Context) error {
	return c.rdb.Del(ctx, KeyFixtures(), KeyUpcomingFixtures()).Err()
}
