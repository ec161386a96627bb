// Package cache implements the Redis-backed query result cache used by
// the list endpoints.  A cached entry is addressed by the query it
// answers (table, filter, page) plus a version fingerprint of the rows
// that make up the result set.  When any row in the set is created,
// updated or removed the fingerprint changes, the lookup misses and the
// stale entry ages out via its TTL.  Nothing ever invalidates an entry
// explicitly.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xaibot/event-ticketing/internal/config"
)

// QueryCache memoizes list query results in Redis.  A nil receiver or a
// nil Redis client degrade to calling the loader directly, so callers
// never need to care whether caching is on.
type QueryCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// New builds a QueryCache from the given client and configuration.  When
// caching is disabled the client is discarded and every Fetch falls
// through to its loader.
func New(rdb *redis.Client, cfg config.QueryCacheConfig) *QueryCache {
	if !cfg.Enabled {
		rdb = nil
	}
	return &QueryCache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix}
}

// Fetch returns the cached payload for (name, version) if present,
// otherwise runs load, stores its result and returns it.  name must
// fully describe the query (table, filter, order, limit, offset);
// version is the collection fingerprint computed by the store.  The
// result is JSON-decoded into out, which must be a pointer.
func (c *QueryCache) Fetch(ctx context.Context, name, version string, out interface{}, load func(ctx context.Context) (interface{}, error)) error {
	if c == nil || c.rdb == nil {
		return c.loadInto(ctx, out, load)
	}
	key := c.key(name, version)
	if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return json.Unmarshal(bs, out)
	}
	v, err := load(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// A failed write only costs the next caller a database round trip.
	_ = c.rdb.SetEx(ctx, key, payload, c.ttl).Err()
	return json.Unmarshal(payload, out)
}

// loadInto runs the loader and decodes its result into out through a
// JSON round trip so cached and uncached paths produce identical values.
func (c *QueryCache) loadInto(ctx context.Context, out interface{}, load func(ctx context.Context) (interface{}, error)) error {
	v, err := load(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

// key builds the Redis key for a query and its fingerprint.  The name and
// version are hashed together so distinct filter/pagination combinations
// and distinct row versions can never collide onto one entry.
func (c *QueryCache) key(name, version string) string {
	sum := sha1.Sum([]byte(name + "|" + version))
	return fmt.Sprintf("%s:%x", c.prefix, sum)
}
