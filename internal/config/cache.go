package config

import (
	"os"
	"time"
)

// QueryCacheConfig defines settings for the query result cache.  When
// Enabled is false or no Redis client is available, list queries always go
// to the database.  TTL is the lifetime of a cached page; entries are never
// explicitly invalidated because the cache key embeds a fingerprint of the
// underlying rows, so a stale entry simply stops being referenced.
type QueryCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadQueryCacheConfig reads environment variables to build a
// QueryCacheConfig.  Defaults are used when variables are not set.
func LoadQueryCacheConfig() QueryCacheConfig {
	return QueryCacheConfig{
		Enabled: getenv("QUERY_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("QUERY_CACHE_TTL", "24h")),
		Prefix:  getenv("QUERY_CACHE_PREFIX", "query"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
