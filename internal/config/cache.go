package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD). TTL defines the
// lifetime of cache entries. KeyStrategy determines which parts of the request
// contribute to the cache key. Prefix and MaxBodyBytes allow control over
// namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig. Defaults are used when variables are
// not set. All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	v := newViper()
	v.SetDefault("cache_enabled", true)
	v.SetDefault("cache_methods", "GET")
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("cache_key_strategy", "path_query")
	v.SetDefault("cache_prefix", "cache")
	v.SetDefault("cache_max_body_bytes", 1<<20)

	ttl := v.GetDuration("cache_ttl")
	if ttl <= 0 {
		ttl = time.Second
	}
	return CacheConfig{
		Enabled:      v.GetBool("cache_enabled"),
		Methods:      parseMethods(v.GetString("cache_methods")),
		TTL:          ttl,
		KeyStrategy:  v.GetString("cache_key_strategy"),
		Prefix:       v.GetString("cache_prefix"),
		MaxBodyBytes: v.GetInt("cache_max_body_bytes"),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
