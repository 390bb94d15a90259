package config

import "time"

// CacheConfig controls the response cache applied to public GET
// routes such as the doctor directory. The cache is advisory: a
// staleness window of minutes is acceptable and cached responses
// are never consulted for authorization decisions, so only
// unauthenticated routes opt in.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings from the environment.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", time.Minute),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
