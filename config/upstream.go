package config

import (
	"os"
	"strconv"
	"time"
)

// Upstream backend collaborator (catalog/category/product data service).
// Timeouts differ per endpoint class: tree and stats fetches are quick,
// a competitor refresh runs a remote marketplace search and is slow.

func UpstreamBaseURL() string {
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		return v
	}
	return "http://127.0.0.1:8000/api/v1"
}

// UpstreamToken is an optional bearer token forwarded to the collaborator.
func UpstreamToken() string {
	return os.Getenv("UPSTREAM_TOKEN")
}

func UpstreamFetchTimeout() time.Duration {
	return envDuration("UPSTREAM_FETCH_TIMEOUT_SEC", 10*time.Second)
}

func UpstreamRefreshTimeout() time.Duration {
	return envDuration("UPSTREAM_REFRESH_TIMEOUT_SEC", 30*time.Second)
}

// UpstreamCacheTTL is the cache lifetime for category/stats payloads, in seconds.
func UpstreamCacheTTL() int64 {
	if v := os.Getenv("UPSTREAM_CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return 300
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
