package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, tenantID string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, tenantID string, key string) error

	// GetResult retrieves a cached trust result by input fingerprint.
	// Cached results are immutable snapshots; a fingerprint change means
	// a fresh calculation is required.
	GetResult(ctx context.Context, tenantID string, entityID string, fingerprint string) (*TrustResult, error)

	// SetResult caches a trust result keyed by input fingerprint.
	SetResult(ctx context.Context, tenantID string, entityID string, fingerprint string, result *TrustResult, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used for activity windows (e.g. events recorded in a time window).
	IncrementCounter(ctx context.Context, tenantID string, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `koanf:"type"`

	// Local LRU cache settings (Community tier)
	LocalMaxSize int           `koanf:"local_max_size"`
	LocalTTL     time.Duration `koanf:"local_ttl"`

	// Redis settings (Pro tier)
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// Two-phase settings
	EnableTwoPhase bool `koanf:"enable_two_phase"` // If true, check local first, then Redis

	// ResultTTL is how long calculated trust results stay cached.
	ResultTTL time.Duration `koanf:"result_ttl"`
}
