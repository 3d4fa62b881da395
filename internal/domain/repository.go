package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Entity operations
	SaveEntity(ctx context.Context, tenantID string, entity *Entity) error
	GetEntity(ctx context.Context, tenantID string, entityID string) (*Entity, error)

	// Event operations
	SaveEvent(ctx context.Context, tenantID string, event *Event) error
	ListEvents(ctx context.Context, tenantID string, entityID string, since time.Time) ([]*Event, error)
	CountEvents(ctx context.Context, tenantID string, entityID string, since time.Time) (int64, error)

	// Trust result history
	SaveResult(ctx context.Context, tenantID string, result *TrustResult) error
	GetResult(ctx context.Context, tenantID string, resultID string) (*TrustResult, error)
	GetLatestResult(ctx context.Context, tenantID string, entityID string) (*TrustResult, error)
	ListResults(ctx context.Context, tenantID string, entityID string, since time.Time) ([]*TrustResult, error)

	// Insight rule configuration
	SaveInsightRule(ctx context.Context, tenantID string, rule *InsightRule) error
	GetInsightRule(ctx context.Context, tenantID string, ruleID string) (*InsightRule, error)
	ListInsightRules(ctx context.Context, tenantID string) ([]*InsightRule, error)
	DeleteInsightRule(ctx context.Context, tenantID string, ruleID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `koanf:"driver"`

	// SQLite specific
	SQLitePath string `koanf:"sqlite_path"`

	// PostgreSQL specific
	PostgresHost     string `koanf:"postgres_host"`
	PostgresPort     int    `koanf:"postgres_port"`
	PostgresUser     string `koanf:"postgres_user"`
	PostgresPassword string `koanf:"postgres_password"`
	PostgresDB       string `koanf:"postgres_db"`
	PostgresSSLMode  string `koanf:"postgres_sslmode"`

	// Connection pool settings
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}
