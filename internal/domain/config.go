package domain

import "time"

// Config holds the complete ChittyTrust configuration.
type Config struct {
	// Server settings
	Server ServerConfig `koanf:"server"`

	// Tier determines feature availability
	Tier Tier `koanf:"tier"`

	// Component configurations
	Repository RepositoryConfig `koanf:"repository"`
	Cache      CacheConfig      `koanf:"cache"`
	EventBus   EventBusConfig   `koanf:"event_bus"`

	// Worker settings
	Worker WorkerConfig `koanf:"worker"`

	// Insight rule evaluation settings
	Insights InsightsConfig `koanf:"insights"`

	// Observability
	Logging LoggingConfig `koanf:"logging"`
	Tracing TracingConfig `koanf:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	ReadTimeout  int    `koanf:"read_timeout"`  // seconds
	WriteTimeout int    `koanf:"write_timeout"` // seconds
}

// WorkerConfig holds async worker settings.
type WorkerConfig struct {
	Enabled   bool     `koanf:"enabled"`
	TenantIDs []string `koanf:"tenant_ids"`
}

// InsightsConfig holds insight rule evaluation settings.
type InsightsConfig struct {
	// MaxWorkers caps concurrent rule evaluation per calculation.
	MaxWorkers int `koanf:"max_workers"`

	// ActivityWindow is the recent-activity lookback in seconds
	// exposed to rules as recent_events.
	ActivityWindow int `koanf:"activity_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `koanf:"enabled"`
	ServiceName  string `koanf:"service_name"`
	ExporterType string `koanf:"exporter_type"` // stdout, otlp, jaeger
	Endpoint     string `koanf:"endpoint"`
}

// Tier represents the product tier.
type Tier string

const (
	// TierCommunity is the free tier with SQLite + channels
	TierCommunity Tier = "community"

	// TierPro is the paid tier with PostgreSQL + NATS + Redis
	TierPro Tier = "pro"

	// TierEnterprise includes multi-node, SSO, etc.
	TierEnterprise Tier = "enterprise"
)

// DefaultConfig returns a default configuration for Community tier.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./chittytrust.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
			ResultTTL:    10 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Worker: WorkerConfig{
			Enabled: false,
		},
		Insights: InsightsConfig{
			MaxWorkers:     10,
			ActivityWindow: 30 * 24 * 3600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "chittytrust",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "chittytrust",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
		ResultTTL:      10 * time.Minute,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Worker.Enabled = true
	cfg.Tracing.Enabled = true
	return cfg
}
