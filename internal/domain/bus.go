package domain

import (
	"context"
)

// EventBus defines the interface for event-driven communication.
// Supports Go channels (Community) or NATS (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, tenantID string, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, tenantID string, topic string, handler MessageHandler) (Subscription, error)

	// Request sends a message and waits for a response (request-reply pattern).
	Request(ctx context.Context, tenantID string, topic string, payload []byte) ([]byte, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string `koanf:"type"`

	// Channel settings (Community tier)
	ChannelBufferSize int `koanf:"channel_buffer_size"`

	// NATS settings (Pro tier)
	NATSUrl           string `koanf:"nats_url"`
	NATSToken         string `koanf:"nats_token"`
	NATSMaxReconnects int    `koanf:"nats_max_reconnects"`
	NATSReconnectWait int    `koanf:"nats_reconnect_wait"` // seconds
}

// Standard topic names for the trust pipeline.
const (
	TopicEventRecorded = "chittytrust.event.recorded"
	TopicResult        = "chittytrust.result"
	TopicLevelChanged  = "chittytrust.level.changed"
)

// EventMessage is the payload published on TopicEventRecorded when a
// trust event is recorded.
type EventMessage struct {
	EventID  string `json:"eventId"`
	TenantID string `json:"tenantId"`
	EntityID string `json:"entityId"`
	TraceID  string `json:"traceId"`
	Type     string `json:"type"`
	Outcome  string `json:"outcome"`
}

// LevelChange is the payload published on TopicLevelChanged when an
// entity crosses a trust level boundary in either direction.
type LevelChange struct {
	TenantID  string     `json:"tenantId"`
	EntityID  string     `json:"entityId"`
	ResultID  string     `json:"resultId"`
	Previous  TrustLevel `json:"previous"`
	Current   TrustLevel `json:"current"`
	Composite float64    `json:"composite"`
}
