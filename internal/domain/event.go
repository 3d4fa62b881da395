package domain

import (
	"time"
)

// EventType enumerates the kinds of trust-affecting occurrences.
type EventType string

const (
	EventTransaction   EventType = "transaction"
	EventVerification  EventType = "verification"
	EventEndorsement   EventType = "endorsement"
	EventDispute       EventType = "dispute"
	EventCollaboration EventType = "collaboration"
	EventReview        EventType = "review"
	EventAchievement   EventType = "achievement"
)

// Outcome enumerates event results.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
	OutcomeNeutral  Outcome = "neutral"
	OutcomePending  Outcome = "pending"
)

// NormalizeOutcome maps any value outside the enumeration to neutral.
// The engine never rejects malformed outcomes; strict validation belongs
// upstream of the scoring core.
func NormalizeOutcome(o Outcome) Outcome {
	switch o {
	case OutcomePositive, OutcomeNegative, OutcomeNeutral, OutcomePending:
		return o
	default:
		return OutcomeNeutral
	}
}

// MaxEventImpact bounds the impact weight of a single event.
const MaxEventImpact = 10.0

// Event is a timestamped occurrence affecting an entity's trust.
// The engine does not assume events arrive sorted by timestamp.
type Event struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	EntityID    string    `json:"entityId"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Channel     string    `json:"channel,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	Impact      float64   `json:"impact"` // 0-10
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EventRequest is the API request payload for recording an event.
type EventRequest struct {
	Type        string     `json:"type"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Channel     string     `json:"channel,omitempty"`
	Outcome     string     `json:"outcome"`
	Impact      float64    `json:"impact"`
	Description string     `json:"description,omitempty"`
}

// ToEvent converts a request to an Event domain object. Unknown outcomes
// are normalized to neutral and impact is clamped into [0,10].
func (r *EventRequest) ToEvent(tenantID, entityID string) *Event {
	now := time.Now().UTC()

	ts := now
	if r.Timestamp != nil {
		ts = r.Timestamp.UTC()
	}

	impact := r.Impact
	if impact < 0 {
		impact = 0
	}
	if impact > MaxEventImpact {
		impact = MaxEventImpact
	}

	return &Event{
		TenantID:    tenantID,
		EntityID:    entityID,
		Type:        EventType(r.Type),
		Timestamp:   ts,
		Channel:     r.Channel,
		Outcome:     NormalizeOutcome(Outcome(r.Outcome)),
		Impact:      impact,
		Description: r.Description,
		CreatedAt:   now,
	}
}
