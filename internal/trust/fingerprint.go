package trust

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/chittyos/chittytrust/internal/domain"
)

// fingerprintInput is the canonical encoding hashed into a fingerprint.
// Only fields the engine actually consumes are included, so cosmetic
// entity changes (name, metadata) do not invalidate cached results.
type fingerprintInput struct {
	EntityID          string              `json:"entityId"`
	IdentityVerified  bool                `json:"identityVerified"`
	BiometricVerified bool                `json:"biometricVerified"`
	CredentialCount   int                 `json:"credentialCount"`
	Channels          []domain.Channel    `json:"channels"`
	Connections       []domain.Connection `json:"connections"`
	DisputeRate       float64             `json:"disputeRate"`
	Transparency      float64             `json:"transparency"`
	Fairness          float64             `json:"fairness"`
	Events            []fingerprintEvent  `json:"events"`
}

type fingerprintEvent struct {
	Type      string  `json:"type"`
	Timestamp int64   `json:"timestamp"`
	Outcome   string  `json:"outcome"`
	Impact    float64 `json:"impact"`
	Channel   string  `json:"channel,omitempty"`
}

// Fingerprint returns a stable hex digest of the scoring inputs.
// Identical (entity, events) inputs produce identical fingerprints
// regardless of event ordering, making the digest a safe cache key for
// immutable result snapshots.
func Fingerprint(entity *domain.Entity, events []*domain.Event) string {
	if entity == nil {
		entity = &domain.Entity{}
	}

	normalized := normalizeEvents(events)

	in := fingerprintInput{
		EntityID:          entity.ID,
		IdentityVerified:  entity.IdentityVerified,
		BiometricVerified: entity.BiometricVerified,
		CredentialCount:   len(entity.Credentials),
		Channels:          entity.Channels,
		Connections:       entity.Connections,
		DisputeRate:       entity.DisputeResolutionRate,
		Transparency:      entity.TransparencyScore,
		Fairness:          entity.FairnessRating,
		Events:            make([]fingerprintEvent, 0, len(normalized)),
	}

	for _, ev := range normalized {
		in.Events = append(in.Events, fingerprintEvent{
			Type:      string(ev.Type),
			Timestamp: ev.Timestamp.UnixNano(),
			Outcome:   string(ev.Outcome),
			Impact:    ev.Impact,
			Channel:   ev.Channel,
		})
	}

	// Struct field order makes the JSON encoding canonical.
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
