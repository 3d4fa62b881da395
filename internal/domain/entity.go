// Package domain defines the core interfaces and types for ChittyTrust.
package domain

import (
	"time"
)

// Entity is the subject of a trust calculation: a person, organization,
// or autonomous agent. Entities are immutable inputs to the engine; they
// are constructed by a provider (repository, persona fixtures, identity
// service) before each scoring call and never mutated by the engine.
type Entity struct {
	ID       string     `json:"id"`
	TenantID string     `json:"tenantId"`
	Type     EntityType `json:"type"`
	Name     string     `json:"name,omitempty"`

	// Identity signals consumed by the source dimension
	IdentityVerified  bool         `json:"identityVerified"`
	BiometricVerified bool         `json:"biometricVerified"`
	Credentials       []Credential `json:"credentials,omitempty"`

	// Communication channels consumed by the channel dimension
	Channels []Channel `json:"channels,omitempty"`

	// Network connections consumed by the network dimension
	Connections []Connection `json:"connections,omitempty"`

	// Justice signals, all in [0,1]
	DisputeResolutionRate float64 `json:"disputeResolutionRate"`
	TransparencyScore     float64 `json:"transparencyScore"`
	FairnessRating        float64 `json:"fairnessRating"`

	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// EntityType classifies the scored subject.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityAgent        EntityType = "agent"
)

// Credential is an attestation held by an entity.
type Credential struct {
	Type     string    `json:"type"`
	Issuer   string    `json:"issuer,omitempty"`
	IssuedAt time.Time `json:"issuedAt,omitempty"`
	Status   string    `json:"status,omitempty"`
}

// Channel is a communication channel registered for an entity.
type Channel struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// Connection is a network edge to another entity carrying that
// entity's trust score (0-100).
type Connection struct {
	EntityID   string  `json:"entityId"`
	TrustScore float64 `json:"trustScore"`
}

// EntityRequest is the API request payload for entity registration.
type EntityRequest struct {
	ID                    string                 `json:"id"`
	Type                  string                 `json:"type"`
	Name                  string                 `json:"name,omitempty"`
	IdentityVerified      bool                   `json:"identityVerified"`
	BiometricVerified     bool                   `json:"biometricVerified"`
	Credentials           []Credential           `json:"credentials,omitempty"`
	Channels              []Channel              `json:"channels,omitempty"`
	Connections           []Connection           `json:"connections,omitempty"`
	DisputeResolutionRate float64                `json:"disputeResolutionRate"`
	TransparencyScore     float64                `json:"transparencyScore"`
	FairnessRating        float64                `json:"fairnessRating"`
	Metadata              map[string]interface{} `json:"metadata,omitempty"`
}

// ToEntity converts a request to an Entity domain object.
func (r *EntityRequest) ToEntity(tenantID string) *Entity {
	t := EntityType(r.Type)
	switch t {
	case EntityPerson, EntityOrganization, EntityAgent:
	default:
		t = EntityPerson
	}

	return &Entity{
		ID:                    r.ID,
		TenantID:              tenantID,
		Type:                  t,
		Name:                  r.Name,
		IdentityVerified:      r.IdentityVerified,
		BiometricVerified:     r.BiometricVerified,
		Credentials:           r.Credentials,
		Channels:              r.Channels,
		Connections:           r.Connections,
		DisputeResolutionRate: r.DisputeResolutionRate,
		TransparencyScore:     r.TransparencyScore,
		FairnessRating:        r.FairnessRating,
		CreatedAt:             time.Now().UTC(),
		Metadata:              r.Metadata,
	}
}
