// Package persona provides demo entity fixtures used for seeding and
// for exercising the scoring pipeline end to end.
package persona

import (
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

// Persona is a demo entity with a prepared event history.
type Persona struct {
	ID          string
	Description string
	Entity      domain.EntityRequest
	Events      []domain.EventRequest
}

func ts(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Demo returns the three built-in demo personas: a high-trust community
// leader, an operator with a mixed business history, and a redemption
// arc going from negative history to verified achievement.
func Demo() []Persona {
	return []Persona{
		{
			ID:          "alice",
			Description: "High-trust community leader",
			Entity: domain.EntityRequest{
				ID:               "alice",
				Type:             string(domain.EntityPerson),
				Name:             "Alice Chen",
				IdentityVerified: true,
				Credentials: []domain.Credential{
					{Type: "government_id", Issuer: "US Government"},
					{Type: "professional", Issuer: "State Bar Association"},
				},
				Channels: []domain.Channel{
					{Name: "verified_api", Verified: true},
					{Name: "blockchain", Verified: true},
				},
				Connections: []domain.Connection{
					{EntityID: "bob", TrustScore: 85},
				},
				DisputeResolutionRate: 0.95,
				TransparencyScore:     0.9,
				FairnessRating:        0.9,
			},
			Events: []domain.EventRequest{
				{Type: "verification", Timestamp: ts(2020, time.January, 15), Channel: "verified_api", Outcome: "positive", Impact: 5.0},
				{Type: "endorsement", Timestamp: ts(2021, time.March, 10), Channel: "blockchain", Outcome: "positive", Impact: 4.0},
				{Type: "collaboration", Timestamp: ts(2022, time.June, 5), Channel: "verified_api", Outcome: "positive", Impact: 3.0},
				{Type: "review", Timestamp: ts(2023, time.February, 20), Channel: "verified_api", Outcome: "positive", Impact: 2.5},
			},
		},
		{
			ID:          "bob",
			Description: "Mixed business history",
			Entity: domain.EntityRequest{
				ID:               "bob",
				Type:             string(domain.EntityPerson),
				Name:             "Bob Martinez",
				IdentityVerified: true,
				Credentials: []domain.Credential{
					{Type: "government_id", Issuer: "US Government"},
				},
				Channels: []domain.Channel{
					{Name: "bank_transfer", Verified: true},
					{Name: "email", Verified: false},
				},
				DisputeResolutionRate: 0.6,
				TransparencyScore:     0.6,
				FairnessRating:        0.5,
			},
			Events: []domain.EventRequest{
				{Type: "transaction", Timestamp: ts(2020, time.February, 1), Channel: "bank_transfer", Outcome: "positive", Impact: 3.0},
				{Type: "dispute", Timestamp: ts(2021, time.August, 15), Channel: "email", Outcome: "negative", Impact: 2.0},
				{Type: "transaction", Timestamp: ts(2022, time.April, 12), Channel: "bank_transfer", Outcome: "positive", Impact: 2.0},
			},
		},
		{
			ID:          "charlie",
			Description: "Redemption arc: negative history to verified achievement",
			Entity: domain.EntityRequest{
				ID:               "charlie",
				Type:             string(domain.EntityPerson),
				Name:             "Charlie Williams",
				IdentityVerified: false,
				Channels: []domain.Channel{
					{Name: "email", Verified: false},
				},
				DisputeResolutionRate: 0.3,
				TransparencyScore:     0.4,
				FairnessRating:        0.4,
			},
			Events: []domain.EventRequest{
				{Type: "dispute", Timestamp: ts(2022, time.February, 1), Channel: "email", Outcome: "negative", Impact: 3.0},
				{Type: "achievement", Timestamp: ts(2023, time.October, 1), Channel: "verified_api", Outcome: "positive", Impact: 8.0},
			},
		},
	}
}

// ByID returns the demo persona with the given ID, or nil.
func ByID(id string) *Persona {
	for _, p := range Demo() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
