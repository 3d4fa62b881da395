// Package trust implements the 6D trust scoring engine: six dimension
// calculators, the stakeholder score aggregator, the confidence
// estimator, and the trust level classifier.
//
// Every function here is pure and total. Missing or degenerate input
// (no events, empty lists, unverified everything) maps to a documented
// base value, never an error. All scores are clamped to [0,100].
package trust

import (
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

// Base values and bonuses per dimension.
const (
	sourceBase      = 50.0
	sourceIdentity  = 20.0 // identity verified
	sourceCred      = 15.0 // at least one credential
	sourceBiometric = 15.0 // biometric verified

	temporalBase = 50.0 // no event history

	channelBase  = 30.0 // no channels registered
	channelRange = 70.0

	outcomeBase = 50.0 // no event history

	networkBase   = 40.0 // no connections
	networkRange  = 60.0
	strongConnMin = 70.0 // trust score above which a connection counts as strong

	justiceBase         = 50.0
	justiceDispute      = 20.0 // dispute-resolution rate > 0.8
	justiceTransparency = 15.0 // transparency score > 0.7
	justiceFairness     = 15.0 // fairness rating > 0.75
)

// Temporal sub-computation constants.
const (
	expectedInterval      = 7 * 24 * time.Hour // weekly cadence
	consistencyWeight     = 0.6
	longevityWeight       = 0.4
	defaultConsistency    = 50.0 // fewer than 2 events
	daysPerMonth          = 30.0
	consistencyBothNeeded = 2
)

// SourceScore measures identity verification strength.
func SourceScore(e *domain.Entity) float64 {
	score := sourceBase
	if e.IdentityVerified {
		score += sourceIdentity
	}
	if len(e.Credentials) > 0 {
		score += sourceCred
	}
	if e.BiometricVerified {
		score += sourceBiometric
	}
	return clamp(score, 0, 100)
}

// TemporalScore measures behavioral consistency and track-record length.
// Events must be sorted ascending by timestamp.
func TemporalScore(events []*domain.Event) float64 {
	if len(events) == 0 {
		return temporalBase
	}
	score := consistencyWeight*consistency(events) + longevityWeight*longevity(events)
	return clamp(score, 0, 100)
}

// consistency scores how close inter-event intervals are to the expected
// weekly cadence. Each pair scores max(0, 1 - |actual-expected|/expected);
// the result is the mean over pairs, scaled to 0-100.
func consistency(events []*domain.Event) float64 {
	if len(events) < consistencyBothNeeded {
		return defaultConsistency
	}

	expected := expectedInterval.Seconds()
	var total float64
	pairs := 0

	for i := 1; i < len(events); i++ {
		actual := events[i].Timestamp.Sub(events[i-1].Timestamp).Seconds()
		dev := actual - expected
		if dev < 0 {
			dev = -dev
		}
		pair := 1 - dev/expected
		if pair < 0 {
			pair = 0
		}
		total += pair
		pairs++
	}

	return total / float64(pairs) * 100
}

// longevity maps the span between first and last event, in months,
// through a step function.
func longevity(events []*domain.Event) float64 {
	if len(events) == 0 {
		return 0
	}

	span := events[len(events)-1].Timestamp.Sub(events[0].Timestamp)
	months := span.Hours() / (24 * daysPerMonth)

	switch {
	case months < 1:
		return 20
	case months < 3:
		return 40
	case months < 6:
		return 60
	case months < 12:
		return 80
	default:
		return 100
	}
}

// ChannelScore measures the verified share of communication channels.
func ChannelScore(e *domain.Entity) float64 {
	if len(e.Channels) == 0 {
		return channelBase
	}

	verified := 0
	for _, ch := range e.Channels {
		if ch.Verified {
			verified++
		}
	}

	score := channelBase + channelRange*float64(verified)/float64(len(e.Channels))
	return clamp(score, 0, 100)
}

// OutcomeScore measures the positive share of event outcomes.
func OutcomeScore(events []*domain.Event) float64 {
	if len(events) == 0 {
		return outcomeBase
	}

	positive := 0
	for _, ev := range events {
		if ev.Outcome == domain.OutcomePositive {
			positive++
		}
	}

	return clamp(100*float64(positive)/float64(len(events)), 0, 100)
}

// NetworkScore measures the strong share of network connections.
func NetworkScore(e *domain.Entity) float64 {
	if len(e.Connections) == 0 {
		return networkBase
	}

	strong := 0
	for _, c := range e.Connections {
		if c.TrustScore > strongConnMin {
			strong++
		}
	}

	score := networkBase + networkRange*float64(strong)/float64(len(e.Connections))
	return clamp(score, 0, 100)
}

// JusticeScore measures dispute resolution, transparency, and fairness.
func JusticeScore(e *domain.Entity) float64 {
	score := justiceBase
	if e.DisputeResolutionRate > 0.8 {
		score += justiceDispute
	}
	if e.TransparencyScore > 0.7 {
		score += justiceTransparency
	}
	if e.FairnessRating > 0.75 {
		score += justiceFairness
	}
	return clamp(score, 0, 100)
}

// Dimensions computes all six dimension scores. Events must be sorted
// ascending by timestamp; the Engine takes care of that.
func Dimensions(e *domain.Entity, events []*domain.Event) domain.DimensionScores {
	return domain.DimensionScores{
		Source:   SourceScore(e),
		Temporal: TemporalScore(events),
		Channel:  ChannelScore(e),
		Outcome:  OutcomeScore(events),
		Network:  NetworkScore(e),
		Justice:  JusticeScore(e),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
