package domain

import (
	"math"
	"time"
)

// DimensionScores holds the six trust dimension scores, each in [0,100].
type DimensionScores struct {
	Source   float64 `json:"source"`
	Temporal float64 `json:"temporal"`
	Channel  float64 `json:"channel"`
	Outcome  float64 `json:"outcome"`
	Network  float64 `json:"network"`
	Justice  float64 `json:"justice"`
}

// OutputScores holds the four stakeholder-facing composite scores,
// each in [0,100].
type OutputScores struct {
	People    float64 `json:"people"`
	Legal     float64 `json:"legal"`
	State     float64 `json:"state"`
	Composite float64 `json:"composite"`
}

// TrustLevel is the discrete ordinal classification of the composite score.
type TrustLevel string

const (
	LevelAnonymous     TrustLevel = "L0_ANONYMOUS"
	LevelBasic         TrustLevel = "L1_BASIC"
	LevelEnhanced      TrustLevel = "L2_ENHANCED"
	LevelProfessional  TrustLevel = "L3_PROFESSIONAL"
	LevelInstitutional TrustLevel = "L4_INSTITUTIONAL"
)

// Ordinal returns the numeric rank of a level, L0 = 0 through L4 = 4.
// Unknown levels rank lowest.
func (l TrustLevel) Ordinal() int {
	switch l {
	case LevelBasic:
		return 1
	case LevelEnhanced:
		return 2
	case LevelProfessional:
		return 3
	case LevelInstitutional:
		return 4
	default:
		return 0
	}
}

// TrustResult is the engine's single output artifact. It is created fresh
// on every calculation and never mutated after construction; persistence
// is the repository's concern.
type TrustResult struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenantId"`
	EntityID   string          `json:"entityId"`
	Dimensions DimensionScores `json:"dimensions"`
	Outputs    OutputScores    `json:"outputs"`
	Confidence float64         `json:"confidence"` // 0-1
	Level      TrustLevel      `json:"level"`
	Timestamp  time.Time       `json:"timestamp"`

	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata contains processing information for a calculation.
type ResultMetadata struct {
	TraceID         string `json:"traceId,omitempty"`
	EventsEvaluated int    `json:"eventsEvaluated"`
	CalcMs          int64  `json:"calcMs"`
	TotalMs         int64  `json:"totalMs,omitempty"`
	EngineVersion   string `json:"engineVersion"`
	CacheHit        bool   `json:"cacheHit,omitempty"`
}

// Round2 rounds to two decimal places, the precision used for persistence
// and API responses. The engine retains full precision internally.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a copy with every dimension rounded to two decimals.
func (d DimensionScores) Rounded() DimensionScores {
	return DimensionScores{
		Source:   Round2(d.Source),
		Temporal: Round2(d.Temporal),
		Channel:  Round2(d.Channel),
		Outcome:  Round2(d.Outcome),
		Network:  Round2(d.Network),
		Justice:  Round2(d.Justice),
	}
}

// Rounded returns a copy with every output rounded to two decimals.
func (o OutputScores) Rounded() OutputScores {
	return OutputScores{
		People:    Round2(o.People),
		Legal:     Round2(o.Legal),
		State:     Round2(o.State),
		Composite: Round2(o.Composite),
	}
}

// TrustResponse is the API response for a trust calculation.
type TrustResponse struct {
	ResultID   string          `json:"resultId"`
	EntityID   string          `json:"entityId"`
	TenantID   string          `json:"tenantId"`
	Dimensions DimensionScores `json:"dimensions"`
	Outputs    OutputScores    `json:"outputs"`
	Confidence float64         `json:"confidence"`
	Level      TrustLevel      `json:"level"`
	Insights   []Insight       `json:"insights,omitempty"`
	Metadata   ResultMetadata  `json:"metadata"`
}

// ToResponse converts a TrustResult to an API response, rounding scores
// to the two-decimal presentation precision.
func (r *TrustResult) ToResponse(insights []Insight) *TrustResponse {
	return &TrustResponse{
		ResultID:   r.ID,
		EntityID:   r.EntityID,
		TenantID:   r.TenantID,
		Dimensions: r.Dimensions.Rounded(),
		Outputs:    r.Outputs.Rounded(),
		Confidence: Round2(r.Confidence),
		Level:      r.Level,
		Insights:   insights,
		Metadata:   r.Metadata,
	}
}
