package trust

import (
	"fmt"

	"github.com/chittyos/chittytrust/internal/domain"
)

// DimensionWeights maps each trust dimension to its weight in a
// composite formula. Weights for any single output must sum to 1.0.
type DimensionWeights struct {
	Source   float64 `json:"source"`
	Temporal float64 `json:"temporal"`
	Channel  float64 `json:"channel"`
	Outcome  float64 `json:"outcome"`
	Network  float64 `json:"network"`
	Justice  float64 `json:"justice"`
}

// Sum returns the total of all six weights.
func (w DimensionWeights) Sum() float64 {
	return w.Source + w.Temporal + w.Channel + w.Outcome + w.Network + w.Justice
}

// Apply computes the weighted combination of the dimension scores,
// clamped to [0,100].
func (w DimensionWeights) Apply(d domain.DimensionScores) float64 {
	v := d.Source*w.Source +
		d.Temporal*w.Temporal +
		d.Channel*w.Channel +
		d.Outcome*w.Outcome +
		d.Network*w.Network +
		d.Justice*w.Justice
	return clamp(v, 0, 100)
}

// Weights is the full weighting configuration for the four output scores.
// It is immutable once loaded into an Engine; recalibration means
// constructing a new Engine, never mutating a running one.
type Weights struct {
	People    DimensionWeights `json:"people"`
	Legal     DimensionWeights `json:"legal"`
	State     DimensionWeights `json:"state"`
	Composite DimensionWeights `json:"composite"`
}

// DefaultWeights returns the canonical weight table.
//
// The people/legal/state formulas here are the ones from the primary
// trust-calculation module; an alternative table circulated with
// different audience weightings (people = outcome 0.40 + network 0.35 +
// source 0.25) but does not cover all six dimensions consistently and
// is deliberately not blended in.
func DefaultWeights() Weights {
	return Weights{
		People: DimensionWeights{
			Network:  0.40,
			Outcome:  0.30,
			Temporal: 0.30,
		},
		Legal: DimensionWeights{
			Justice: 0.50,
			Source:  0.30,
			Channel: 0.20,
		},
		State: DimensionWeights{
			Source:  0.40,
			Justice: 0.40,
			Channel: 0.20,
		},
		Composite: DimensionWeights{
			Source:   0.15,
			Temporal: 0.10,
			Channel:  0.15,
			Outcome:  0.20,
			Network:  0.15,
			Justice:  0.25,
		},
	}
}

// weightTolerance is the allowed deviation from 1.0 for a weight sum.
const weightTolerance = 1e-9

// Validate checks that every output formula's weights sum to 1.0.
func (w Weights) Validate() error {
	checks := []struct {
		name    string
		weights DimensionWeights
	}{
		{"people", w.People},
		{"legal", w.Legal},
		{"state", w.State},
		{"composite", w.Composite},
	}

	for _, c := range checks {
		sum := c.weights.Sum()
		if sum < 1.0-weightTolerance || sum > 1.0+weightTolerance {
			return fmt.Errorf("weights for %s score sum to %v, want 1.0", c.name, sum)
		}
	}
	return nil
}

// Outputs computes all four stakeholder scores from the dimension scores.
func (w Weights) Outputs(d domain.DimensionScores) domain.OutputScores {
	return domain.OutputScores{
		People:    w.People.Apply(d),
		Legal:     w.Legal.Apply(d),
		State:     w.State.Apply(d),
		Composite: w.Composite.Apply(d),
	}
}
