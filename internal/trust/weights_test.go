package trust

import (
	"testing"

	"github.com/chittyos/chittytrust/internal/domain"
)

func TestDefaultWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}
}

func TestDefaultWeightSums(t *testing.T) {
	w := DefaultWeights()
	cases := map[string]DimensionWeights{
		"people":    w.People,
		"legal":     w.Legal,
		"state":     w.State,
		"composite": w.Composite,
	}

	for name, dw := range cases {
		if !approx(dw.Sum(), 1.0) {
			t.Errorf("%s weights sum to %v, want 1.0", name, dw.Sum())
		}
	}
}

func TestValidateRejectsBadSum(t *testing.T) {
	w := DefaultWeights()
	w.People.Network = 0.5 // breaks people sum

	if err := w.Validate(); err == nil {
		t.Error("expected validation error for bad weight sum")
	}
}

func TestOutputsFormulas(t *testing.T) {
	w := DefaultWeights()
	d := domain.DimensionScores{
		Source:   80,
		Temporal: 60,
		Channel:  70,
		Outcome:  90,
		Network:  50,
		Justice:  75,
	}

	out := w.Outputs(d)

	wantPeople := 50*0.40 + 90*0.30 + 60*0.30
	wantLegal := 75*0.50 + 80*0.30 + 70*0.20
	wantState := 80*0.40 + 75*0.40 + 70*0.20
	wantComposite := 80*0.15 + 60*0.10 + 70*0.15 + 90*0.20 + 50*0.15 + 75*0.25

	if !approx(out.People, wantPeople) {
		t.Errorf("people = %.4f, want %.4f", out.People, wantPeople)
	}
	if !approx(out.Legal, wantLegal) {
		t.Errorf("legal = %.4f, want %.4f", out.Legal, wantLegal)
	}
	if !approx(out.State, wantState) {
		t.Errorf("state = %.4f, want %.4f", out.State, wantState)
	}
	if !approx(out.Composite, wantComposite) {
		t.Errorf("composite = %.4f, want %.4f", out.Composite, wantComposite)
	}
}

func TestApplyClamps(t *testing.T) {
	w := DimensionWeights{Source: 1.0}
	d := domain.DimensionScores{Source: 150}

	if got := w.Apply(d); got != 100 {
		t.Errorf("expected clamp to 100, got %.2f", got)
	}
}
