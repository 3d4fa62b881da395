package trust

import (
	"math"
	"testing"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func eventAt(t time.Time, outcome domain.Outcome) *domain.Event {
	return &domain.Event{
		Type:      domain.EventTransaction,
		Timestamp: t,
		Outcome:   outcome,
		Impact:    1.0,
	}
}

// weeklyEvents returns n events spaced exactly one week apart.
func weeklyEvents(n int, outcome domain.Outcome) []*domain.Event {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	events := make([]*domain.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, eventAt(start.Add(time.Duration(i)*7*24*time.Hour), outcome))
	}
	return events
}

func TestSourceScoreBase(t *testing.T) {
	if got := SourceScore(&domain.Entity{}); !approx(got, 50) {
		t.Errorf("expected base 50, got %.2f", got)
	}
}

func TestSourceScoreBonuses(t *testing.T) {
	e := &domain.Entity{IdentityVerified: true}
	if got := SourceScore(e); !approx(got, 70) {
		t.Errorf("identity verified: expected 70, got %.2f", got)
	}

	e.Credentials = []domain.Credential{{Type: "government_id"}}
	if got := SourceScore(e); !approx(got, 85) {
		t.Errorf("identity + credential: expected 85, got %.2f", got)
	}

	e.BiometricVerified = true
	if got := SourceScore(e); !approx(got, 100) {
		t.Errorf("all verified: expected 100, got %.2f", got)
	}
}

func TestSourceScoreCredentialCountIrrelevant(t *testing.T) {
	one := &domain.Entity{Credentials: []domain.Credential{{Type: "a"}}}
	many := &domain.Entity{Credentials: []domain.Credential{{Type: "a"}, {Type: "b"}, {Type: "c"}}}

	if SourceScore(one) != SourceScore(many) {
		t.Error("credential bonus should not scale with count")
	}
}

func TestTemporalScoreEmpty(t *testing.T) {
	if got := TemporalScore(nil); !approx(got, 50) {
		t.Errorf("expected base 50, got %.2f", got)
	}
}

func TestTemporalScoreSingleEvent(t *testing.T) {
	events := weeklyEvents(1, domain.OutcomePositive)
	// One event: consistency defaults to 50, span is zero so longevity is 20.
	want := 0.6*50 + 0.4*20
	if got := TemporalScore(events); !approx(got, want) {
		t.Errorf("expected %.2f, got %.2f", want, got)
	}
}

func TestTemporalScorePerfectWeeklyCadence(t *testing.T) {
	// 5 weekly events span 28 days: perfect consistency, minimal longevity.
	events := weeklyEvents(5, domain.OutcomePositive)
	want := 0.6*100 + 0.4*20
	if got := TemporalScore(events); !approx(got, want) {
		t.Errorf("expected %.2f, got %.2f", want, got)
	}
}

func TestTemporalScoreLongHistory(t *testing.T) {
	// 62 weekly events span 427 days (~14 months): full marks both ways.
	events := weeklyEvents(62, domain.OutcomePositive)
	if got := TemporalScore(events); !approx(got, 100) {
		t.Errorf("expected 100, got %.2f", got)
	}
}

func TestLongevitySteps(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		days int
		want float64
	}{
		{0, 20},
		{29, 20},
		{31, 40},
		{100, 60},
		{200, 80},
		{400, 100},
	}

	for _, c := range cases {
		events := []*domain.Event{
			eventAt(start, domain.OutcomePositive),
			eventAt(start.Add(time.Duration(c.days)*24*time.Hour), domain.OutcomePositive),
		}
		if got := longevity(events); !approx(got, c.want) {
			t.Errorf("span %d days: expected %.0f, got %.2f", c.days, c.want, got)
		}
	}
}

func TestChannelScoreEmpty(t *testing.T) {
	if got := ChannelScore(&domain.Entity{}); !approx(got, 30) {
		t.Errorf("expected base 30, got %.2f", got)
	}
}

func TestChannelScoreVerifiedRatio(t *testing.T) {
	e := &domain.Entity{Channels: []domain.Channel{
		{Name: "api", Verified: true},
		{Name: "email", Verified: false},
	}}
	if got := ChannelScore(e); !approx(got, 65) {
		t.Errorf("half verified: expected 65, got %.2f", got)
	}

	e.Channels[1].Verified = true
	if got := ChannelScore(e); !approx(got, 100) {
		t.Errorf("all verified: expected 100, got %.2f", got)
	}

	e.Channels = []domain.Channel{{Name: "email"}}
	if got := ChannelScore(e); !approx(got, 30) {
		t.Errorf("none verified: expected 30, got %.2f", got)
	}
}

func TestOutcomeScoreEmpty(t *testing.T) {
	if got := OutcomeScore(nil); !approx(got, 50) {
		t.Errorf("expected base 50, got %.2f", got)
	}
}

func TestOutcomeScoreRatio(t *testing.T) {
	now := time.Now()
	events := []*domain.Event{
		eventAt(now, domain.OutcomePositive),
		eventAt(now, domain.OutcomePositive),
		eventAt(now, domain.OutcomeNegative),
		eventAt(now, domain.OutcomeNeutral),
	}
	if got := OutcomeScore(events); !approx(got, 50) {
		t.Errorf("2/4 positive: expected 50, got %.2f", got)
	}

	all := []*domain.Event{eventAt(now, domain.OutcomePositive)}
	if got := OutcomeScore(all); !approx(got, 100) {
		t.Errorf("all positive: expected 100, got %.2f", got)
	}
}

func TestNetworkScoreEmpty(t *testing.T) {
	if got := NetworkScore(&domain.Entity{}); !approx(got, 40) {
		t.Errorf("expected base 40, got %.2f", got)
	}
}

func TestNetworkScoreStrongThreshold(t *testing.T) {
	// Exactly 70 is not strong; strictly above 70 is.
	e := &domain.Entity{Connections: []domain.Connection{
		{EntityID: "a", TrustScore: 70},
		{EntityID: "b", TrustScore: 70.1},
	}}
	if got := NetworkScore(e); !approx(got, 70) {
		t.Errorf("1/2 strong: expected 70, got %.2f", got)
	}

	e.Connections = []domain.Connection{{EntityID: "b", TrustScore: 95}}
	if got := NetworkScore(e); !approx(got, 100) {
		t.Errorf("all strong: expected 100, got %.2f", got)
	}
}

func TestJusticeScoreThresholds(t *testing.T) {
	if got := JusticeScore(&domain.Entity{}); !approx(got, 50) {
		t.Errorf("expected base 50, got %.2f", got)
	}

	// Boundary values do not earn the bonus.
	boundary := &domain.Entity{
		DisputeResolutionRate: 0.8,
		TransparencyScore:     0.7,
		FairnessRating:        0.75,
	}
	if got := JusticeScore(boundary); !approx(got, 50) {
		t.Errorf("boundary values: expected 50, got %.2f", got)
	}

	full := &domain.Entity{
		DisputeResolutionRate: 0.81,
		TransparencyScore:     0.71,
		FairnessRating:        0.76,
	}
	if got := JusticeScore(full); !approx(got, 100) {
		t.Errorf("all above threshold: expected 100, got %.2f", got)
	}
}

func TestDimensionsEmptyInputs(t *testing.T) {
	d := Dimensions(&domain.Entity{}, nil)

	if !approx(d.Source, 50) || !approx(d.Temporal, 50) || !approx(d.Channel, 30) ||
		!approx(d.Outcome, 50) || !approx(d.Network, 40) || !approx(d.Justice, 50) {
		t.Errorf("unexpected base dimensions: %+v", d)
	}
}

func TestDimensionsAlwaysInRange(t *testing.T) {
	e := &domain.Entity{
		IdentityVerified:      true,
		BiometricVerified:     true,
		Credentials:           []domain.Credential{{Type: "a"}},
		Channels:              []domain.Channel{{Name: "api", Verified: true}},
		Connections:           []domain.Connection{{EntityID: "x", TrustScore: 99}},
		DisputeResolutionRate: 1.0,
		TransparencyScore:     1.0,
		FairnessRating:        1.0,
	}
	d := Dimensions(e, weeklyEvents(100, domain.OutcomePositive))

	for name, v := range map[string]float64{
		"source": d.Source, "temporal": d.Temporal, "channel": d.Channel,
		"outcome": d.Outcome, "network": d.Network, "justice": d.Justice,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s out of range: %.2f", name, v)
		}
	}
}
