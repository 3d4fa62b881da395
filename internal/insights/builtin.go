package insights

import "github.com/chittyos/chittytrust/internal/domain"

// BuiltinRules returns the default insight rules loaded when the
// database has none configured. All are replaceable via the API.
func BuiltinRules() []*domain.InsightRule {
	return []*domain.InsightRule{
		{
			ID:          "insight-strong-identity",
			Category:    "strength",
			Title:       "Strong identity verification",
			Description: "Identity, credential, and biometric checks put this entity in the top source tier.",
			Version:     "1.0.0",
			Expression:  "source >= 90.0",
			Impact:      domain.ImpactHigh,
			Enabled:     true,
		},
		{
			ID:          "insight-unverified-channels",
			Category:    "risk",
			Title:       "Unverified communication channels",
			Description: "Most registered channels are unverified; channel-based claims carry little weight.",
			Version:     "1.0.0",
			Expression:  "channel < 50.0",
			Impact:      domain.ImpactMedium,
			Enabled:     true,
		},
		{
			ID:          "insight-dispute-pattern",
			Category:    "risk",
			Title:       "Negative outcome pattern",
			Description: "A low share of positive outcomes is dragging the composite score down.",
			Version:     "1.0.0",
			Expression:  "outcome < 40.0 && event_count >= 5",
			Impact:      domain.ImpactHigh,
			Enabled:     true,
		},
		{
			ID:          "insight-thin-history",
			Category:    "opportunity",
			Title:       "Limited event history",
			Description: "Confidence is low because little history backs this score; more recorded activity will firm it up.",
			Version:     "1.0.0",
			Expression:  "confidence < 0.7",
			Impact:      domain.ImpactLow,
			Enabled:     true,
		},
		{
			ID:          "insight-institutional",
			Category:    "strength",
			Title:       "Institutional-grade trust",
			Description: "Composite score and history qualify this entity for the highest trust tier.",
			Version:     "1.0.0",
			Expression:  "level == 'L4_INSTITUTIONAL' && confidence >= 0.85",
			Impact:      domain.ImpactHigh,
			Enabled:     true,
		},
		{
			ID:          "insight-active-entity",
			Category:    "strength",
			Title:       "Recently active",
			Description: "Sustained recent activity supports the temporal consistency score.",
			Version:     "1.0.0",
			Expression:  "recent_events >= 5 && temporal >= 60.0",
			Impact:      domain.ImpactMedium,
			Enabled:     true,
		},
	}
}
