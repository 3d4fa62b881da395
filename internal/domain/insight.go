package domain

// InsightRule defines a configurable explanation rule evaluated against
// a completed trust calculation. The expression is a CEL boolean over the
// dimension/output scores; when it evaluates true the rule's insight is
// attached to the result.
type InsightRule struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Category    string `json:"category"` // e.g. "strength", "risk", "opportunity"
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression over the calculation activation
	Expression string `json:"expression"`

	// Impact of the insight on the reader's interpretation
	Impact string `json:"impact"` // "high", "medium", "low"

	// Whether rule is active
	Enabled bool `json:"enabled"`
}

// Insight is a triggered explanation attached to a trust result.
type Insight struct {
	RuleID      string `json:"ruleId"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Insight impact levels.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)
