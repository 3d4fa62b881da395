package insights

import (
	"context"
	"testing"

	"github.com/chittyos/chittytrust/internal/domain"
)

func testResult() *domain.TrustResult {
	return &domain.TrustResult{
		ID:       "r-1",
		EntityID: "e-1",
		Dimensions: domain.DimensionScores{
			Source:   92,
			Temporal: 70,
			Channel:  45,
			Outcome:  80,
			Network:  60,
			Justice:  75,
		},
		Outputs: domain.OutputScores{
			People:    68,
			Legal:     73,
			State:     78,
			Composite: 72,
		},
		Confidence: 0.85,
		Level:      domain.LevelEnhanced,
		Metadata:   domain.ResultMetadata{EventsEvaluated: 12},
	}
}

func TestEngineCreation(t *testing.T) {
	engine, err := NewEngine(nil, 5)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.RulesCount() != 0 {
		t.Errorf("expected 0 rules, got %d", engine.RulesCount())
	}
}

func TestLoadRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.InsightRule{
		ID:         "test-rule-001",
		Title:      "Test Rule",
		Expression: "source >= 90.0",
		Enabled:    true,
	}

	if err := engine.LoadRule(rule); err != nil {
		t.Fatalf("failed to load rule: %v", err)
	}

	if engine.RulesCount() != 1 {
		t.Errorf("expected 1 rule, got %d", engine.RulesCount())
	}
}

func TestLoadInvalidRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.InsightRule{
		ID:         "invalid-rule",
		Title:      "Invalid Rule",
		Expression: "this is not valid CEL !!!",
		Enabled:    true,
	}

	if err := engine.LoadRule(rule); err == nil {
		t.Error("expected error for invalid CEL expression")
	}
}

func TestLoadNonBoolRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.InsightRule{
		ID:         "non-bool",
		Title:      "Non Bool",
		Expression: "source + temporal",
		Enabled:    true,
	}

	if err := engine.LoadRule(rule); err == nil {
		t.Error("expected error for non-bool expression")
	}
}

func TestEvaluateTriggersMatchingRules(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	engine.LoadRule(&domain.InsightRule{
		ID:         "strong-source",
		Category:   "strength",
		Title:      "Strong identity",
		Expression: "source >= 90.0",
		Impact:     domain.ImpactHigh,
		Enabled:    true,
	})
	engine.LoadRule(&domain.InsightRule{
		ID:         "weak-channel",
		Category:   "risk",
		Title:      "Unverified channels",
		Expression: "channel < 50.0",
		Impact:     domain.ImpactMedium,
		Enabled:    true,
	})
	engine.LoadRule(&domain.InsightRule{
		ID:         "institutional",
		Category:   "strength",
		Title:      "Institutional",
		Expression: "level == 'L4_INSTITUTIONAL'",
		Enabled:    true,
	})

	insights := engine.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-001",
		EntityID: "e-1",
		Result:   testResult(),
	})

	if len(insights) != 2 {
		t.Fatalf("expected 2 triggered insights, got %d", len(insights))
	}

	byID := make(map[string]domain.Insight)
	for _, ins := range insights {
		byID[ins.RuleID] = ins
	}
	if _, ok := byID["strong-source"]; !ok {
		t.Error("strong-source should trigger for source=92")
	}
	if _, ok := byID["weak-channel"]; !ok {
		t.Error("weak-channel should trigger for channel=45")
	}
	if _, ok := byID["institutional"]; ok {
		t.Error("institutional should not trigger for L2")
	}
}

func TestEvaluateUsesEventCount(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	engine.LoadRule(&domain.InsightRule{
		ID:         "thin-history",
		Title:      "Thin history",
		Expression: "event_count < 5",
		Enabled:    true,
	})

	result := testResult()
	result.Metadata.EventsEvaluated = 3

	insights := engine.EvaluateAll(context.Background(), &EvaluateInput{Result: result})
	if len(insights) != 1 {
		t.Fatalf("expected thin-history to trigger, got %d insights", len(insights))
	}
}

func TestEvaluateRecentEventsFromActivityGetter(t *testing.T) {
	getter := func(ctx context.Context, tenantID, entityID string, windowSecs int) (int64, error) {
		return 42, nil
	}

	engine, _ := NewEngine(getter, 5)
	defer engine.Close()

	engine.LoadRule(&domain.InsightRule{
		ID:         "active",
		Title:      "Active entity",
		Expression: "recent_events >= 40",
		Enabled:    true,
	})

	// Without a window the getter is skipped and recent_events is 0.
	insights := engine.EvaluateAll(context.Background(), &EvaluateInput{Result: testResult()})
	if len(insights) != 0 {
		t.Fatalf("expected no insights without activity window, got %d", len(insights))
	}

	insights = engine.EvaluateAll(context.Background(), &EvaluateInput{
		Result:         testResult(),
		ActivityWindow: 3600,
	})
	if len(insights) != 1 {
		t.Fatalf("expected active rule to trigger, got %d insights", len(insights))
	}
}

func TestEvaluateNilResult(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	engine.LoadRule(&domain.InsightRule{
		ID:         "always",
		Title:      "Always",
		Expression: "composite >= 0.0",
		Enabled:    true,
	})

	if got := engine.EvaluateAll(context.Background(), nil); got != nil {
		t.Error("nil input should yield no insights")
	}
	if got := engine.EvaluateAll(context.Background(), &EvaluateInput{}); got != nil {
		t.Error("nil result should yield no insights")
	}
}

func TestLoadRulesSkipsDisabled(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rules := []*domain.InsightRule{
		{ID: "on", Title: "On", Expression: "composite > 0.0", Enabled: true},
		{ID: "off", Title: "Off", Expression: "composite > 0.0", Enabled: false},
	}

	if err := engine.LoadRules(rules); err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}
	if engine.RulesCount() != 1 {
		t.Errorf("expected 1 enabled rule, got %d", engine.RulesCount())
	}
}

func TestReloadRulesReplaces(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	engine.LoadRule(&domain.InsightRule{ID: "old", Title: "Old", Expression: "composite > 0.0", Enabled: true})

	err := engine.ReloadRules([]*domain.InsightRule{
		{ID: "new-1", Title: "New 1", Expression: "source > 0.0", Enabled: true},
		{ID: "new-2", Title: "New 2", Expression: "justice > 0.0", Enabled: true},
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if engine.RulesCount() != 2 {
		t.Errorf("expected 2 rules after reload, got %d", engine.RulesCount())
	}
	for _, rule := range engine.GetLoadedRules() {
		if rule.ID == "old" {
			t.Error("old rule should be gone after reload")
		}
	}
}

func TestBuiltinRulesCompile(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	if err := engine.LoadRules(BuiltinRules()); err != nil {
		t.Fatalf("built-in rules must compile: %v", err)
	}
	if engine.RulesCount() == 0 {
		t.Error("expected built-in rules to load")
	}
}

func TestValidateRuleDoesNotLoad(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.InsightRule{ID: "v", Title: "V", Expression: "composite > 50.0", Enabled: true}
	if err := engine.ValidateRule(rule); err != nil {
		t.Fatalf("validation failed: %v", err)
	}
	if engine.RulesCount() != 0 {
		t.Error("validate should not load the rule")
	}
}
