// Package insights provides the CEL-Go based insight rule engine.
// Insight rules are boolean expressions over a finished trust
// calculation; a triggered rule attaches an explanation record to the
// result. The engine consumes the scoring core's output and never
// participates in the scoring itself.
package insights

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/chittyos/chittytrust/internal/domain"
)

// Engine is the CEL-based insight rule engine.
type Engine struct {
	mu             sync.RWMutex
	env            *cel.Env
	compiledRules  map[string]*CompiledRule
	activityGetter ActivityGetter
	maxWorkers     int
}

// CompiledRule holds a pre-compiled CEL program.
type CompiledRule struct {
	Config  *domain.InsightRule
	Program cel.Program
}

// ActivityGetter is a function that returns the event count for an entity
// in a time window. Exposed to rules as the recent_events variable.
type ActivityGetter func(ctx context.Context, tenantID, entityID string, windowSecs int) (int64, error)

// NewEngine creates a new insight rule engine.
func NewEngine(activityGetter ActivityGetter, maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	// CEL environment exposing the trust calculation
	env, err := cel.NewEnv(
		cel.Variable("source", cel.DoubleType),
		cel.Variable("temporal", cel.DoubleType),
		cel.Variable("channel", cel.DoubleType),
		cel.Variable("outcome", cel.DoubleType),
		cel.Variable("network", cel.DoubleType),
		cel.Variable("justice", cel.DoubleType),
		cel.Variable("people", cel.DoubleType),
		cel.Variable("legal", cel.DoubleType),
		cel.Variable("state", cel.DoubleType),
		cel.Variable("composite", cel.DoubleType),
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("level", cel.StringType),
		cel.Variable("event_count", cel.IntType),
		cel.Variable("recent_events", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:            env,
		compiledRules:  make(map[string]*CompiledRule),
		activityGetter: activityGetter,
		maxWorkers:     maxWorkers,
	}, nil
}

// ValidateRule compiles and validates a rule without mutating loaded engine rules.
func (e *Engine) ValidateRule(cfg *domain.InsightRule) error {
	if cfg == nil {
		return fmt.Errorf("insight rule config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(cfg *domain.InsightRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.compiledRules[cfg.ID] = compiled

	return nil
}

// LoadRules compiles and loads multiple rules.
func (e *Engine) LoadRules(configs []*domain.InsightRule) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadRule(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput holds the calculation data for insight evaluation.
type EvaluateInput struct {
	TenantID       string
	EntityID       string
	Result         *domain.TrustResult
	ActivityWindow int // seconds; 0 disables the recent_events lookup
}

// EvaluateAll evaluates all loaded rules against the trust result and
// returns the triggered insights. Rule evaluation errors disable the
// insight silently; explanations never block a scoring response.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) []domain.Insight {
	e.mu.RLock()
	rules := make([]*CompiledRule, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		rules = append(rules, rule)
	}
	e.mu.RUnlock()

	if len(rules) == 0 || input == nil || input.Result == nil {
		return nil
	}

	// Get recent activity count if getter is available
	var recentEvents int64
	if e.activityGetter != nil && input.ActivityWindow > 0 {
		count, err := e.activityGetter(ctx, input.TenantID, input.EntityID, input.ActivityWindow)
		if err == nil {
			recentEvents = count
		}
	}

	r := input.Result
	activation := map[string]any{
		"source":        r.Dimensions.Source,
		"temporal":      r.Dimensions.Temporal,
		"channel":       r.Dimensions.Channel,
		"outcome":       r.Dimensions.Outcome,
		"network":       r.Dimensions.Network,
		"justice":       r.Dimensions.Justice,
		"people":        r.Outputs.People,
		"legal":         r.Outputs.Legal,
		"state":         r.Outputs.State,
		"composite":     r.Outputs.Composite,
		"confidence":    r.Confidence,
		"level":         string(r.Level),
		"event_count":   int64(r.Metadata.EventsEvaluated),
		"recent_events": recentEvents,
	}

	// Parallel evaluation using worker pool pattern
	triggered := make([]*domain.Insight, len(rules))
	var wg sync.WaitGroup

	// Limit concurrency with semaphore
	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, cr *CompiledRule) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			out, _, err := cr.Program.Eval(activation)
			if err != nil {
				return
			}
			if b, ok := out.(types.Bool); ok && bool(b) {
				triggered[idx] = &domain.Insight{
					RuleID:      cr.Config.ID,
					Category:    cr.Config.Category,
					Title:       cr.Config.Title,
					Description: cr.Config.Description,
					Impact:      cr.Config.Impact,
				}
			}
		}(i, rule)
	}

	wg.Wait()

	insights := make([]domain.Insight, 0, len(rules))
	for _, ins := range triggered {
		if ins != nil {
			insights = append(insights, *ins)
		}
	}
	return insights
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// ReloadRules clears all existing rules and loads new ones.
// This enables hot-reloading of rules from the database.
func (e *Engine) ReloadRules(configs []*domain.InsightRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newRules := make(map[string]*CompiledRule)

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		compiled, err := e.compileRule(cfg)
		if err != nil {
			return err
		}
		newRules[cfg.ID] = compiled
	}

	e.compiledRules = newRules

	return nil
}

// GetLoadedRules returns the currently loaded rule configurations.
func (e *Engine) GetLoadedRules() []*domain.InsightRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.InsightRule, 0, len(e.compiledRules))
	for _, compiled := range e.compiledRules {
		rules = append(rules, compiled.Config)
	}
	return rules
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledRules = make(map[string]*CompiledRule)
	return nil
}

func (e *Engine) compileRule(cfg *domain.InsightRule) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile insight rule %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("insight rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for insight rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{
		Config:  cfg,
		Program: program,
	}, nil
}
