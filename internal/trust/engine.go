package trust

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/chittyos/chittytrust/internal/domain"
)

// EngineVersion is stamped into every result's metadata.
const EngineVersion = "chittytrust-1.0"

var tracer = otel.Tracer("chittytrust-engine")

// Engine computes trust results from entity snapshots and event history.
// It holds only immutable weight configuration, so a single Engine is
// safe for concurrent use across scoring requests.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine with the given weight table.
// The weights are validated once here; a running engine never revalidates.
func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: w}, nil
}

// Weights returns the engine's weight configuration.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Calculate produces a fully populated TrustResult for the entity and
// its event history. It is total: any input, however degenerate, yields
// a valid result. Events need not be pre-sorted; unknown outcomes are
// normalized to neutral and impact weights clamped into range.
//
// Scoring is deterministic: identical inputs always produce identical
// dimension, output, confidence, and level values. The result ID and
// timestamp are fresh per call.
func (e *Engine) Calculate(ctx context.Context, entity *domain.Entity, events []*domain.Event) *domain.TrustResult {
	start := time.Now()

	if entity == nil {
		entity = &domain.Entity{}
	}

	ctx, span := tracer.Start(ctx, "trust.calculate")
	defer span.End()
	_ = ctx

	normalized := normalizeEvents(events)

	dims := Dimensions(entity, normalized)
	outputs := e.weights.Outputs(dims)
	confidence := Confidence(len(normalized))
	level := Classify(outputs.Composite)

	span.SetAttributes(
		attribute.String("entity.id", entity.ID),
		attribute.Int("events.count", len(normalized)),
		attribute.Float64("score.composite", outputs.Composite),
		attribute.String("trust.level", string(level)),
	)

	traceID := ""
	if sc := span.SpanContext(); sc.TraceID().IsValid() {
		traceID = sc.TraceID().String()
	}

	return &domain.TrustResult{
		ID:         uuid.New().String(),
		TenantID:   entity.TenantID,
		EntityID:   entity.ID,
		Dimensions: dims,
		Outputs:    outputs,
		Confidence: confidence,
		Level:      level,
		Timestamp:  time.Now().UTC(),
		Metadata: domain.ResultMetadata{
			TraceID:         traceID,
			EventsEvaluated: len(normalized),
			CalcMs:          time.Since(start).Milliseconds(),
			EngineVersion:   EngineVersion,
		},
	}
}

// normalizeEvents returns a defensive copy of the events, sorted
// ascending by timestamp with stable tie-breaking on ID, outcomes
// normalized and impacts clamped. The caller's slice is never touched.
func normalizeEvents(events []*domain.Event) []*domain.Event {
	if len(events) == 0 {
		return nil
	}

	out := make([]*domain.Event, 0, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		cp := *ev
		cp.Outcome = domain.NormalizeOutcome(cp.Outcome)
		if cp.Impact < 0 {
			cp.Impact = 0
		}
		if cp.Impact > domain.MaxEventImpact {
			cp.Impact = domain.MaxEventImpact
		}
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})

	return out
}
