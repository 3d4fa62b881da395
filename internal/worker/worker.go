// Package worker provides async trust recalculation for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
	"github.com/chittyos/chittytrust/internal/insights"
	"github.com/chittyos/chittytrust/internal/trust"
)

// Worker recalculates trust scores asynchronously from the EventBus.
// Every recorded event triggers a full recalculation of the entity's
// trust profile, so downstream consumers always see fresh levels.
type Worker struct {
	bus     domain.EventBus
	repo    domain.Repository
	cache   domain.Cache
	engine  *trust.Engine
	insight *insights.Engine

	resultTTL      time.Duration
	activityWindow int

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process (empty = all via wildcard if supported)
	TenantIDs []string

	// ResultTTL is how long recalculated results stay in the cache.
	ResultTTL time.Duration

	// ActivityWindow is the recent-activity lookback in seconds for insight rules.
	ActivityWindow int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, cache domain.Cache, engine *trust.Engine, insight *insights.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:     bus,
		repo:    repo,
		cache:   cache,
		engine:  engine,
		insight: insight,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing messages for the given tenants.
func (w *Worker) Start(cfg Config) error {
	w.resultTTL = cfg.ResultTTL
	w.activityWindow = cfg.ActivityWindow

	if len(cfg.TenantIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all tenants (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	// Subscribe using a special "global" tenant ID
	// In production, you'd want to subscribe with wildcards or JetStream
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicEventRecorded, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startTenantWorker starts workers for a specific tenant.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicEventRecorded, func(ctx context.Context, msg *domain.Message) error {
		return w.processEvent(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicEventRecorded,
	)

	return nil
}

// handleMessage handles messages from global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processEvent(ctx, msg.TenantID, msg)
}

// processEvent recalculates the entity's trust profile after a new event.
func (w *Worker) processEvent(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	var evtMsg domain.EventMessage
	if err := json.Unmarshal(msg.Payload, &evtMsg); err != nil {
		slog.Error("failed to parse event message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message tenant if provided
	if evtMsg.TenantID != "" {
		tenantID = evtMsg.TenantID
	}

	traceID := evtMsg.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	slog.Debug("recalculating trust",
		"entity_id", evtMsg.EntityID,
		"tenant_id", tenantID,
		"trace_id", traceID,
	)

	// 1. Load entity and its full event history
	entity, err := w.repo.GetEntity(ctx, tenantID, evtMsg.EntityID)
	if err != nil {
		slog.Error("failed to load entity",
			"entity_id", evtMsg.EntityID,
			"error", err,
		)
		return err
	}

	events, err := w.repo.ListEvents(ctx, tenantID, evtMsg.EntityID, time.Time{})
	if err != nil {
		slog.Error("failed to load events",
			"entity_id", evtMsg.EntityID,
			"error", err,
		)
		return err
	}

	// 2. Previous level, for boundary-crossing detection
	var previousLevel domain.TrustLevel
	if prev, err := w.repo.GetLatestResult(ctx, tenantID, evtMsg.EntityID); err == nil && prev != nil {
		previousLevel = prev.Level
	}

	// 3. Calculate
	result := w.engine.Calculate(ctx, entity, events)
	result.Metadata.TotalMs = time.Since(start).Milliseconds()

	// 4. Save and cache the fresh result
	if err := w.repo.SaveResult(ctx, tenantID, result); err != nil {
		slog.Error("failed to save trust result",
			"entity_id", evtMsg.EntityID,
			"error", err,
		)
	}
	if w.cache != nil {
		fp := trust.Fingerprint(entity, events)
		_ = w.cache.SetResult(ctx, tenantID, evtMsg.EntityID, fp, result, w.resultTTL)
	}

	// 5. Evaluate insights
	var triggered []domain.Insight
	if w.insight != nil && w.insight.RulesCount() > 0 {
		triggered = w.insight.EvaluateAll(ctx, &insights.EvaluateInput{
			TenantID:       tenantID,
			EntityID:       evtMsg.EntityID,
			Result:         result,
			ActivityWindow: w.activityWindow,
		})
	}

	// 6. Publish result
	resultPayload, _ := json.Marshal(result.ToResponse(triggered))
	if err := w.bus.Publish(ctx, tenantID, domain.TopicResult, resultPayload); err != nil {
		slog.Error("failed to publish trust result",
			"entity_id", evtMsg.EntityID,
			"error", err,
		)
	}

	// 7. If the level moved, publish the transition
	if previousLevel != "" && previousLevel != result.Level {
		changePayload, _ := json.Marshal(domain.LevelChange{
			TenantID:  tenantID,
			EntityID:  evtMsg.EntityID,
			ResultID:  result.ID,
			Previous:  previousLevel,
			Current:   result.Level,
			Composite: result.Outputs.Composite,
		})
		if err := w.bus.Publish(ctx, tenantID, domain.TopicLevelChanged, changePayload); err != nil {
			slog.Error("failed to publish level change",
				"entity_id", evtMsg.EntityID,
				"error", err,
			)
		}
	}

	slog.Info("trust recalculated",
		"entity_id", evtMsg.EntityID,
		"tenant_id", tenantID,
		"level", result.Level,
		"composite", result.Outputs.Composite,
		"insights", len(triggered),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
