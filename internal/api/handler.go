package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chittyos/chittytrust/internal/domain"
	"github.com/chittyos/chittytrust/internal/insights"
	"github.com/chittyos/chittytrust/internal/repository"
	"github.com/chittyos/chittytrust/internal/trust"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo    domain.Repository
	cache   domain.Cache
	bus     domain.EventBus
	engine  *trust.Engine
	insight *insights.Engine
	version string

	resultTTL      time.Duration
	activityWindow int
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *trust.Engine, insight *insights.Engine, version string, resultTTL time.Duration, activityWindow int) *Handler {
	return &Handler{
		repo:           repo,
		cache:          cache,
		bus:            bus,
		engine:         engine,
		insight:        insight,
		version:        version,
		resultTTL:      resultTTL,
		activityWindow: activityWindow,
	}
}

// CreateEntity handles POST /entities requests.
func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	var req domain.EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	entity := req.ToEntity(tenantID)

	if err := h.repo.SaveEntity(ctx, tenantID, entity); err != nil {
		slog.Error("failed to save entity", "entity_id", entity.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save entity",
		})
		return
	}

	slog.Info("entity registered",
		"entity_id", entity.ID,
		"tenant_id", tenantID,
		"type", entity.Type,
	)
	writeJSON(w, http.StatusCreated, entity)
}

// GetEntity retrieves an entity by ID.
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	entityID := chi.URLParam(r, "id")

	if entityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "entity id is required",
		})
		return
	}

	entity, err := h.repo.GetEntity(ctx, tenantID, entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "entity not found",
			})
			return
		}
		slog.Error("failed to get entity", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get entity",
		})
		return
	}

	writeJSON(w, http.StatusOK, entity)
}

// RecordEvent handles POST /entities/{id}/events requests.
// The event is persisted and announced on the bus so async workers can
// recalculate the entity's trust profile.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)
	entityID := chi.URLParam(r, "id")

	if entityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "entity id is required",
		})
		return
	}

	var req domain.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "type is required",
		})
		return
	}

	// Events only attach to registered entities
	if _, err := h.repo.GetEntity(ctx, tenantID, entityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "entity not found",
			})
			return
		}
		slog.Error("failed to get entity", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get entity",
		})
		return
	}

	event := req.ToEvent(tenantID, entityID)
	event.ID = uuid.New().String()

	if err := h.repo.SaveEvent(ctx, tenantID, event); err != nil {
		slog.Error("failed to save event", "event_id", event.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save event",
		})
		return
	}

	eventsRecorded.Inc()

	// Announce for async recalculation
	if h.bus != nil {
		payload, _ := json.Marshal(domain.EventMessage{
			EventID:  event.ID,
			TenantID: tenantID,
			EntityID: entityID,
			TraceID:  traceID,
			Type:     string(event.Type),
			Outcome:  string(event.Outcome),
		})
		if err := h.bus.Publish(ctx, tenantID, domain.TopicEventRecorded, payload); err != nil {
			slog.Error("failed to publish event recorded", "event_id", event.ID, "error", err)
		}
	}

	slog.Info("event recorded",
		"event_id", event.ID,
		"entity_id", entityID,
		"tenant_id", tenantID,
		"type", event.Type,
		"outcome", event.Outcome,
	)
	writeJSON(w, http.StatusCreated, event)
}

// Calculate handles POST /trust/{id}/calculate requests.
// Calculation is synchronous: load the entity and its full event history,
// score it, persist and cache the result. Identical inputs are served
// from the result cache.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	entityID := chi.URLParam(r, "id")

	if entityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "entity id is required",
		})
		return
	}

	entity, err := h.repo.GetEntity(ctx, tenantID, entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "entity not found",
			})
			return
		}
		slog.Error("failed to get entity", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get entity",
		})
		return
	}

	events, err := h.repo.ListEvents(ctx, tenantID, entityID, time.Time{})
	if err != nil {
		slog.Error("failed to list events", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load events",
		})
		return
	}

	// Identical scoring inputs produce identical scores, so a fingerprint
	// match can short-circuit the calculation entirely.
	fp := trust.Fingerprint(entity, events)
	var result *domain.TrustResult
	cacheHit := false
	if h.cache != nil {
		if cached, err := h.cache.GetResult(ctx, tenantID, entityID, fp); err == nil && cached != nil {
			result = cached
			cacheHit = true
		}
	}

	if result == nil {
		var previousLevel domain.TrustLevel
		if prev, err := h.repo.GetLatestResult(ctx, tenantID, entityID); err == nil && prev != nil {
			previousLevel = prev.Level
		}

		result = h.engine.Calculate(ctx, entity, events)
		result.Metadata.TotalMs = time.Since(start).Milliseconds()

		if err := h.repo.SaveResult(ctx, tenantID, result); err != nil {
			slog.Error("failed to save trust result", "entity_id", entityID, "error", err)
		}
		if h.cache != nil {
			_ = h.cache.SetResult(ctx, tenantID, entityID, fp, result, h.resultTTL)
		}

		if h.bus != nil && previousLevel != "" && previousLevel != result.Level {
			payload, _ := json.Marshal(domain.LevelChange{
				TenantID:  tenantID,
				EntityID:  entityID,
				ResultID:  result.ID,
				Previous:  previousLevel,
				Current:   result.Level,
				Composite: result.Outputs.Composite,
			})
			if err := h.bus.Publish(ctx, tenantID, domain.TopicLevelChanged, payload); err != nil {
				slog.Error("failed to publish level change", "entity_id", entityID, "error", err)
			}
		}
	}
	result.Metadata.CacheHit = cacheHit

	var triggered []domain.Insight
	if h.insight != nil && h.insight.RulesCount() > 0 {
		triggered = h.insight.EvaluateAll(ctx, &insights.EvaluateInput{
			TenantID:       tenantID,
			EntityID:       entityID,
			Result:         result,
			ActivityWindow: h.activityWindow,
		})
	}

	recordCalculation(time.Since(start).Milliseconds(), cacheHit)

	slog.Info("trust calculated",
		"entity_id", entityID,
		"tenant_id", tenantID,
		"level", result.Level,
		"composite", result.Outputs.Composite,
		"cache_hit", cacheHit,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, result.ToResponse(triggered))
}

// GetTrust returns the most recent trust result for an entity.
func (h *Handler) GetTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	entityID := chi.URLParam(r, "id")

	if entityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "entity id is required",
		})
		return
	}

	result, err := h.repo.GetLatestResult(ctx, tenantID, entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "no trust result for entity",
			})
			return
		}
		slog.Error("failed to get latest result", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get trust result",
		})
		return
	}

	writeJSON(w, http.StatusOK, result.ToResponse(nil))
}

// GetTrustHistory returns past trust results for an entity,
// optionally bounded by a ?since=RFC3339 timestamp.
func (h *Handler) GetTrustHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	entityID := chi.URLParam(r, "id")

	if entityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "entity id is required",
		})
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "since must be an RFC3339 timestamp",
			})
			return
		}
		since = parsed
	}

	results, err := h.repo.ListResults(ctx, tenantID, entityID, since)
	if err != nil {
		slog.Error("failed to list results", "entity_id", entityID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list trust results",
		})
		return
	}

	history := make([]*domain.TrustResponse, 0, len(results))
	for _, res := range results {
		history = append(history, res.ToResponse(nil))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entityId": entityID,
		"results":  history,
		"count":    len(history),
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListInsightRules returns all loaded insight rules from the engine.
// Rules are loaded from the database at startup and can be reloaded via
// POST /insights/rules/reload.
func (h *Handler) ListInsightRules(w http.ResponseWriter, r *http.Request) {
	loadedRules := h.insight.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":  loadedRules,
		"count":  len(loadedRules),
		"source": "database",
	})
}

// GetInsightRule retrieves an insight rule by ID from the loaded engine rules.
func (h *Handler) GetInsightRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	for _, rule := range h.insight.GetLoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateInsightRuleRequest is the request body for creating an insight rule.
type CreateInsightRuleRequest struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
	Impact      string `json:"impact,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// GlobalTenantID is used for insight rules that apply to all tenants.
const GlobalTenantID = "*"

// CreateInsightRule creates a new insight rule and saves it to the database.
// Rules are saved globally (tenant_id = "*") so they apply to all tenants.
// After saving, call POST /insights/rules/reload to hot-reload into the engine.
func (h *Handler) CreateInsightRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateInsightRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" || req.Title == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, title, and expression are required",
		})
		return
	}

	impact := req.Impact
	switch impact {
	case domain.ImpactHigh, domain.ImpactMedium, domain.ImpactLow:
	case "":
		impact = domain.ImpactMedium
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "impact must be high, medium, or low",
		})
		return
	}

	rule := &domain.InsightRule{
		ID:          req.ID,
		TenantID:    GlobalTenantID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Impact:      impact,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.insight.LoadRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.SaveInsightRule(ctx, GlobalTenantID, rule); err != nil {
			slog.Error("failed to save insight rule", "id", rule.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	slog.Info("insight rule created", "id", rule.ID, "title", rule.Title)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule":    rule,
		"message": "Rule created. Call POST /insights/rules/reload to apply changes.",
	})
}

// DeleteInsightRule deletes an insight rule and auto-reloads the engine.
func (h *Handler) DeleteInsightRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.DeleteInsightRule(ctx, GlobalTenantID, ruleID); err != nil {
			slog.Error("failed to delete insight rule", "id", ruleID, "error", err)
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "rule not found",
			})
			return
		}

		// Auto-reload after delete
		dbRules, err := h.repo.ListInsightRules(ctx, GlobalTenantID)
		if err != nil {
			slog.Error("failed to reload insight rules after delete", "error", err)
		} else if err := h.insight.ReloadRules(dbRules); err != nil {
			slog.Error("failed to reload insight rules into engine", "error", err)
		}
	}

	slog.Info("insight rule deleted", "id", ruleID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Rule deleted and engine reloaded.",
	})
}

// ReloadInsightRules reloads all insight rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadInsightRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	dbRules, err := h.repo.ListInsightRules(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list insight rules from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load rules from database",
		})
		return
	}

	if err := h.insight.ReloadRules(dbRules); err != nil {
		slog.Error("failed to reload insight rules into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("insight rules reloaded from database", "count", len(dbRules))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rules reloaded successfully",
		"count":   len(dbRules),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
