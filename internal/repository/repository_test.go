package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

func TestSQLiteRepository(t *testing.T) {
	// Create temp database file
	tmpFile, err := os.CreateTemp("", "chittytrust-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetEntity", func(t *testing.T) {
		entity := &domain.Entity{
			ID:               "entity-001",
			TenantID:         tenantID,
			Type:             domain.EntityPerson,
			Name:             "Alice Chen",
			IdentityVerified: true,
			Credentials: []domain.Credential{
				{Type: "government_id", Issuer: "state", Status: "active"},
			},
			Channels: []domain.Channel{
				{Name: "verified_api", Verified: true},
			},
			Connections: []domain.Connection{
				{EntityID: "entity-002", TrustScore: 85},
			},
			DisputeResolutionRate: 0.95,
			TransparencyScore:     0.9,
			FairnessRating:        0.9,
			CreatedAt:             time.Now().UTC(),
			Metadata:              map[string]interface{}{"source": "api"},
		}

		if err := repo.SaveEntity(ctx, tenantID, entity); err != nil {
			t.Fatalf("SaveEntity failed: %v", err)
		}

		retrieved, err := repo.GetEntity(ctx, tenantID, entity.ID)
		if err != nil {
			t.Fatalf("GetEntity failed: %v", err)
		}

		if retrieved.ID != entity.ID {
			t.Errorf("expected ID %s, got %s", entity.ID, retrieved.ID)
		}
		if retrieved.Name != entity.Name {
			t.Errorf("expected Name %s, got %s", entity.Name, retrieved.Name)
		}
		if !retrieved.IdentityVerified {
			t.Error("expected IdentityVerified to survive round-trip")
		}
		if len(retrieved.Credentials) != 1 {
			t.Errorf("expected 1 credential, got %d", len(retrieved.Credentials))
		}
		if len(retrieved.Connections) != 1 || retrieved.Connections[0].TrustScore != 85 {
			t.Errorf("unexpected connections: %+v", retrieved.Connections)
		}
		if retrieved.DisputeResolutionRate != 0.95 {
			t.Errorf("expected DisputeResolutionRate 0.95, got %v", retrieved.DisputeResolutionRate)
		}
		if retrieved.TenantID != tenantID {
			t.Errorf("expected TenantID %s, got %s", tenantID, retrieved.TenantID)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		otherTenant := "tenant-002"

		_, err := repo.GetEntity(ctx, otherTenant, "entity-001")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		entity := &domain.Entity{ID: "entity-test"}

		err := repo.SaveEntity(ctx, "", entity)
		if err == nil {
			t.Error("expected error for empty tenantID")
		}

		_, err = repo.GetEntity(ctx, "", "entity-001")
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("SaveAndListEvents", func(t *testing.T) {
		base := time.Now().UTC().Add(-48 * time.Hour)

		events := []*domain.Event{
			{
				ID:        "ev-001",
				EntityID:  "entity-001",
				Type:      domain.EventTransaction,
				Timestamp: base,
				Outcome:   domain.OutcomePositive,
				Impact:    2.0,
				CreatedAt: time.Now().UTC(),
			},
			{
				ID:        "ev-002",
				EntityID:  "entity-001",
				Type:      domain.EventDispute,
				Timestamp: base.Add(24 * time.Hour),
				Outcome:   domain.OutcomeNegative,
				Impact:    5.0,
				CreatedAt: time.Now().UTC(),
			},
		}

		for _, ev := range events {
			if err := repo.SaveEvent(ctx, tenantID, ev); err != nil {
				t.Fatalf("SaveEvent failed: %v", err)
			}
		}

		listed, err := repo.ListEvents(ctx, tenantID, "entity-001", time.Time{})
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("expected 2 events, got %d", len(listed))
		}

		// Since filter excludes the older event
		recent, err := repo.ListEvents(ctx, tenantID, "entity-001", base.Add(time.Hour))
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(recent) != 1 {
			t.Errorf("expected 1 event after since filter, got %d", len(recent))
		}
		if len(recent) == 1 && recent[0].ID != "ev-002" {
			t.Errorf("expected ev-002, got %s", recent[0].ID)
		}
	})

	t.Run("CountEvents", func(t *testing.T) {
		count, err := repo.CountEvents(ctx, tenantID, "entity-001", time.Time{})
		if err != nil {
			t.Fatalf("CountEvents failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected count 2, got %d", count)
		}

		count, err = repo.CountEvents(ctx, tenantID, "nonexistent", time.Time{})
		if err != nil {
			t.Fatalf("CountEvents failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected count 0, got %d", count)
		}
	})

	t.Run("SaveAndGetResult", func(t *testing.T) {
		result := &domain.TrustResult{
			ID:       "res-001",
			TenantID: tenantID,
			EntityID: "entity-001",
			Dimensions: domain.DimensionScores{
				Source: 85, Temporal: 70, Channel: 65,
				Outcome: 90, Network: 58, Justice: 100,
			},
			Outputs: domain.OutputScores{
				People: 71.2, Legal: 88.5, State: 87, Composite: 81.3,
			},
			Confidence: 0.85,
			Level:      domain.LevelProfessional,
			Timestamp:  time.Now().UTC(),
			Metadata: domain.ResultMetadata{
				TraceID:         "trace-001",
				EventsEvaluated: 24,
				EngineVersion:   "chittytrust-1.0",
			},
		}

		if err := repo.SaveResult(ctx, tenantID, result); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}

		retrieved, err := repo.GetResult(ctx, tenantID, result.ID)
		if err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}

		if retrieved.ID != result.ID {
			t.Errorf("expected ID %s, got %s", result.ID, retrieved.ID)
		}
		if retrieved.Outputs.Composite != result.Outputs.Composite {
			t.Errorf("expected composite %.2f, got %.2f", result.Outputs.Composite, retrieved.Outputs.Composite)
		}
		if retrieved.Level != domain.LevelProfessional {
			t.Errorf("expected level %s, got %s", domain.LevelProfessional, retrieved.Level)
		}
		if retrieved.Metadata.EventsEvaluated != 24 {
			t.Errorf("expected 24 events evaluated, got %d", retrieved.Metadata.EventsEvaluated)
		}
	})

	t.Run("GetLatestResult", func(t *testing.T) {
		newer := &domain.TrustResult{
			ID:         "res-002",
			TenantID:   tenantID,
			EntityID:   "entity-001",
			Outputs:    domain.OutputScores{Composite: 84.1},
			Confidence: 0.85,
			Level:      domain.LevelProfessional,
			Timestamp:  time.Now().UTC().Add(time.Minute),
		}

		if err := repo.SaveResult(ctx, tenantID, newer); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}

		latest, err := repo.GetLatestResult(ctx, tenantID, "entity-001")
		if err != nil {
			t.Fatalf("GetLatestResult failed: %v", err)
		}
		if latest.ID != "res-002" {
			t.Errorf("expected res-002 as latest, got %s", latest.ID)
		}
	})

	t.Run("ListResults", func(t *testing.T) {
		results, err := repo.ListResults(ctx, tenantID, "entity-001", time.Time{})
		if err != nil {
			t.Fatalf("ListResults failed: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected 2 results, got %d", len(results))
		}
	})

	t.Run("InsightRuleCRUD", func(t *testing.T) {
		rule := &domain.InsightRule{
			ID:          "rule-001",
			Category:    "strength",
			Title:       "Strong identity",
			Description: "Identity signals are well established",
			Version:     "1.0",
			Expression:  "source >= 80.0",
			Impact:      domain.ImpactHigh,
			Enabled:     true,
		}

		if err := repo.SaveInsightRule(ctx, tenantID, rule); err != nil {
			t.Fatalf("SaveInsightRule failed: %v", err)
		}

		retrieved, err := repo.GetInsightRule(ctx, tenantID, rule.ID)
		if err != nil {
			t.Fatalf("GetInsightRule failed: %v", err)
		}
		if retrieved.Expression != rule.Expression {
			t.Errorf("expected expression %q, got %q", rule.Expression, retrieved.Expression)
		}
		if !retrieved.Enabled {
			t.Error("expected rule to be enabled")
		}

		rules, err := repo.ListInsightRules(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListInsightRules failed: %v", err)
		}
		if len(rules) != 1 {
			t.Errorf("expected 1 rule, got %d", len(rules))
		}

		if err := repo.DeleteInsightRule(ctx, tenantID, rule.ID); err != nil {
			t.Fatalf("DeleteInsightRule failed: %v", err)
		}

		_, err = repo.GetInsightRule(ctx, tenantID, rule.ID)
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound after delete, got: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetEntity(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		_, err = repo.GetResult(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		_, err = repo.GetLatestResult(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		err = repo.DeleteInsightRule(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := domain.RepositoryConfig{
		Driver: "mysql",
	}

	_, err := New(cfg)
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	repo := &SQLRepository{driver: "postgres"}

	tests := []struct {
		input    string
		expected string
	}{
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"SELECT * FROM t", "SELECT * FROM t"},
	}

	for _, tt := range tests {
		result := repo.rebind(tt.input)
		if result != tt.expected {
			t.Errorf("rebind(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
