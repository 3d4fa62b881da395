//go:build integration
// +build integration

// Package integration provides end-to-end tests for the ChittyTrust scoring engine.
//
// These tests verify the COMPLETE trust pipeline:
//
//	Entity → Events → Six Dimensions → Output Scores → Level → Insights
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// UNDERSTANDING THE DOMAIN:
//
// 1. ENTITY: The subject being scored (person, organization, or agent)
//
// 2. EVENT: A trust-affecting occurrence. Each event has:
//   - Type: transaction, verification, endorsement, dispute, ...
//   - Outcome: positive, negative, neutral, or pending
//   - Impact: 0-10 weight
//
// 3. DIMENSIONS: Six 0-100 scores computed from the entity and its events:
//   - source, temporal, channel, outcome, network, justice
//
// 4. OUTPUTS: Weighted blends of the dimensions:
//   - people, legal, state, and the composite score
//
// 5. LEVEL: The composite mapped to L0_ANONYMOUS .. L4_INSTITUTIONAL
//
// The server must be running before these tests: ./chittytrust
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// TestConfig holds test environment configuration
type TestConfig struct {
	BaseURL  string
	TenantID string
}

func getTestConfig() TestConfig {
	baseURL := os.Getenv("CHITTYTRUST_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return TestConfig{
		BaseURL:  baseURL,
		TenantID: "test-tenant",
	}
}

// ============================================================================
// API Request/Response Types (matching ChittyTrust's API contract)
// ============================================================================

type EntityRequest struct {
	ID                    string       `json:"id"`
	Type                  string       `json:"type"`
	Name                  string       `json:"name,omitempty"`
	IdentityVerified      bool         `json:"identityVerified"`
	BiometricVerified     bool         `json:"biometricVerified"`
	Credentials           []Credential `json:"credentials,omitempty"`
	Channels              []Channel    `json:"channels,omitempty"`
	Connections           []Connection `json:"connections,omitempty"`
	DisputeResolutionRate float64      `json:"disputeResolutionRate"`
	TransparencyScore     float64      `json:"transparencyScore"`
	FairnessRating        float64      `json:"fairnessRating"`
}

type Credential struct {
	Type   string `json:"type"`
	Issuer string `json:"issuer,omitempty"`
}

type Channel struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

type Connection struct {
	EntityID   string  `json:"entityId"`
	TrustScore float64 `json:"trustScore"`
}

type EventRequest struct {
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Channel   string     `json:"channel,omitempty"`
	Outcome   string     `json:"outcome"`
	Impact    float64    `json:"impact"`
}

// TrustResponse is what POST /trust/{id}/calculate returns
type TrustResponse struct {
	ResultID   string          `json:"resultId"`
	EntityID   string          `json:"entityId"`
	Dimensions DimensionScores `json:"dimensions"`
	Outputs    OutputScores    `json:"outputs"`
	Confidence float64         `json:"confidence"`
	Level      string          `json:"level"`
	Insights   []Insight       `json:"insights,omitempty"`
	Metadata   ResultMetadata  `json:"metadata"`
}

type DimensionScores struct {
	Source   float64 `json:"source"`
	Temporal float64 `json:"temporal"`
	Channel  float64 `json:"channel"`
	Outcome  float64 `json:"outcome"`
	Network  float64 `json:"network"`
	Justice  float64 `json:"justice"`
}

type OutputScores struct {
	People    float64 `json:"people"`
	Legal     float64 `json:"legal"`
	State     float64 `json:"state"`
	Composite float64 `json:"composite"`
}

type Insight struct {
	RuleID string `json:"ruleId"`
	Title  string `json:"title"`
	Impact string `json:"impact"`
}

type ResultMetadata struct {
	TraceID         string `json:"traceId"`
	EventsEvaluated int    `json:"eventsEvaluated"`
	EngineVersion   string `json:"engineVersion"`
	CacheHit        bool   `json:"cacheHit"`
}

// ============================================================================
// Test Helper Functions
// ============================================================================

func postJSON(t *testing.T, config TestConfig, path string, payload any, out any) int {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
	}

	httpReq, err := http.NewRequest("POST", config.BaseURL+path, &body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", config.TenantID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			t.Fatalf("Failed to parse response %q: %v", string(respBody), err)
		}
	}

	return resp.StatusCode
}

func registerEntity(t *testing.T, config TestConfig, req EntityRequest) {
	t.Helper()

	status := postJSON(t, config, "/entities", req, nil)
	if status != http.StatusCreated {
		t.Fatalf("Entity registration returned status %d", status)
	}
}

func recordEvent(t *testing.T, config TestConfig, entityID string, ev EventRequest) {
	t.Helper()

	status := postJSON(t, config, fmt.Sprintf("/entities/%s/events", entityID), ev, nil)
	if status != http.StatusCreated {
		t.Fatalf("Event recording returned status %d", status)
	}
}

func calculate(t *testing.T, config TestConfig, entityID string) TrustResponse {
	t.Helper()

	var resp TrustResponse
	status := postJSON(t, config, fmt.Sprintf("/trust/%s/calculate", entityID), nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("Calculate returned status %d", status)
	}
	return resp
}

func ts(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// ============================================================================
// Tests
// ============================================================================

func TestServerHealth(t *testing.T) {
	config := getTestConfig()

	resp, err := http.Get(config.BaseURL + "/health")
	if err != nil {
		t.Fatalf("Server not reachable at %s: %v", config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Health check returned status %d", resp.StatusCode)
	}
}

func TestEmptyHistoryBaseline(t *testing.T) {
	config := getTestConfig()
	entityID := fmt.Sprintf("baseline-%d", time.Now().UnixNano())

	registerEntity(t, config, EntityRequest{ID: entityID, Type: "person"})

	resp := calculate(t, config, entityID)

	if resp.Outputs.Composite != 45.5 {
		t.Errorf("Expected composite 45.5 for empty history, got %.2f", resp.Outputs.Composite)
	}
	if resp.Level != "L1_BASIC" {
		t.Errorf("Expected L1_BASIC, got %s", resp.Level)
	}
	if resp.Confidence != 0.3 {
		t.Errorf("Expected confidence 0.3, got %.2f", resp.Confidence)
	}
}

func TestFullyVerifiedEntity(t *testing.T) {
	config := getTestConfig()
	entityID := fmt.Sprintf("verified-%d", time.Now().UnixNano())

	registerEntity(t, config, EntityRequest{
		ID:                entityID,
		Type:              "person",
		Name:              "Fully Verified",
		IdentityVerified:  true,
		BiometricVerified: true,
		Credentials: []Credential{
			{Type: "government_id", Issuer: "state"},
		},
		Channels: []Channel{
			{Name: "verified_api", Verified: true},
		},
		Connections: []Connection{
			{EntityID: "peer-1", TrustScore: 90},
		},
		DisputeResolutionRate: 0.95,
		TransparencyScore:     0.9,
		FairnessRating:        0.9,
	})

	recordEvent(t, config, entityID, EventRequest{
		Type:    "verification",
		Outcome: "positive",
		Impact:  5,
	})

	resp := calculate(t, config, entityID)

	if resp.Dimensions.Source != 100 {
		t.Errorf("Expected source 100 for fully verified entity, got %.2f", resp.Dimensions.Source)
	}
	if resp.Dimensions.Justice != 100 {
		t.Errorf("Expected justice 100, got %.2f", resp.Dimensions.Justice)
	}
	if resp.Dimensions.Channel != 100 {
		t.Errorf("Expected channel 100, got %.2f", resp.Dimensions.Channel)
	}
	if resp.Dimensions.Network != 100 {
		t.Errorf("Expected network 100, got %.2f", resp.Dimensions.Network)
	}
	if resp.Outputs.Composite <= 80 {
		t.Errorf("Expected high composite, got %.2f", resp.Outputs.Composite)
	}
}

func TestDisputeHeavyEntity(t *testing.T) {
	config := getTestConfig()
	entityID := fmt.Sprintf("disputed-%d", time.Now().UnixNano())

	registerEntity(t, config, EntityRequest{ID: entityID, Type: "person"})

	for i := 0; i < 5; i++ {
		recordEvent(t, config, entityID, EventRequest{
			Type:      "dispute",
			Timestamp: ts(2024, time.January, 1+i*7),
			Outcome:   "negative",
			Impact:    5,
		})
	}

	resp := calculate(t, config, entityID)

	if resp.Dimensions.Outcome != 0 {
		t.Errorf("Expected outcome 0 for all-negative history, got %.2f", resp.Dimensions.Outcome)
	}
	if resp.Outputs.Composite >= 50 {
		t.Errorf("Expected composite below 50, got %.2f", resp.Outputs.Composite)
	}
	if resp.Metadata.EventsEvaluated != 5 {
		t.Errorf("Expected 5 events evaluated, got %d", resp.Metadata.EventsEvaluated)
	}
}

func TestCalculationCaching(t *testing.T) {
	config := getTestConfig()
	entityID := fmt.Sprintf("cached-%d", time.Now().UnixNano())

	registerEntity(t, config, EntityRequest{ID: entityID, Type: "person"})

	first := calculate(t, config, entityID)
	if first.Metadata.CacheHit {
		t.Error("Expected cache miss on first calculation")
	}

	second := calculate(t, config, entityID)
	if !second.Metadata.CacheHit {
		t.Error("Expected cache hit on identical inputs")
	}
	if second.Outputs.Composite != first.Outputs.Composite {
		t.Errorf("Cache returned different composite: %.2f vs %.2f",
			second.Outputs.Composite, first.Outputs.Composite)
	}

	// A new event changes the fingerprint and forces recalculation
	recordEvent(t, config, entityID, EventRequest{
		Type:    "review",
		Outcome: "positive",
		Impact:  2,
	})

	third := calculate(t, config, entityID)
	if third.Metadata.CacheHit {
		t.Error("Expected recalculation after new event")
	}
}

func TestTrustHistory(t *testing.T) {
	config := getTestConfig()
	entityID := fmt.Sprintf("history-%d", time.Now().UnixNano())

	registerEntity(t, config, EntityRequest{ID: entityID, Type: "organization"})
	calculate(t, config, entityID)

	resp, err := func() (*http.Response, error) {
		req, err := http.NewRequest("GET", config.BaseURL+fmt.Sprintf("/trust/%s/history", entityID), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Tenant-ID", config.TenantID)
		return (&http.Client{Timeout: 10 * time.Second}).Do(req)
	}()
	if err != nil {
		t.Fatalf("History request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("History returned status %d", resp.StatusCode)
	}

	var history struct {
		Count   int             `json:"count"`
		Results []TrustResponse `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if history.Count < 1 {
		t.Errorf("Expected at least 1 historical result, got %d", history.Count)
	}
}
