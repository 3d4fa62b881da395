// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveEntity stores an entity snapshot with tenant isolation.
func (r *SQLRepository) SaveEntity(ctx context.Context, tenantID string, e *domain.Entity) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	credentials, _ := json.Marshal(e.Credentials)
	channels, _ := json.Marshal(e.Channels)
	connections, _ := json.Marshal(e.Connections)
	metadata, _ := json.Marshal(e.Metadata)

	query := `
		INSERT INTO entities (
			id, tenant_id, type, name, identity_verified, biometric_verified,
			credentials, channels, connections,
			dispute_resolution_rate, transparency_score, fairness_rating,
			created_at, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			identity_verified = excluded.identity_verified,
			biometric_verified = excluded.biometric_verified,
			credentials = excluded.credentials,
			channels = excluded.channels,
			connections = excluded.connections,
			dispute_resolution_rate = excluded.dispute_resolution_rate,
			transparency_score = excluded.transparency_score,
			fairness_rating = excluded.fairness_rating,
			metadata = excluded.metadata
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		e.ID, tenantID, string(e.Type), e.Name,
		boolToInt(e.IdentityVerified), boolToInt(e.BiometricVerified),
		string(credentials), string(channels), string(connections),
		e.DisputeResolutionRate, e.TransparencyScore, e.FairnessRating,
		e.CreatedAt, string(metadata),
	)
	return err
}

// GetEntity retrieves an entity by ID with tenant isolation.
func (r *SQLRepository) GetEntity(ctx context.Context, tenantID string, entityID string) (*domain.Entity, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, type, name, identity_verified, biometric_verified,
			   credentials, channels, connections,
			   dispute_resolution_rate, transparency_score, fairness_rating,
			   created_at, metadata
		FROM entities
		WHERE tenant_id = ? AND id = ?
	`

	var e domain.Entity
	var entityType string
	var identityVerified, biometricVerified int
	var credentials, channels, connections, metadata string

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, entityID).Scan(
		&e.ID, &e.TenantID, &entityType, &e.Name,
		&identityVerified, &biometricVerified,
		&credentials, &channels, &connections,
		&e.DisputeResolutionRate, &e.TransparencyScore, &e.FairnessRating,
		&e.CreatedAt, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.Type = domain.EntityType(entityType)
	e.IdentityVerified = identityVerified == 1
	e.BiometricVerified = biometricVerified == 1
	json.Unmarshal([]byte(credentials), &e.Credentials)
	json.Unmarshal([]byte(channels), &e.Channels)
	json.Unmarshal([]byte(connections), &e.Connections)
	if metadata != "" {
		json.Unmarshal([]byte(metadata), &e.Metadata)
	}

	return &e, nil
}

// SaveEvent stores a trust event with tenant isolation.
func (r *SQLRepository) SaveEvent(ctx context.Context, tenantID string, ev *domain.Event) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO trust_events (
			id, tenant_id, entity_id, type, timestamp, channel, outcome,
			impact, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		ev.ID, tenantID, ev.EntityID, string(ev.Type),
		ev.Timestamp, ev.Channel, string(ev.Outcome),
		ev.Impact, ev.Description, ev.CreatedAt,
	)
	return err
}

// ListEvents retrieves events for an entity since a point in time,
// oldest first, with tenant isolation.
func (r *SQLRepository) ListEvents(ctx context.Context, tenantID string, entityID string, since time.Time) ([]*domain.Event, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, entity_id, type, timestamp, channel, outcome,
			   impact, description, created_at
		FROM trust_events
		WHERE tenant_id = ? AND entity_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, entityID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var ev domain.Event
		var eventType, outcome string

		if err := rows.Scan(
			&ev.ID, &ev.TenantID, &ev.EntityID, &eventType,
			&ev.Timestamp, &ev.Channel, &outcome,
			&ev.Impact, &ev.Description, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}

		ev.Type = domain.EventType(eventType)
		ev.Outcome = domain.Outcome(outcome)
		events = append(events, &ev)
	}

	return events, rows.Err()
}

// CountEvents returns the number of events for an entity since a point in time.
func (r *SQLRepository) CountEvents(ctx context.Context, tenantID string, entityID string, since time.Time) (int64, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT COUNT(*) FROM trust_events
		WHERE tenant_id = ? AND entity_id = ? AND timestamp >= ?
	`

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, entityID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}

// SaveResult stores a trust result with tenant isolation.
// Scores are persisted rounded to two decimal places.
func (r *SQLRepository) SaveResult(ctx context.Context, tenantID string, res *domain.TrustResult) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	metadata, _ := json.Marshal(res.Metadata)
	dims := res.Dimensions.Rounded()
	outs := res.Outputs.Rounded()

	query := `
		INSERT INTO trust_results (
			id, tenant_id, entity_id,
			source_score, temporal_score, channel_score,
			outcome_score, network_score, justice_score,
			people_score, legal_score, state_score, composite_score,
			confidence, level, timestamp, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		res.ID, tenantID, res.EntityID,
		dims.Source, dims.Temporal, dims.Channel,
		dims.Outcome, dims.Network, dims.Justice,
		outs.People, outs.Legal, outs.State, outs.Composite,
		domain.Round2(res.Confidence), string(res.Level), res.Timestamp,
		string(metadata),
	)
	return err
}

// GetResult retrieves a trust result by ID with tenant isolation.
func (r *SQLRepository) GetResult(ctx context.Context, tenantID string, resultID string) (*domain.TrustResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := resultSelect + ` WHERE tenant_id = ? AND id = ?`

	row := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, resultID)
	return scanResult(row)
}

// GetLatestResult retrieves the most recent result for an entity.
func (r *SQLRepository) GetLatestResult(ctx context.Context, tenantID string, entityID string) (*domain.TrustResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := resultSelect + `
		WHERE tenant_id = ? AND entity_id = ?
		ORDER BY timestamp DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, entityID)
	return scanResult(row)
}

// ListResults retrieves the result timeline for an entity, newest first.
func (r *SQLRepository) ListResults(ctx context.Context, tenantID string, entityID string, since time.Time) ([]*domain.TrustResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := resultSelect + `
		WHERE tenant_id = ? AND entity_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, entityID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.TrustResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

const resultSelect = `
	SELECT id, tenant_id, entity_id,
		   source_score, temporal_score, channel_score,
		   outcome_score, network_score, justice_score,
		   people_score, legal_score, state_score, composite_score,
		   confidence, level, timestamp, metadata
	FROM trust_results`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.TrustResult, error) {
	var res domain.TrustResult
	var level, metadata string

	err := row.Scan(
		&res.ID, &res.TenantID, &res.EntityID,
		&res.Dimensions.Source, &res.Dimensions.Temporal, &res.Dimensions.Channel,
		&res.Dimensions.Outcome, &res.Dimensions.Network, &res.Dimensions.Justice,
		&res.Outputs.People, &res.Outputs.Legal, &res.Outputs.State, &res.Outputs.Composite,
		&res.Confidence, &level, &res.Timestamp, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	res.Level = domain.TrustLevel(level)
	json.Unmarshal([]byte(metadata), &res.Metadata)

	return &res, nil
}

// SaveInsightRule stores an insight rule configuration with tenant isolation.
func (r *SQLRepository) SaveInsightRule(ctx context.Context, tenantID string, rule *domain.InsightRule) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO insight_rules (
			id, tenant_id, category, title, description, version, expression, impact, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id, version) DO UPDATE SET
			category = excluded.category,
			title = excluded.title,
			description = excluded.description,
			expression = excluded.expression,
			impact = excluded.impact,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, tenantID, rule.Category, rule.Title, rule.Description,
		rule.Version, rule.Expression, rule.Impact, enabled,
		now, now,
	)
	return err
}

// GetInsightRule retrieves an insight rule with tenant isolation.
func (r *SQLRepository) GetInsightRule(ctx context.Context, tenantID string, ruleID string) (*domain.InsightRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, category, title, description, version, expression, impact, enabled
		FROM insight_rules
		WHERE tenant_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var rule domain.InsightRule
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, ruleID).Scan(
		&rule.ID, &rule.TenantID, &rule.Category, &rule.Title, &rule.Description,
		&rule.Version, &rule.Expression, &rule.Impact, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rule.Enabled = enabled == 1

	return &rule, nil
}

// ListInsightRules retrieves all active insight rules for a tenant.
func (r *SQLRepository) ListInsightRules(ctx context.Context, tenantID string) ([]*domain.InsightRule, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, category, title, description, version, expression, impact, enabled
		FROM insight_rules
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY title
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.InsightRule
	for rows.Next() {
		var rule domain.InsightRule
		var enabled int

		if err := rows.Scan(
			&rule.ID, &rule.TenantID, &rule.Category, &rule.Title, &rule.Description,
			&rule.Version, &rule.Expression, &rule.Impact, &enabled,
		); err != nil {
			return nil, err
		}

		rule.Enabled = enabled == 1
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteInsightRule soft-deletes an insight rule by setting enabled = 0.
func (r *SQLRepository) DeleteInsightRule(ctx context.Context, tenantID string, ruleID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		UPDATE insight_rules
		SET enabled = 0, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), tenantID, ruleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
