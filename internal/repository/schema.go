package repository

// Schema definitions for the ChittyTrust database.
// Compatible with both SQLite and PostgreSQL.

const schemaEntities = `
CREATE TABLE IF NOT EXISTS entities (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    type TEXT NOT NULL,
    name TEXT,
    identity_verified INTEGER NOT NULL DEFAULT 0,
    biometric_verified INTEGER NOT NULL DEFAULT 0,
    credentials TEXT,
    channels TEXT,
    connections TEXT,
    dispute_resolution_rate REAL NOT NULL DEFAULT 0,
    transparency_score REAL NOT NULL DEFAULT 0,
    fairness_rating REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    metadata TEXT,
    PRIMARY KEY (id, tenant_id)
);

CREATE INDEX IF NOT EXISTS idx_entities_tenant ON entities(tenant_id);
`

const schemaEvents = `
CREATE TABLE IF NOT EXISTS trust_events (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    type TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    channel TEXT,
    outcome TEXT NOT NULL,
    impact REAL NOT NULL DEFAULT 0,
    description TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trust_events_tenant ON trust_events(tenant_id);
CREATE INDEX IF NOT EXISTS idx_trust_events_entity ON trust_events(tenant_id, entity_id);
CREATE INDEX IF NOT EXISTS idx_trust_events_timestamp ON trust_events(tenant_id, entity_id, timestamp);
`

// schemaResults holds the trust result history: one immutable row per
// calculation, keyed by entity for timeline queries.
const schemaResults = `
CREATE TABLE IF NOT EXISTS trust_results (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    source_score REAL NOT NULL,
    temporal_score REAL NOT NULL,
    channel_score REAL NOT NULL,
    outcome_score REAL NOT NULL,
    network_score REAL NOT NULL,
    justice_score REAL NOT NULL,
    people_score REAL NOT NULL,
    legal_score REAL NOT NULL,
    state_score REAL NOT NULL,
    composite_score REAL NOT NULL,
    confidence REAL NOT NULL,
    level TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trust_results_tenant ON trust_results(tenant_id);
CREATE INDEX IF NOT EXISTS idx_trust_results_entity ON trust_results(tenant_id, entity_id);
CREATE INDEX IF NOT EXISTS idx_trust_results_timestamp ON trust_results(tenant_id, entity_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_trust_results_level ON trust_results(tenant_id, level);
`

const schemaInsightRules = `
CREATE TABLE IF NOT EXISTS insight_rules (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    impact TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_insight_rules_tenant ON insight_rules(tenant_id);
CREATE INDEX IF NOT EXISTS idx_insight_rules_enabled ON insight_rules(tenant_id, enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaEntities,
		schemaEvents,
		schemaResults,
		schemaInsightRules,
	}
}
