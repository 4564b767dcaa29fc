package postgres

// Schema is the PostgreSQL schema for sale processes and the transition
// audit trail. All statements are idempotent (IF NOT EXISTS) so the schema
// can be applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS sale_processes (
    property_id     TEXT PRIMARY KEY,
    committed_stage INTEGER NOT NULL DEFAULT 0,
    listing_status  TEXT NOT NULL DEFAULT 'private',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transition_audit (
    id           TEXT PRIMARY KEY,
    property_id  TEXT NOT NULL,
    from_stage   INTEGER NOT NULL,
    to_stage     INTEGER NOT NULL,
    actor_id     TEXT NOT NULL DEFAULT '',
    committed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transition_audit_property
    ON transition_audit(property_id, committed_at);
`
