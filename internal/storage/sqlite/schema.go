package sqlite

// Schema is the SQLite schema for sale processes and the transition audit
// trail. All statements are idempotent (IF NOT EXISTS) so the schema can be
// applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS sale_processes (
    property_id     TEXT PRIMARY KEY,
    committed_stage INTEGER NOT NULL DEFAULT 0,
    listing_status  TEXT NOT NULL DEFAULT 'private',
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS transition_audit (
    id           TEXT PRIMARY KEY,
    property_id  TEXT NOT NULL,
    from_stage   INTEGER NOT NULL,
    to_stage     INTEGER NOT NULL,
    actor_id     TEXT NOT NULL DEFAULT '',
    committed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transition_audit_property
    ON transition_audit(property_id, committed_at);
`
