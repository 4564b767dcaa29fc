package types

import "time"

// AuditEntry records one committed transition. Entries are append-only:
// they are never mutated or deleted, and they answer "what stage were we
// at, and when" for a property.
type AuditEntry struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	FromStage   int       `json:"from_stage"`
	ToStage     int       `json:"to_stage"`
	ActorID     string    `json:"actor_id,omitempty"`
	CommittedAt time.Time `json:"committed_at"`
}
