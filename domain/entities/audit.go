package entities

import "time"

// AuditEntry is an append-only record of a state-changing operation. Audit
// writes are best-effort: a failed write is logged and never escalated into
// the originating operation.
type AuditEntry struct {
	ID            int64          `db:"id"`
	ClanID        int64          `db:"clan_id"`
	ActorMemberID int64          `db:"actor_member_id"`
	Action        string         `db:"action"`
	EntityType    string         `db:"entity_type"`
	EntityID      int64          `db:"entity_id"`
	Before        map[string]any `db:"before_state"`
	After         map[string]any `db:"after_state"`
	CreatedAt     time.Time      `db:"created_at"`
}
