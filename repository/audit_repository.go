package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"
)

// AuditRepository implements the append-only audit sink
type AuditRepository struct {
	q Queryable
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

// NewAuditRepositoryWithTx creates a new audit repository bound to a transaction
func NewAuditRepositoryWithTx(tx Queryable) interfaces.AuditRepository {
	return &AuditRepository{q: tx}
}

// Record appends an audit entry
func (r *AuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	query := `
		INSERT INTO audit_log (clan_id, actor_member_id, action, entity_type, entity_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.ClanID,
		entry.ActorMemberID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Before,
		entry.After,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
