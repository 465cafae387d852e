package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// MemberRepository implements the MemberRepository interface
type MemberRepository struct {
	q Queryable
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{q: db.Pool}
}

// NewMemberRepositoryWithTx creates a new member repository bound to a transaction
func NewMemberRepositoryWithTx(tx Queryable) interfaces.MemberRepository {
	return &MemberRepository{q: tx}
}

const memberColumns = `id, clan_id, name, role, combat_power, level, created_at, updated_at`

func scanMember(row pgx.Row) (*entities.Member, error) {
	var m entities.Member
	err := row.Scan(
		&m.ID,
		&m.ClanID,
		&m.Name,
		&m.Role,
		&m.CombatPower,
		&m.Level,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return &m, nil
}

// GetByID retrieves a member by their ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.q.QueryRow(ctx, query, id))
}

// ListByClan returns all members of a clan in a stable order
func (r *MemberRepository) ListByClan(ctx context.Context, clanID int64) ([]*entities.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE clan_id = $1
		ORDER BY id
	`
	rows, err := r.q.Query(ctx, query, clanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*entities.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Create creates a new member profile
func (r *MemberRepository) Create(ctx context.Context, member *entities.Member) error {
	query := `
		INSERT INTO members (clan_id, name, role, combat_power, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		member.ClanID,
		member.Name,
		member.Role,
		member.CombatPower,
		member.Level,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}
