package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// RandomizerRepository implements the RandomizerRepository interface
type RandomizerRepository struct {
	q      Queryable
	clanID int64
}

// NewRandomizerRepository creates a new randomizer repository
func NewRandomizerRepository(db *database.DB) *RandomizerRepository {
	return &RandomizerRepository{q: db.Pool}
}

// NewRandomizerRepositoryScoped creates a new randomizer repository with a transaction and clan scope
func NewRandomizerRepositoryScoped(tx Queryable, clanID int64) interfaces.RandomizerRepository {
	return &RandomizerRepository{q: tx, clanID: clanID}
}

const sessionColumns = `id, clan_id, item_id, quantity, seed, seed_hash, status, created_at, completed_at`

func scanSession(row pgx.Row) (*entities.RandomizerSession, error) {
	var s entities.RandomizerSession
	err := row.Scan(
		&s.ID,
		&s.ClanID,
		&s.ItemID,
		&s.Quantity,
		&s.Seed,
		&s.SeedHash,
		&s.Status,
		&s.CreatedAt,
		&s.CompletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan randomizer session: %w", err)
	}
	return &s, nil
}

// CreateSession creates a new randomizer session
func (r *RandomizerRepository) CreateSession(ctx context.Context, session *entities.RandomizerSession) error {
	query := `
		INSERT INTO randomizer_sessions (clan_id, item_id, quantity, seed, seed_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		session.ClanID,
		session.ItemID,
		session.Quantity,
		session.Seed,
		session.SeedHash,
		session.Status,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create randomizer session: %w", err)
	}
	return nil
}

// GetSessionByID retrieves a session by its ID
func (r *RandomizerRepository) GetSessionByID(ctx context.Context, id int64) (*entities.RandomizerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM randomizer_sessions WHERE id = $1`
	return scanSession(r.q.QueryRow(ctx, query, id))
}

// GetSessionByIDForUpdate retrieves a session with a row lock
func (r *RandomizerRepository) GetSessionByIDForUpdate(ctx context.Context, id int64) (*entities.RandomizerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM randomizer_sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.q.QueryRow(ctx, query, id))
}

// UpdateSession writes the session's status and completion timestamp
func (r *RandomizerRepository) UpdateSession(ctx context.Context, session *entities.RandomizerSession) error {
	query := `
		UPDATE randomizer_sessions
		SET status = $1, completed_at = $2
		WHERE id = $3
	`
	tag, err := r.q.Exec(ctx, query, session.Status, session.CompletedAt, session.ID)
	if err != nil {
		return fmt.Errorf("failed to update randomizer session %d: %w", session.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("randomizer session %d not found", session.ID)
	}
	return nil
}

// CreateEntries writes the session's weighted entries in one batch
func (r *RandomizerRepository) CreateEntries(ctx context.Context, entries []*entities.RandomizerEntry) error {
	query := `
		INSERT INTO randomizer_entries (session_id, member_id, combat_power, level, weight)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, e := range entries {
		if err := r.q.QueryRow(ctx, query, e.SessionID, e.MemberID, e.CombatPower, e.Level, e.Weight).Scan(&e.ID); err != nil {
			return fmt.Errorf("failed to create randomizer entry: %w", err)
		}
	}
	return nil
}

// GetEntriesBySession returns the session's entries in member order
func (r *RandomizerRepository) GetEntriesBySession(ctx context.Context, sessionID int64) ([]*entities.RandomizerEntry, error) {
	query := `
		SELECT id, session_id, member_id, combat_power, level, weight
		FROM randomizer_entries
		WHERE session_id = $1
		ORDER BY member_id
	`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query randomizer entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.RandomizerEntry
	for rows.Next() {
		var e entities.RandomizerEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.MemberID, &e.CombatPower, &e.Level, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan randomizer entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CreateResult writes the draw result and its proof
func (r *RandomizerRepository) CreateResult(ctx context.Context, result *entities.RandomizerResult) error {
	proof, err := json.Marshal(result.Proof)
	if err != nil {
		return fmt.Errorf("failed to marshal proof: %w", err)
	}

	query := `
		INSERT INTO randomizer_results (session_id, winner_member_id, roll, proof)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		result.SessionID,
		result.WinnerMemberID,
		result.Roll,
		proof,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create randomizer result: %w", err)
	}
	return nil
}

// GetResultBySession returns the result for a session, or nil
func (r *RandomizerRepository) GetResultBySession(ctx context.Context, sessionID int64) (*entities.RandomizerResult, error) {
	query := `
		SELECT id, session_id, winner_member_id, roll, proof, created_at
		FROM randomizer_results
		WHERE session_id = $1
	`
	var res entities.RandomizerResult
	var proof []byte
	err := r.q.QueryRow(ctx, query, sessionID).Scan(
		&res.ID,
		&res.SessionID,
		&res.WinnerMemberID,
		&res.Roll,
		&proof,
		&res.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan randomizer result: %w", err)
	}
	if err := json.Unmarshal(proof, &res.Proof); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proof: %w", err)
	}
	return &res, nil
}
