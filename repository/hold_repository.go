package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// HoldRepository implements the HoldRepository interface
type HoldRepository struct {
	q      Queryable
	clanID int64
}

// NewHoldRepository creates a new hold repository
func NewHoldRepository(db *database.DB) *HoldRepository {
	return &HoldRepository{q: db.Pool}
}

// NewHoldRepositoryScoped creates a new hold repository with a transaction and clan scope
func NewHoldRepositoryScoped(tx Queryable, clanID int64) interfaces.HoldRepository {
	return &HoldRepository{q: tx, clanID: clanID}
}

const holdColumns = `id, member_id, clan_id, amount, status, bid_id, created_at, closed_at`

func scanHold(row pgx.Row) (*entities.Hold, error) {
	var h entities.Hold
	err := row.Scan(
		&h.ID,
		&h.MemberID,
		&h.ClanID,
		&h.Amount,
		&h.Status,
		&h.BidID,
		&h.CreatedAt,
		&h.ClosedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan hold: %w", err)
	}
	return &h, nil
}

// Create creates a new hold
func (r *HoldRepository) Create(ctx context.Context, hold *entities.Hold) error {
	query := `
		INSERT INTO holds (member_id, clan_id, amount, status, bid_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		hold.MemberID,
		hold.ClanID,
		hold.Amount,
		hold.Status,
		hold.BidID,
	).Scan(&hold.ID, &hold.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hold: %w", err)
	}
	return nil
}

// GetByID retrieves a hold by its ID
func (r *HoldRepository) GetByID(ctx context.Context, id int64) (*entities.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`
	return scanHold(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a hold with a row lock
func (r *HoldRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1 FOR UPDATE`
	return scanHold(r.q.QueryRow(ctx, query, id))
}

// Update writes a hold's status and close timestamp
func (r *HoldRepository) Update(ctx context.Context, hold *entities.Hold) error {
	query := `
		UPDATE holds
		SET status = $1, bid_id = $2, closed_at = $3
		WHERE id = $4
	`
	tag, err := r.q.Exec(ctx, query, hold.Status, hold.BidID, hold.ClosedAt, hold.ID)
	if err != nil {
		return fmt.Errorf("failed to update hold %d: %w", hold.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hold %d not found", hold.ID)
	}
	return nil
}

// AttachBid links a hold to the bid that caused it
func (r *HoldRepository) AttachBid(ctx context.Context, holdID, bidID int64) error {
	query := `UPDATE holds SET bid_id = $1 WHERE id = $2`
	tag, err := r.q.Exec(ctx, query, bidID, holdID)
	if err != nil {
		return fmt.Errorf("failed to attach bid %d to hold %d: %w", bidID, holdID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hold %d not found", holdID)
	}
	return nil
}

// GetActiveByLot returns all still-active holds whose bids target the lot
func (r *HoldRepository) GetActiveByLot(ctx context.Context, lotID int64) ([]*entities.Hold, error) {
	query := `
		SELECT h.id, h.member_id, h.clan_id, h.amount, h.status, h.bid_id, h.created_at, h.closed_at
		FROM holds h
		JOIN bids b ON b.id = h.bid_id
		WHERE b.lot_id = $1 AND h.status = $2
		ORDER BY h.id
	`
	rows, err := r.q.Query(ctx, query, lotID, entities.HoldStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active holds: %w", err)
	}
	defer rows.Close()

	var holds []*entities.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}
