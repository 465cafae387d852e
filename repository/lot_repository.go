package repository

import (
	"context"
	"fmt"
	"time"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// LotRepository implements the LotRepository interface
type LotRepository struct {
	q Queryable
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *database.DB) *LotRepository {
	return &LotRepository{q: db.Pool}
}

// NewLotRepositoryWithTx creates a new lot repository bound to a transaction
func NewLotRepositoryWithTx(tx Queryable) interfaces.LotRepository {
	return &LotRepository{q: tx}
}

const lotColumns = `id, auction_id, item_id, quantity, start_price, min_step, current_price,
	ends_at, status, winner_member_id, sort_order, created_at, updated_at`

func scanLot(row pgx.Row) (*entities.Lot, error) {
	var l entities.Lot
	err := row.Scan(
		&l.ID,
		&l.AuctionID,
		&l.ItemID,
		&l.Quantity,
		&l.StartPrice,
		&l.MinStep,
		&l.CurrentPrice,
		&l.EndsAt,
		&l.Status,
		&l.WinnerMemberID,
		&l.SortOrder,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lot: %w", err)
	}
	return &l, nil
}

// Create creates a new lot
func (r *LotRepository) Create(ctx context.Context, lot *entities.Lot) error {
	query := `
		INSERT INTO lots (auction_id, item_id, quantity, start_price, min_step, current_price,
			ends_at, status, winner_member_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		lot.AuctionID,
		lot.ItemID,
		lot.Quantity,
		lot.StartPrice,
		lot.MinStep,
		lot.CurrentPrice,
		lot.EndsAt,
		lot.Status,
		lot.WinnerMemberID,
		lot.SortOrder,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}
	return nil
}

// GetByID retrieves a lot by its ID
func (r *LotRepository) GetByID(ctx context.Context, id int64) (*entities.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	return scanLot(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a lot with a row lock. Bid and close paths both
// lock the lot row first, so two concurrent bids on the same lot serialize.
func (r *LotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	return scanLot(r.q.QueryRow(ctx, query, id))
}

// Update writes the lot's mutable fields
func (r *LotRepository) Update(ctx context.Context, lot *entities.Lot) error {
	query := `
		UPDATE lots
		SET current_price = $1, ends_at = $2, status = $3, winner_member_id = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.q.Exec(ctx, query, lot.CurrentPrice, lot.EndsAt, lot.Status, lot.WinnerMemberID, lot.ID)
	if err != nil {
		return fmt.Errorf("failed to update lot %d: %w", lot.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lot %d not found", lot.ID)
	}
	return nil
}

// GetByAuction returns the auction's lots in sort order
func (r *LotRepository) GetByAuction(ctx context.Context, auctionID int64) ([]*entities.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE auction_id = $1
		ORDER BY sort_order
	`
	rows, err := r.q.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []*entities.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// GetNextPending returns the lowest-sort-order pending lot, or nil
func (r *LotRepository) GetNextPending(ctx context.Context, auctionID int64) (*entities.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE auction_id = $1 AND status = $2
		ORDER BY sort_order
		LIMIT 1
	`
	return scanLot(r.q.QueryRow(ctx, query, auctionID, entities.LotStatusPending))
}

// CountByAuction returns the number of lots in the auction
func (r *LotRepository) CountByAuction(ctx context.Context, auctionID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM lots WHERE auction_id = $1`, auctionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lots: %w", err)
	}
	return count, nil
}

// CreateResult writes the terminal record for a closed lot
func (r *LotRepository) CreateResult(ctx context.Context, result *entities.LotResult) error {
	query := `
		INSERT INTO lot_results (lot_id, winner_member_id, winning_bid_id, final_price, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		result.LotID,
		result.WinnerMemberID,
		result.WinningBidID,
		result.FinalPrice,
		result.Outcome,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lot result: %w", err)
	}
	return nil
}

// GetResultByLot returns the terminal record for a lot, or nil
func (r *LotRepository) GetResultByLot(ctx context.Context, lotID int64) (*entities.LotResult, error) {
	query := `
		SELECT id, lot_id, winner_member_id, winning_bid_id, final_price, outcome, created_at
		FROM lot_results
		WHERE lot_id = $1
	`
	var res entities.LotResult
	err := r.q.QueryRow(ctx, query, lotID).Scan(
		&res.ID,
		&res.LotID,
		&res.WinnerMemberID,
		&res.WinningBidID,
		&res.FinalPrice,
		&res.Outcome,
		&res.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lot result: %w", err)
	}
	return &res, nil
}

// GetNextDeadline returns the earliest deadline among active lots, or nil
func (r *LotRepository) GetNextDeadline(ctx context.Context) (*time.Time, error) {
	query := `
		SELECT MIN(ends_at)
		FROM lots
		WHERE status = $1 AND ends_at IS NOT NULL
	`
	var deadline *time.Time
	if err := r.q.QueryRow(ctx, query, entities.LotStatusActive).Scan(&deadline); err != nil {
		return nil, fmt.Errorf("failed to get next lot deadline: %w", err)
	}
	return deadline, nil
}

// GetExpiredActive returns active lots whose deadline is at or before now
func (r *LotRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE status = $1 AND ends_at IS NOT NULL AND ends_at <= $2
		ORDER BY ends_at
	`
	rows, err := r.q.Query(ctx, query, entities.LotStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired lots: %w", err)
	}
	defer rows.Close()

	var lots []*entities.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
