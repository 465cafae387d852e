package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// BidRepository implements the BidRepository interface
type BidRepository struct {
	q      Queryable
	clanID int64
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

// NewBidRepositoryScoped creates a new bid repository with a transaction and clan scope
func NewBidRepositoryScoped(tx Queryable, clanID int64) interfaces.BidRepository {
	return &BidRepository{q: tx, clanID: clanID}
}

const bidColumns = `id, lot_id, member_id, clan_id, amount, max_auto_bid, is_auto_bid,
	idempotency_key, hold_id, created_at`

func scanBid(row pgx.Row) (*entities.Bid, error) {
	var b entities.Bid
	err := row.Scan(
		&b.ID,
		&b.LotID,
		&b.MemberID,
		&b.ClanID,
		&b.Amount,
		&b.MaxAutoBid,
		&b.IsAutoBid,
		&b.IdempotencyKey,
		&b.HoldID,
		&b.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bid: %w", err)
	}
	return &b, nil
}

// Create creates a new bid record
func (r *BidRepository) Create(ctx context.Context, bid *entities.Bid) error {
	query := `
		INSERT INTO bids (lot_id, member_id, clan_id, amount, max_auto_bid, is_auto_bid,
			idempotency_key, hold_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		bid.LotID,
		bid.MemberID,
		bid.ClanID,
		bid.Amount,
		bid.MaxAutoBid,
		bid.IsAutoBid,
		bid.IdempotencyKey,
		bid.HoldID,
	).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

// GetByID retrieves a bid by its ID
func (r *BidRepository) GetByID(ctx context.Context, id int64) (*entities.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	return scanBid(r.q.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey returns a prior bid with the key, or nil
func (r *BidRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE idempotency_key = $1`
	return scanBid(r.q.QueryRow(ctx, query, key))
}

// GetHighestByLot returns the highest bid on a lot, ties broken by earliest
// creation time, or nil when the lot has no bids
func (r *BidRepository) GetHighestByLot(ctx context.Context, lotID int64) (*entities.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE lot_id = $1
		ORDER BY amount DESC, created_at ASC, id ASC
		LIMIT 1
	`
	return scanBid(r.q.QueryRow(ctx, query, lotID))
}

// GetByLot returns all bids on a lot, newest first
func (r *BidRepository) GetByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE lot_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryBids(ctx, query, lotID)
}

// GetProxyBidsByLot returns bids on the lot that declared an auto-bid
// ceiling, ordered by ceiling descending then creation time ascending
func (r *BidRepository) GetProxyBidsByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE lot_id = $1 AND max_auto_bid IS NOT NULL
		ORDER BY max_auto_bid DESC, created_at ASC, id ASC
	`
	return r.queryBids(ctx, query, lotID)
}

func (r *BidRepository) queryBids(ctx context.Context, query string, args ...any) ([]*entities.Bid, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var bids []*entities.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}
