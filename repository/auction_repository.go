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

// AuctionRepository implements the AuctionRepository interface
type AuctionRepository struct {
	q      Queryable
	clanID int64
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(db *database.DB) *AuctionRepository {
	return &AuctionRepository{q: db.Pool}
}

// NewAuctionRepositoryScoped creates a new auction repository with a transaction and clan scope
func NewAuctionRepositoryScoped(tx Queryable, clanID int64) interfaces.AuctionRepository {
	return &AuctionRepository{q: tx, clanID: clanID}
}

const auctionColumns = `id, clan_id, title, status, anti_sniper_enabled,
	anti_sniper_threshold_seconds, anti_sniper_extension_seconds, created_by, created_at, updated_at`

func scanAuction(row pgx.Row) (*entities.Auction, error) {
	var a entities.Auction
	var thresholdSecs, extensionSecs int64
	err := row.Scan(
		&a.ID,
		&a.ClanID,
		&a.Title,
		&a.Status,
		&a.AntiSniperEnabled,
		&thresholdSecs,
		&extensionSecs,
		&a.CreatedByMemberID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan auction: %w", err)
	}
	a.AntiSniperThreshold = time.Duration(thresholdSecs) * time.Second
	a.AntiSniperExtension = time.Duration(extensionSecs) * time.Second
	return &a, nil
}

// Create creates a new auction
func (r *AuctionRepository) Create(ctx context.Context, auction *entities.Auction) error {
	query := `
		INSERT INTO auctions (clan_id, title, status, anti_sniper_enabled,
			anti_sniper_threshold_seconds, anti_sniper_extension_seconds, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		auction.ClanID,
		auction.Title,
		auction.Status,
		auction.AntiSniperEnabled,
		int64(auction.AntiSniperThreshold/time.Second),
		int64(auction.AntiSniperExtension/time.Second),
		auction.CreatedByMemberID,
	).Scan(&auction.ID, &auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetByID retrieves an auction by its ID
func (r *AuctionRepository) GetByID(ctx context.Context, id int64) (*entities.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	return scanAuction(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an auction with a row lock
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	return scanAuction(r.q.QueryRow(ctx, query, id))
}

// Update writes the auction's mutable fields
func (r *AuctionRepository) Update(ctx context.Context, auction *entities.Auction) error {
	query := `
		UPDATE auctions
		SET title = $1, status = $2, anti_sniper_enabled = $3,
			anti_sniper_threshold_seconds = $4, anti_sniper_extension_seconds = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.q.Exec(ctx, query,
		auction.Title,
		auction.Status,
		auction.AntiSniperEnabled,
		int64(auction.AntiSniperThreshold/time.Second),
		int64(auction.AntiSniperExtension/time.Second),
		auction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update auction %d: %w", auction.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("auction %d not found", auction.ID)
	}
	return nil
}

// ListByClan returns all auctions for a clan, newest first
func (r *AuctionRepository) ListByClan(ctx context.Context, clanID int64) ([]*entities.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE clan_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q.Query(ctx, query, clanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*entities.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

// AddParticipant registers a member as a bidder on the auction
func (r *AuctionRepository) AddParticipant(ctx context.Context, auctionID, memberID int64) error {
	query := `
		INSERT INTO auction_participants (auction_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (auction_id, member_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, auctionID, memberID); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// IsParticipant reports whether the member is registered on the auction
func (r *AuctionRepository) IsParticipant(ctx context.Context, auctionID, memberID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM auction_participants
			WHERE auction_id = $1 AND member_id = $2
		)
	`
	var exists bool
	if err := r.q.QueryRow(ctx, query, auctionID, memberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}
