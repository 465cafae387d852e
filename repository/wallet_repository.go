package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q      Queryable
	clanID int64
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// NewWalletRepositoryScoped creates a new wallet repository with a transaction and clan scope
func NewWalletRepositoryScoped(tx Queryable, clanID int64) interfaces.WalletRepository {
	return &WalletRepository{q: tx, clanID: clanID}
}

const walletColumns = `id, member_id, clan_id, balance, on_hold, total_earned, created_at, updated_at`

func (r *WalletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var w entities.Wallet
	err := row.Scan(
		&w.ID,
		&w.MemberID,
		&w.ClanID,
		&w.Balance,
		&w.OnHold,
		&w.TotalEarned,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}
	return &w, nil
}

// GetByMemberID retrieves a member's wallet within the clan scope
func (r *WalletRepository) GetByMemberID(ctx context.Context, memberID int64) (*entities.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE member_id = $1 AND clan_id = $2
	`
	return r.scanWallet(r.q.QueryRow(ctx, query, memberID, r.clanID))
}

// GetByMemberIDForUpdate retrieves a member's wallet with a row lock
func (r *WalletRepository) GetByMemberIDForUpdate(ctx context.Context, memberID int64) (*entities.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE member_id = $1 AND clan_id = $2
		FOR UPDATE
	`
	return r.scanWallet(r.q.QueryRow(ctx, query, memberID, r.clanID))
}

// Create creates a wallet for a member with an initial balance
func (r *WalletRepository) Create(ctx context.Context, memberID int64, initialBalance int64) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (member_id, clan_id, balance, on_hold, total_earned)
		VALUES ($1, $2, $3, 0, $3)
		RETURNING ` + walletColumns + `
	`
	wallet, err := r.scanWallet(r.q.QueryRow(ctx, query, memberID, r.clanID, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

// UpdateBalances writes the wallet's balance, on-hold and lifetime-earned counters
func (r *WalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, on_hold = $2, total_earned = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.q.Exec(ctx, query, wallet.Balance, wallet.OnHold, wallet.TotalEarned, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d not found", wallet.ID)
	}
	return nil
}
