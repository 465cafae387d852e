package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the append-only transaction log
type TransactionRepository struct {
	q      Queryable
	clanID int64
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// NewTransactionRepositoryScoped creates a new transaction repository with a transaction and clan scope
func NewTransactionRepositoryScoped(tx Queryable, clanID int64) interfaces.TransactionRepository {
	return &TransactionRepository{q: tx, clanID: clanID}
}

const transactionColumns = `id, member_id, clan_id, type, amount, balance_before, balance_after,
	related_id, related_type, idempotency_key, metadata, created_at`

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	err := row.Scan(
		&t.ID,
		&t.MemberID,
		&t.ClanID,
		&t.Type,
		&t.Amount,
		&t.BalanceBefore,
		&t.BalanceAfter,
		&t.RelatedID,
		&t.RelatedType,
		&t.IdempotencyKey,
		&t.Metadata,
		&t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

// Record appends a new transaction. Rows are never mutated afterwards.
func (r *TransactionRepository) Record(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (member_id, clan_id, type, amount, balance_before, balance_after,
			related_id, related_type, idempotency_key, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		tx.MemberID,
		tx.ClanID,
		tx.Type,
		tx.Amount,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.RelatedID,
		tx.RelatedType,
		tx.IdempotencyKey,
		tx.Metadata,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey returns a prior transaction with the key, or nil
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE idempotency_key = $1
	`
	return scanTransaction(r.q.QueryRow(ctx, query, key))
}

// GetByMember returns recent transactions for a member, newest first
func (r *TransactionRepository) GetByMember(ctx context.Context, memberID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE member_id = $1 AND clan_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, memberID, r.clanID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*entities.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumAmountsByMember returns the sum of all signed amounts for a member
func (r *TransactionRepository) SumAmountsByMember(ctx context.Context, memberID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE member_id = $1 AND clan_id = $2
	`
	var sum int64
	if err := r.q.QueryRow(ctx, query, memberID, r.clanID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}
