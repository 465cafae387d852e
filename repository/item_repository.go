package repository

import (
	"context"
	"fmt"

	"clanhall/database"
	"clanhall/domain/entities"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// ItemRepository implements the warehouse inventory against the items table
type ItemRepository struct {
	q Queryable
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{q: db.Pool}
}

// NewItemRepositoryWithTx creates a new item repository bound to a transaction
func NewItemRepositoryWithTx(tx Queryable) interfaces.ItemRepository {
	return &ItemRepository{q: tx}
}

// GetByID retrieves an item by its ID
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*entities.Item, error) {
	query := `
		SELECT id, clan_id, name, quantity, created_at, updated_at
		FROM items
		WHERE id = $1
	`
	var i entities.Item
	err := r.q.QueryRow(ctx, query, id).Scan(
		&i.ID,
		&i.ClanID,
		&i.Name,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return &i, nil
}

// DecrementQuantity removes n units of stock. The guarded WHERE clause keeps
// quantity from going negative under concurrent movement.
func (r *ItemRepository) DecrementQuantity(ctx context.Context, id int64, n int64) error {
	query := `
		UPDATE items
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
	`
	tag, err := r.q.Exec(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("failed to decrement item %d quantity: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d has insufficient stock for decrement of %d", id, n)
	}
	return nil
}

// IncrementQuantity returns n units of stock
func (r *ItemRepository) IncrementQuantity(ctx context.Context, id int64, n int64) error {
	query := `
		UPDATE items
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.q.Exec(ctx, query, n, id)
	if err != nil {
		return fmt.Errorf("failed to increment item %d quantity: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}
