package services

import (
	"context"
	"fmt"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/interfaces"
)

type inventoryService struct {
	itemRepo interfaces.ItemRepository
}

// NewInventoryService creates the warehouse collaborator backed by the item
// repository.
func NewInventoryService(itemRepo interfaces.ItemRepository) interfaces.InventoryService {
	return &inventoryService{itemRepo: itemRepo}
}

func (s *inventoryService) GetItem(ctx context.Context, id int64) (*entities.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) DecrementQuantity(ctx context.Context, id int64, n int64) error {
	if n <= 0 {
		return errs.Validationf("decrement quantity %d must be positive", n)
	}
	if err := s.itemRepo.DecrementQuantity(ctx, id, n); err != nil {
		return fmt.Errorf("failed to decrement item %d quantity: %w", id, err)
	}
	return nil
}

func (s *inventoryService) IncrementQuantity(ctx context.Context, id int64, n int64) error {
	if n <= 0 {
		return errs.Validationf("increment quantity %d must be positive", n)
	}
	if err := s.itemRepo.IncrementQuantity(ctx, id, n); err != nil {
		return fmt.Errorf("failed to increment item %d quantity: %w", id, err)
	}
	return nil
}
