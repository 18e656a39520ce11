package service

import (
	"context"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
)

type ItemService struct {
	items    repository.ItemRepository
	activity *ActivityService
}

func NewItemService(items repository.ItemRepository, activity *ActivityService) *ItemService {
	return &ItemService{items: items, activity: activity}
}

func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]domain.Item, 0)
	}
	return items, nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *ItemService) Create(ctx context.Context, userID *int64, in domain.ItemInput) (*domain.Item, error) {
	item, err := s.items.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, ActionInventory,
		fmt.Sprintf("Added inventory item '%s' (item_id=%d)", item.Name, item.ItemID))
	return item, nil
}

// Update edits an item. A price change gets its own audit wording, since
// price history is what the finance side goes looking for.
func (s *ItemService) Update(ctx context.Context, userID *int64, id int64, in domain.ItemInput) (*domain.Item, error) {
	before, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	if before.Price != item.Price {
		s.activity.Record(ctx, userID, ActionInventory,
			fmt.Sprintf("Updated price of '%s' from %.2f to %.2f", item.Name, before.Price, item.Price))
	} else {
		s.activity.Record(ctx, userID, ActionInventory,
			fmt.Sprintf("Updated inventory item '%s' (item_id=%d)", item.Name, item.ItemID))
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID *int64, id int64) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, userID, ActionInventory,
		fmt.Sprintf("Deleted inventory item '%s' (item_id=%d)", item.Name, item.ItemID))
	return nil
}

func (s *ItemService) AddStock(ctx context.Context, userID *int64, id int64, qty int) (*domain.AddStockResult, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	result, err := s.items.AddStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, ActionInventory,
		fmt.Sprintf("Added %d stock to '%s': %d -> %d", result.Added, result.Name, result.OldStock, result.NewStock))
	return result, nil
}
