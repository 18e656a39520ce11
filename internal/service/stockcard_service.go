package service

import (
	"context"
	"fmt"
	"math"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
)

type StockCardService struct {
	items    repository.ItemRepository
	cards    repository.StockCardRepository
	activity *ActivityService
}

func NewStockCardService(items repository.ItemRepository, cards repository.StockCardRepository, activity *ActivityService) *StockCardService {
	return &StockCardService{items: items, cards: cards, activity: activity}
}

// Get assembles the stock card: header figures derived from current stock
// and total issuance, then the movement ledger with a running balance.
func (s *StockCardService) Get(ctx context.Context, itemID int64) (*domain.StockCard, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	movements, err := s.cards.Movements(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if movements == nil {
		movements = make([]domain.StockCardMovement, 0)
	}

	// 1. Total issued across all movements
	totalIssued := 0
	for _, m := range movements {
		totalIssued += m.IssuedQty
	}

	// 2. Opening balance reconstructs what was on hand before any issuance
	opening := item.StockQuantity + totalIssued

	// 3. Estimated days to consume the current stock at the observed rate
	estDays := 0.0
	if totalIssued > 0 && len(movements) > 0 {
		first := movements[0].Date
		last := movements[len(movements)-1].Date
		spanDays := last.Sub(first).Hours()/24 + 1
		if spanDays < 1 {
			spanDays = 1
		}
		dailyRate := float64(totalIssued) / spanDays
		estDays = math.Round(float64(item.StockQuantity)/dailyRate*100) / 100
	}

	// 4. Running balance, opening minus cumulative issuance
	balance := opening
	for i := range movements {
		balance -= movements[i].IssuedQty
		movements[i].Balance = balance
	}

	return &domain.StockCard{
		Item:             *item,
		CurrentStock:     item.StockQuantity,
		TotalIssued:      totalIssued,
		OpeningBalance:   opening,
		EstDaysToConsume: estDays,
		Movements:        movements,
	}, nil
}

// Update patches the operator-maintained columns of one movement row.
func (s *StockCardService) Update(ctx context.Context, userID *int64, itemID int64, upd domain.StockCardLineUpdate) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.cards.UpdateLine(ctx, itemID, upd); err != nil {
		return err
	}

	s.activity.Record(ctx, userID, ActionStockCard,
		fmt.Sprintf("Updated stock card line %d of '%s'", upd.OrderLineID, item.Name))
	return nil
}
