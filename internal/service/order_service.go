package service

import (
	"context"
	"fmt"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
)

type OrderService struct {
	orders   repository.OrderRepository
	activity *ActivityService
}

func NewOrderService(orders repository.OrderRepository, activity *ActivityService) *OrderService {
	return &OrderService{orders: orders, activity: activity}
}

// Create records an order with its lines, consuming stock transactionally.
func (s *OrderService) Create(ctx context.Context, userID *int64, in domain.OrderInput) (*domain.Order, error) {
	date, err := time.Parse("2006-01-02", in.TransactionDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	order := &domain.Order{
		CustomerName:    in.CustomerName,
		TransactionDate: date,
		ORNumber:        in.ORNumber,
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			ItemID:        line.ItemID,
			Quantity:      line.Quantity,
			ReferenceNo:   line.ReferenceNo,
			Office:        line.Office,
			DaysToConsume: line.DaysToConsume,
		})
	}

	created, err := s.orders.CreateWithLines(ctx, order)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, ActionOrders,
		fmt.Sprintf("Recorded order #%d for '%s' (%d lines)", created.OrderID, created.CustomerName, len(created.Lines)))
	return created, nil
}

func (s *OrderService) List(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	orders, err := s.orders.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = make([]domain.OrderSummary, 0)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}
