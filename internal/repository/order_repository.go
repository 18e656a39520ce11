// backend-go/internal/repository/order_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/capstone-itrack/backend-go/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLineNotFound = errors.New("order line not found for item")
	ErrInsufficientStock = errors.New("insufficient stock for order line")
)

type OrderRepository interface {
	// CreateWithLines records the order and its lines in one transaction,
	// decrementing each item's stock. Any line exceeding available stock
	// rolls the whole order back with ErrInsufficientStock.
	CreateWithLines(ctx context.Context, order *domain.Order) (*domain.Order, error)
	List(ctx context.Context, limit int) ([]domain.OrderSummary, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}
