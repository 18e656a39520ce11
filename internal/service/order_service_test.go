package service

import (
	"context"
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	created *domain.Order
	err     error
	orders  []domain.OrderSummary
}

func (f *fakeOrderRepo) CreateWithLines(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = order
	out := *order
	out.OrderID = 77
	return &out, nil
}

func (f *fakeOrderRepo) List(context.Context, int) ([]domain.OrderSummary, error) {
	return f.orders, nil
}

func (f *fakeOrderRepo) GetByID(context.Context, int64) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func orderInput(date string, qtys ...int) domain.OrderInput {
	in := domain.OrderInput{
		CustomerName:    "Registrar Office",
		TransactionDate: date,
		ORNumber:        "OR-1001",
	}
	for i, q := range qtys {
		in.Lines = append(in.Lines, domain.OrderLineInput{ItemID: int64(i + 1), Quantity: q})
	}
	return in
}

func TestCreateOrderParsesDateAndLines(t *testing.T) {
	repo := &fakeOrderRepo{}
	audit := &recordingActivityRepo{}
	svc := NewOrderService(repo, NewActivityService(audit))

	created, err := svc.Create(context.Background(), nil, orderInput("2025-03-14", 5, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(77), created.OrderID)
	require.NotNil(t, repo.created)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), repo.created.TransactionDate)
	require.Len(t, repo.created.Lines, 2)
	assert.Equal(t, 5, repo.created.Lines[0].Quantity)
	assert.Equal(t, int64(2), repo.created.Lines[1].ItemID)

	require.Len(t, audit.actions, 1)
	assert.Equal(t, ActionOrders, audit.actions[0])
	assert.Contains(t, audit.descriptions[0], "order #77")
}

func TestCreateOrderRejectsBadDate(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewOrderService(repo, nil)

	_, err := svc.Create(context.Background(), nil, orderInput("14-03-2025", 5))
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Nil(t, repo.created)
}

func TestCreateOrderRejectsNonPositiveQuantity(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewOrderService(repo, nil)

	for _, qty := range []int{0, -3} {
		_, err := svc.Create(context.Background(), nil, orderInput("2025-03-14", qty))
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Nil(t, repo.created)
}

func TestCreateOrderPropagatesInsufficientStock(t *testing.T) {
	repo := &fakeOrderRepo{err: repository.ErrInsufficientStock}
	svc := NewOrderService(repo, nil)

	_, err := svc.Create(context.Background(), nil, orderInput("2025-03-14", 500))
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
}

func TestListOrdersNeverNil(t *testing.T) {
	svc := NewOrderService(&fakeOrderRepo{}, nil)

	orders, err := svc.List(context.Background(), 20)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
