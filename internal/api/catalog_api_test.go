package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memItemRepo keeps the catalog in a map so the item routes can be driven
// end to end without Postgres.
type memItemRepo struct {
	items map[int64]domain.Item
}

func (m *memItemRepo) List(context.Context) ([]domain.Item, error) {
	out := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (m *memItemRepo) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return &item, nil
}

func (m *memItemRepo) GetByName(context.Context, string) (*domain.Item, error) {
	return nil, repository.ErrItemNotFound
}

func (m *memItemRepo) Create(_ context.Context, in domain.ItemInput) (*domain.Item, error) {
	item := domain.Item{ItemID: int64(len(m.items) + 1), Name: in.Name, Price: in.Price}
	m.items[item.ItemID] = item
	return &item, nil
}

func (m *memItemRepo) Update(_ context.Context, id int64, in domain.ItemInput) (*domain.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	item.Name = in.Name
	item.Price = in.Price
	m.items[id] = item
	return &item, nil
}

func (m *memItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memItemRepo) AddStock(_ context.Context, id int64, qty int) (*domain.AddStockResult, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	result := &domain.AddStockResult{
		ItemID:   id,
		Name:     item.Name,
		OldStock: item.StockQuantity,
		Added:    qty,
		NewStock: item.StockQuantity + qty,
	}
	item.StockQuantity = result.NewStock
	m.items[id] = item
	return result, nil
}

func (m *memItemRepo) StockLevels(context.Context) (map[string]domain.StockLevel, error) {
	return nil, nil
}

type memOrderRepo struct {
	failWith error
}

func (m *memOrderRepo) CreateWithLines(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := *order
	out.OrderID = 9
	return &out, nil
}

func (m *memOrderRepo) List(context.Context, int) ([]domain.OrderSummary, error) {
	return nil, nil
}

func (m *memOrderRepo) GetByID(context.Context, int64) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func newCatalogRouter(t *testing.T, orders *memOrderRepo) *gin.Engine {
	t.Helper()

	items := &memItemRepo{items: map[int64]domain.Item{
		1: {ItemID: 1, Name: "Bond Paper", Unit: "ream", Price: 4, StockQuantity: 10},
	}}

	return NewRouter(&Services{
		Items:  service.NewItemService(items, nil),
		Orders: service.NewOrderService(orders, nil),
	}, &config.Config{})
}

func doJSON(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListItemsEndpoint(t *testing.T) {
	w := doRequest(t, newCatalogRouter(t, &memOrderRepo{}), http.MethodGet, "/api/v1/items")

	require.Equal(t, http.StatusOK, w.Code)
	var items []domain.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Bond Paper", items[0].Name)
}

func TestItemRoutesRejectBadID(t *testing.T) {
	router := newCatalogRouter(t, &memOrderRepo{})

	for _, target := range []string{"/api/v1/items/abc", "/api/v1/items/0"} {
		w := doRequest(t, router, http.MethodDelete, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestDeleteUnknownItemIsNotFound(t *testing.T) {
	w := doRequest(t, newCatalogRouter(t, &memOrderRepo{}), http.MethodDelete, "/api/v1/items/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddStockEndpoint(t *testing.T) {
	router := newCatalogRouter(t, &memOrderRepo{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/items/1/add_stock", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.AddStockResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 10, result.OldStock)
	assert.Equal(t, 13, result.NewStock)

	// Zero fails binding, negative fails service validation; both are 400s.
	w = doJSON(t, router, http.MethodPost, "/api/v1/items/1/add_stock", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/items/1/add_stock", `{"quantity":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	router := newCatalogRouter(t, &memOrderRepo{})

	payload := `{"customer_name":"Registrar Office","transaction_date":"2025-03-14","lines":[{"item_id":1,"quantity":5}]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, int64(9), order.OrderID)
	require.Len(t, order.Lines, 1)
}

func TestCreateOrderWithoutLinesIsBadRequest(t *testing.T) {
	router := newCatalogRouter(t, &memOrderRepo{})

	payload := `{"customer_name":"Registrar Office","transaction_date":"2025-03-14","lines":[]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	router := newCatalogRouter(t, &memOrderRepo{failWith: repository.ErrInsufficientStock})

	payload := `{"customer_name":"Registrar Office","transaction_date":"2025-03-14","lines":[{"item_id":1,"quantity":500}]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
