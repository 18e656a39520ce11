// backend-go/internal/repository/item_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrDuplicateItem = errors.New("item name already exists")
)

type ItemRepository interface {
	List(ctx context.Context) ([]domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetByName(ctx context.Context, name string) (*domain.Item, error)
	Create(ctx context.Context, in domain.ItemInput) (*domain.Item, error)
	Update(ctx context.Context, id int64, in domain.ItemInput) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
	AddStock(ctx context.Context, id int64, qty int) (*domain.AddStockResult, error)
	StockLevels(ctx context.Context) (map[string]domain.StockLevel, error)
}

type itemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT item_id, name, unit, category, price, stock_quantity, reorder_level
		FROM item
		ORDER BY item_id
	`

	var items []domain.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		SELECT item_id, name, unit, category, price, stock_quantity, reorder_level
		FROM item
		WHERE item_id = $1
	`

	var item domain.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error getting item %d: %w", id, err)
	}

	return &item, nil
}

// GetByName matches case-insensitively on the trimmed name, the same
// normalization the forecast cache uses.
func (r *itemRepository) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	query := `
		SELECT item_id, name, unit, category, price, stock_quantity, reorder_level
		FROM item
		WHERE LOWER(TRIM(name)) = $1
	`

	var item domain.Item
	key := strings.ToLower(strings.TrimSpace(name))
	if err := r.db.GetContext(ctx, &item, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error getting item %q: %w", name, err)
	}

	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	query := `
		INSERT INTO item (name, unit, category, price, stock_quantity, reorder_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING item_id, name, unit, category, price, stock_quantity, reorder_level
	`

	var item domain.Item
	err := r.db.GetContext(ctx, &item, query,
		strings.TrimSpace(in.Name), in.Unit, in.Category, in.Price, in.StockQuantity, in.ReorderLevel)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("error creating item: %w", err)
	}

	return &item, nil
}

func (r *itemRepository) Update(ctx context.Context, id int64, in domain.ItemInput) (*domain.Item, error) {
	query := `
		UPDATE item
		SET name = $1, unit = $2, category = $3, price = $4, stock_quantity = $5, reorder_level = $6
		WHERE item_id = $7
		RETURNING item_id, name, unit, category, price, stock_quantity, reorder_level
	`

	var item domain.Item
	err := r.db.GetContext(ctx, &item, query,
		strings.TrimSpace(in.Name), in.Unit, in.Category, in.Price, in.StockQuantity, in.ReorderLevel, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("error updating item %d: %w", id, err)
	}

	return &item, nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM item WHERE item_id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting item %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting item %d: %w", id, err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// AddStock bumps stock_quantity atomically and reports the before/after
// levels.
func (r *itemRepository) AddStock(ctx context.Context, id int64, qty int) (*domain.AddStockResult, error) {
	query := `
		UPDATE item
		SET stock_quantity = stock_quantity + $1
		WHERE item_id = $2
		RETURNING item_id, name, stock_quantity
	`

	var row struct {
		ItemID        int64  `db:"item_id"`
		Name          string `db:"name"`
		StockQuantity int    `db:"stock_quantity"`
	}
	if err := r.db.GetContext(ctx, &row, query, qty, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error adding stock to item %d: %w", id, err)
	}

	return &domain.AddStockResult{
		ItemID:   row.ItemID,
		Name:     row.Name,
		OldStock: row.StockQuantity - qty,
		Added:    qty,
		NewStock: row.StockQuantity,
	}, nil
}

// StockLevels returns every catalog item keyed by normalized name, for the
// forecast planner's stock lookups.
func (r *itemRepository) StockLevels(ctx context.Context) (map[string]domain.StockLevel, error) {
	query := `SELECT name AS item_name, stock_quantity FROM item`

	var rows []struct {
		ItemName      string `db:"item_name"`
		StockQuantity int    `db:"stock_quantity"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error loading stock levels: %w", err)
	}

	levels := make(map[string]domain.StockLevel, len(rows))
	for _, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.ItemName))
		levels[key] = domain.StockLevel{Name: row.ItemName, Quantity: row.StockQuantity}
	}

	return levels, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
