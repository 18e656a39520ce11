// backend-go/internal/domain/models.go
package domain

import "time"

// Item represents an inventory catalog entry
type Item struct {
	ItemID        int64   `json:"item_id" db:"item_id"`
	Name          string  `json:"name" db:"name"`
	Unit          string  `json:"unit" db:"unit"`
	Category      string  `json:"category" db:"category"`
	Price         float64 `json:"price" db:"price"`
	StockQuantity int     `json:"stock_quantity" db:"stock_quantity"`
	ReorderLevel  int     `json:"reorder_level" db:"reorder_level"`
}

// ItemInput carries the mutable item fields for create/update requests
type ItemInput struct {
	Name          string  `json:"name" binding:"required"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ReorderLevel  int     `json:"reorder_level"`
}

// Order represents a recorded issuance/sale transaction
type Order struct {
	OrderID         int64       `json:"order_id" db:"order_id"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	TransactionDate time.Time   `json:"transaction_date" db:"transaction_date"`
	ORNumber        string      `json:"or_number" db:"or_number"`
	Lines           []OrderLine `json:"lines,omitempty" db:"-"`
}

// OrderLine represents one item position within an order
type OrderLine struct {
	OrderLineID   int64  `json:"order_line_id" db:"order_line_id"`
	OrderID       int64  `json:"order_id" db:"order_id"`
	ItemID        int64  `json:"item_id" db:"item_id"`
	ItemName      string `json:"item_name,omitempty" db:"item_name"`
	Quantity      int    `json:"quantity" db:"quantity"`
	ReferenceNo   string `json:"reference_no" db:"reference_no"`
	Office        string `json:"office" db:"office"`
	DaysToConsume int    `json:"days_to_consume" db:"days_to_consume"`
	ReceiptQty    int    `json:"receipt_qty" db:"receipt_qty"`
}

// OrderInput is the request payload for recording an order with its lines
type OrderInput struct {
	CustomerName    string           `json:"customer_name" binding:"required"`
	TransactionDate string           `json:"transaction_date" binding:"required"`
	ORNumber        string           `json:"or_number"`
	Lines           []OrderLineInput `json:"lines" binding:"required,min=1"`
}

// OrderLineInput is one requested line within an OrderInput
type OrderLineInput struct {
	ItemID        int64  `json:"item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	ReferenceNo   string `json:"reference_no"`
	Office        string `json:"office"`
	DaysToConsume int    `json:"days_to_consume"`
}

// OrderSummary is the list-view projection of an order
type OrderSummary struct {
	OrderID         int64     `json:"order_id" db:"order_id"`
	CustomerName    string    `json:"customer_name" db:"customer_name"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	ORNumber        string    `json:"or_number" db:"or_number"`
	LineCount       int       `json:"line_count" db:"line_count"`
	TotalQuantity   int       `json:"total_quantity" db:"total_quantity"`
}

// ActivityLog represents one audit-trail row
type ActivityLog struct {
	LogID       int64     `json:"log_id" db:"log_id"`
	UserID      *int64    `json:"user_id" db:"user_id"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// AddStockResult reports a manual stock adjustment
type AddStockResult struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	OldStock int    `json:"old_stock"`
	Added    int    `json:"added"`
	NewStock int    `json:"new_stock"`
}
