package domain

import "time"

// MonthlyReportRow is one line of the monthly issuance report. Souvenir
// rows without an official receipt keep "-" in ORNumber.
type MonthlyReportRow struct {
	Date        time.Time `json:"date" db:"date"`
	Payer       string    `json:"payer" db:"payer"`
	QtySold     int       `json:"qty_sold" db:"qty_sold"`
	Unit        string    `json:"unit" db:"unit"`
	Description string    `json:"description" db:"description"`
	UnitCost    float64   `json:"unit_cost" db:"unit_cost"`
	TotalCost   float64   `json:"total_cost" db:"total_cost"`
	ORNumber    string    `json:"or_number" db:"or_number"`
}

// StockCard is the ledger view of a single item: header figures plus one
// movement per order line.
type StockCard struct {
	Item             Item                `json:"item"`
	CurrentStock     int                 `json:"current_stock"`
	TotalIssued      int                 `json:"total_issued"`
	OpeningBalance   int                 `json:"opening_balance"`
	EstDaysToConsume float64             `json:"est_days_to_consume"`
	Movements        []StockCardMovement `json:"movements"`
}

// StockCardMovement is one issuance row on the stock card.
type StockCardMovement struct {
	OrderLineID   int64     `json:"order_line_id" db:"order_line_id"`
	Date          time.Time `json:"date" db:"date"`
	Office        string    `json:"office" db:"office"`
	ReferenceNo   string    `json:"reference_no" db:"reference_no"`
	IssuedQty     int       `json:"issued_qty" db:"issued_qty"`
	ReceiptQty    int       `json:"receipt_qty" db:"receipt_qty"`
	DaysToConsume int       `json:"days_to_consume" db:"days_to_consume"`
	Balance       int       `json:"balance" db:"-"`
}

// StockCardLineUpdate patches the operator-maintained columns of one
// movement row.
type StockCardLineUpdate struct {
	OrderLineID   int64   `json:"order_line_id" binding:"required"`
	ReferenceNo   *string `json:"reference_no"`
	Office        *string `json:"office"`
	DaysToConsume *int    `json:"days_to_consume"`
	ReceiptQty    *int    `json:"receipt_qty"`
}
