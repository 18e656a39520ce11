package service

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDate     = errors.New("transaction_date must be YYYY-MM-DD")
	ErrBadExportFormat = errors.New("filetype must be csv or xlsx")

	// ErrHistoryUnavailable means neither history source could produce
	// records: the database had none and the workbook was missing or
	// unreadable. Distinct from an unknown item, which is a not-found.
	ErrHistoryUnavailable = errors.New("history data unavailable")
)
