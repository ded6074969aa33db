package models

import "github.com/shopspring/decimal"

// DonationStats aggregates completed donations, all-time and for the current month.
type DonationStats struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalCount    int64           `json:"total_count"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	MonthlyCount  int64           `json:"monthly_count"`
}

// AmountCount is the row shape of a SUM/COUNT aggregate.
type AmountCount struct {
	Total decimal.Decimal
	Count int64
}
