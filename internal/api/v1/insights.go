package v1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Derived result shapes produced by the insights engine. Computed per
// request from the store snapshot, never persisted.

// CostByCurrency is the total cost of all calls billed in one currency.
type CostByCurrency struct {
	Currency  string          `json:"currency"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// TopCaller is one entry of the callers-by-call-count ranking.
type TopCaller struct {
	CallerID  string `json:"callerId"`
	CallCount int    `json:"callCount"`
}

// DailySummary aggregates all calls of one calendar day.
type DailySummary struct {
	Date          time.Time       `json:"date"`
	TotalCalls    int             `json:"totalCalls"`
	TotalDuration int             `json:"totalDuration"`
	TotalCost     decimal.Decimal `json:"totalCost"`
}
