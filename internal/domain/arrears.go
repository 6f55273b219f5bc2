package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArrearMonth is one outstanding billing period. Field names and whole-rupiah
// amounts are a stable contract with the dashboard, portal, bulk-print and
// message-composition consumers.
type ArrearMonth struct {
	Month   Month           `json:"month"`
	Amount  decimal.Decimal `json:"amount"`
	Details string          `json:"details"`
	Source  string          `json:"source"`
}

// ArrearsResult is the computed arrears state for one customer. It is never
// persisted; it is re-derived on every read.
type ArrearsResult struct {
	TotalArrears decimal.Decimal `json:"totalArrears"`
	TotalMonths  int             `json:"totalMonths"`
	ArrearMonths []ArrearMonth   `json:"arrearMonths"`
}

type CustomerArrearsResponse struct {
	Customer *Customer      `json:"customer"`
	AsOf     Month          `json:"as_of"`
	Arrears  *ArrearsResult `json:"arrears"`
}

// DashboardSummary aggregates arrears across active customers for the admin
// stat cards. Rebuilt nightly by the scheduler and cached.
type DashboardSummary struct {
	AsOf               Month           `json:"as_of"`
	TotalArrears       decimal.Decimal `json:"total_arrears"`
	TotalMonths        int             `json:"total_months"`
	CustomersInArrears int             `json:"customers_in_arrears"`
	ActiveCustomers    int             `json:"active_customers"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
