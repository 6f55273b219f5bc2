package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash     = "tunai"
	PaymentMethodTransfer = "transfer"
)

// BreakdownEntry records how much of a payment was allocated to one month
// when the split was not a simple equal division.
type BreakdownEntry struct {
	Amount  decimal.Decimal `json:"amount"`
	Source  string          `json:"source,omitempty"`
	Details string          `json:"details,omitempty"`
}

// MonthBreakdown maps billing months to explicit allocations. When present
// on a payment it is the authoritative record and overrides the equal split,
// even if its sum differs from jumlah_bayar.
type MonthBreakdown map[Month]BreakdownEntry

func (b MonthBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Payment represents a collected payment transaction
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CustomerID  uuid.UUID       `json:"customer_id" db:"customer_id"`
	PaidAt      time.Time       `json:"tanggal_bayar" db:"tanggal_bayar"`
	Amount      decimal.Decimal `json:"jumlah_bayar" db:"jumlah_bayar"`
	Method      string          `json:"metode_bayar" db:"metode_bayar"`
	Months      MonthList       `json:"bulan_dibayar" db:"-"`
	Breakdown   MonthBreakdown  `json:"month_breakdown,omitempty" db:"-"`
	IsPartial   bool            `json:"is_partial" db:"is_partial"`
	IsDeposited bool            `json:"is_deposited" db:"is_deposited"`
	DepositID   *uuid.UUID      `json:"deposit_id,omitempty" db:"deposit_id"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	// Raw column values, parsed lazily via Normalize. Kept separate so a
	// single malformed row can be skipped instead of failing the whole
	// result set scan.
	RawMonths    json.RawMessage `json:"-" db:"bulan_dibayar"`
	RawBreakdown json.RawMessage `json:"-" db:"month_breakdown"`
}

// Cancelled reports whether the payment has been soft-reversed.
func (p *Payment) Cancelled() bool {
	return p.CancelledAt != nil
}

// Normalize parses the raw bulan_dibayar and month_breakdown column values
// into typed fields. Idempotent; returns an error for rows whose encoded
// month data cannot be parsed.
func (p *Payment) Normalize() error {
	if p.Months == nil {
		if len(p.RawMonths) == 0 {
			return fmt.Errorf("payment %s: bulan_dibayar is empty", p.ID)
		}
		if err := p.Months.UnmarshalJSON(p.RawMonths); err != nil {
			return fmt.Errorf("payment %s: %w", p.ID, err)
		}
		if len(p.Months) == 0 {
			return fmt.Errorf("payment %s: bulan_dibayar has no months", p.ID)
		}
	}
	if p.Breakdown == nil && len(p.RawBreakdown) > 0 && string(p.RawBreakdown) != "null" {
		if err := json.Unmarshal(p.RawBreakdown, &p.Breakdown); err != nil {
			return fmt.Errorf("payment %s: month_breakdown: %w", p.ID, err)
		}
	}
	return nil
}

// DTOs for requests and responses

type CreatePaymentRequest struct {
	CustomerNumber string                    `json:"nomor_pelanggan" validate:"required"`
	Amount         decimal.Decimal           `json:"jumlah_bayar" validate:"required"`
	Method         string                    `json:"metode_bayar" validate:"required,oneof=tunai transfer"`
	Months         []string                  `json:"bulan_dibayar" validate:"required,min=1,dive,len=7"`
	Breakdown      map[string]BreakdownEntry `json:"month_breakdown,omitempty"`
	IsPartial      bool                      `json:"is_partial"`
	PaidAt         *time.Time                `json:"tanggal_bayar,omitempty"`
}

type CreatePaymentResponse struct {
	Payment      *Payment       `json:"payment"`
	Arrears      *ArrearsResult `json:"arrears"`
	Confirmation string         `json:"pesan_konfirmasi"`
}
