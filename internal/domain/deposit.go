package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit groups cash payments collected over a period into a single sum
// handed to a treasurer. Member payments are locked (is_deposited) until the
// deposit itself is cancelled.
type Deposit struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	PeriodStart Month           `json:"periode_awal" db:"periode_awal"`
	PeriodEnd   Month           `json:"periode_akhir" db:"periode_akhir"`
	TotalAmount decimal.Decimal `json:"jumlah_setor" db:"jumlah_setor"`
	Treasurer   string          `json:"nama_bendahara" db:"nama_bendahara"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Cancelled reports whether the deposit has been reversed.
func (d *Deposit) Cancelled() bool {
	return d.CancelledAt != nil
}

type CreateDepositRequest struct {
	PeriodStart string `json:"periode_awal" validate:"required,len=7"`
	PeriodEnd   string `json:"periode_akhir" validate:"required,len=7"`
	Treasurer   string `json:"nama_bendahara" validate:"required"`
}

type CreateDepositResponse struct {
	Deposit      *Deposit `json:"deposit"`
	PaymentCount int      `json:"payment_count"`
}
