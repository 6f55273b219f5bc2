package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TariffCategory represents a monthly rate category. Categories referenced
// by historical billing periods are immutable; rate changes create a new
// effective-dated assignment instead of mutating the category.
type TariffCategory struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"nama_kategori" db:"nama_kategori"`
	MonthlyRate decimal.Decimal `json:"harga_per_bulan" db:"harga_per_bulan"`
	Description *string         `json:"deskripsi,omitempty" db:"deskripsi"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TariffAssignment binds a customer to a tariff category from an effective
// date onward. A customer's tariff history is the ordered list of these.
type TariffAssignment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	TariffID      uuid.UUID       `json:"tarif_id" db:"tarif_id"`
	CategoryName  string          `json:"nama_kategori" db:"nama_kategori"`
	Rate          decimal.Decimal `json:"harga_per_bulan" db:"harga_per_bulan"`
	EffectiveFrom time.Time       `json:"tanggal_efektif" db:"tanggal_efektif"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// EffectiveMonth returns the first month the assignment applies to.
func (a *TariffAssignment) EffectiveMonth() Month {
	return MonthOf(a.EffectiveFrom)
}
