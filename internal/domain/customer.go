package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	CustomerStatusActive   = "aktif"
	CustomerStatusInactive = "nonaktif"
	CustomerStatusOnLeave  = "cuti"
)

// Customer represents a service customer
type Customer struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	CustomerNumber      string    `json:"nomor_pelanggan" db:"nomor_pelanggan"`
	Name                string    `json:"nama" db:"nama"`
	Address             string    `json:"alamat" db:"alamat"`
	Area                string    `json:"wilayah" db:"wilayah"`
	Phone               string    `json:"nomor_telepon" db:"nomor_telepon"`
	Status              string    `json:"status" db:"status"`
	JoinedAt            time.Time `json:"tanggal_bergabung" db:"tanggal_bergabung"`
	TariffID            uuid.UUID `json:"tarif_id" db:"tarif_id"`
	TariffEffectiveFrom time.Time `json:"tanggal_efektif_tarif" db:"tanggal_efektif_tarif"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// JoinMonth returns the first billable month for the customer.
func (c *Customer) JoinMonth() Month {
	return MonthOf(c.JoinedAt)
}

// StatusPeriod records a month range during which the customer held a
// non-billable status (cuti or nonaktif). Ranges are inclusive on both ends.
type StatusPeriod struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	Status     string    `json:"status" db:"status"`
	FromMonth  Month     `json:"bulan_awal" db:"bulan_awal"`
	ToMonth    Month     `json:"bulan_akhir" db:"bulan_akhir"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether the period spans the whole of month m.
func (p *StatusPeriod) Covers(m Month) bool {
	return !m.Before(p.FromMonth) && !m.After(p.ToMonth)
}
