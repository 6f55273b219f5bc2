package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sabamas/arrears-engine/internal/domain"
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `
	id, nomor_pelanggan, nama, alamat, wilayah, nomor_telepon, status,
	tanggal_bergabung, tarif_id, tanggal_efektif_tarif, created_at, updated_at
`

func (r *customerRepository) GetByCustomerNumber(ctx context.Context, customerNumber string) (*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE nomor_pelanggan = $1
	`

	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer, query, customerNumber)
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer, query, id)
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) ListActive(ctx context.Context) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE status = $1
		ORDER BY nomor_pelanggan
	`

	var customers []*domain.Customer
	err := r.db.SelectContext(ctx, &customers, query, domain.CustomerStatusActive)
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *customerRepository) GetStatusPeriods(ctx context.Context, customerID uuid.UUID) ([]*domain.StatusPeriod, error) {
	query := `
		SELECT id, customer_id, status, bulan_awal, bulan_akhir, created_at
		FROM customer_status_periods
		WHERE customer_id = $1
		ORDER BY bulan_awal
	`

	var periods []*domain.StatusPeriod
	err := r.db.SelectContext(ctx, &periods, query, customerID)
	if err != nil {
		return nil, err
	}

	return periods, nil
}
