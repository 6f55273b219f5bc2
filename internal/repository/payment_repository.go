package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sabamas/arrears-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	id, customer_id, tanggal_bayar, jumlah_bayar, metode_bayar, bulan_dibayar,
	month_breakdown, is_partial, is_deposited, deposit_id, cancelled_at, created_at
`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, customer_id, tanggal_bayar, jumlah_bayar,
			metode_bayar, bulan_dibayar, month_breakdown, is_partial,
			is_deposited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.CustomerID,
		payment.PaidAt,
		payment.Amount,
		payment.Method,
		payment.Months,
		payment.Breakdown,
		payment.IsPartial,
		payment.IsDeposited,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE customer_id = $1 AND cancelled_at IS NULL
		ORDER BY tanggal_bayar
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, customerID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE payments
		SET cancelled_at = $2
		WHERE id = $1 AND cancelled_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

func (r *paymentRepository) ListDepositableCash(ctx context.Context, start, end domain.Month) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE metode_bayar = $1
		  AND cancelled_at IS NULL
		  AND is_deposited = FALSE
		  AND tanggal_bayar >= $2
		  AND tanggal_bayar < $3
		ORDER BY tanggal_bayar
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query,
		domain.PaymentMethodCash, start.FirstDay(), end.Next().FirstDay())
	if err != nil {
		return nil, err
	}

	return payments, nil
}
