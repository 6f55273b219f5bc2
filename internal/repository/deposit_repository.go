package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sabamas/arrears-engine/internal/domain"
)

type depositRepository struct {
	db *sqlx.DB
}

func NewDepositRepository(db *sqlx.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, deposit *domain.Deposit, paymentIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertDeposit := `
		INSERT INTO deposits (id, periode_awal, periode_akhir, jumlah_setor,
			nama_bendahara, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(ctx, insertDeposit,
		deposit.ID,
		deposit.PeriodStart,
		deposit.PeriodEnd,
		deposit.TotalAmount,
		deposit.Treasurer,
		deposit.CreatedAt,
	)
	if err != nil {
		return err
	}

	lockPayments := `
		UPDATE payments
		SET is_deposited = TRUE, deposit_id = $1
		WHERE id = ANY($2)
	`

	ids := make([]string, len(paymentIDs))
	for i, id := range paymentIDs {
		ids[i] = id.String()
	}

	_, err = tx.ExecContext(ctx, lockPayments, deposit.ID, pq.Array(ids))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *depositRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	query := `
		SELECT id, periode_awal, periode_akhir, jumlah_setor, nama_bendahara,
		       cancelled_at, created_at
		FROM deposits
		WHERE id = $1
	`

	var deposit domain.Deposit
	err := r.db.GetContext(ctx, &deposit, query, id)
	if err != nil {
		return nil, err
	}

	return &deposit, nil
}

func (r *depositRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cancelDeposit := `
		UPDATE deposits
		SET cancelled_at = $2
		WHERE id = $1 AND cancelled_at IS NULL
	`

	if _, err = tx.ExecContext(ctx, cancelDeposit, id, at); err != nil {
		return err
	}

	unlockPayments := `
		UPDATE payments
		SET is_deposited = FALSE, deposit_id = NULL
		WHERE deposit_id = $1
	`

	if _, err = tx.ExecContext(ctx, unlockPayments, id); err != nil {
		return err
	}

	return tx.Commit()
}
