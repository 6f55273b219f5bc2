package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sabamas/arrears-engine/internal/domain"
)

type tariffRepository struct {
	db *sqlx.DB
}

func NewTariffRepository(db *sqlx.DB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) GetHistory(ctx context.Context, customerID uuid.UUID) ([]*domain.TariffAssignment, error) {
	query := `
		SELECT a.id, a.customer_id, a.tarif_id, t.nama_kategori,
		       t.harga_per_bulan, a.tanggal_efektif, a.created_at
		FROM tariff_assignments a
		JOIN tariff_categories t ON t.id = a.tarif_id
		WHERE a.customer_id = $1
		ORDER BY a.tanggal_efektif, a.created_at
	`

	var history []*domain.TariffAssignment
	err := r.db.SelectContext(ctx, &history, query, customerID)
	if err != nil {
		return nil, err
	}

	return history, nil
}
