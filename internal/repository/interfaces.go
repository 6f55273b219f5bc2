package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sabamas/arrears-engine/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// GetByCustomerNumber retrieves a customer by nomor_pelanggan, the
	// identifier the portal logs in with
	GetByCustomerNumber(ctx context.Context, customerNumber string) (*domain.Customer, error)

	// GetByID retrieves a customer by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// ListActive retrieves all customers with status aktif
	ListActive(ctx context.Context) ([]*domain.Customer, error)

	// GetStatusPeriods retrieves the customer's non-billable month ranges
	GetStatusPeriods(ctx context.Context, customerID uuid.UUID) ([]*domain.StatusPeriod, error)
}

// TariffRepository defines the interface for tariff data operations
type TariffRepository interface {
	// GetHistory retrieves the customer's effective-dated tariff
	// assignments ordered by tanggal_efektif then created_at
	GetHistory(ctx context.Context, customerID uuid.UUID) ([]*domain.TariffAssignment, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// ListActiveByCustomer retrieves all non-cancelled payments for a
	// customer, oldest first
	ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Payment, error)

	// Cancel soft-reverses a payment
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListDepositableCash retrieves non-cancelled, not-yet-deposited cash
	// payments collected within the inclusive month period
	ListDepositableCash(ctx context.Context, start, end domain.Month) ([]*domain.Payment, error)
}

// DepositRepository defines the interface for deposit data operations
type DepositRepository interface {
	// Create inserts the deposit and locks its member payments in one
	// transaction
	Create(ctx context.Context, deposit *domain.Deposit, paymentIDs []uuid.UUID) error

	// GetByID retrieves a deposit by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error)

	// Cancel reverses the deposit and unlocks its member payments in one
	// transaction
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
}
