package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/repository"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
)

// DepositService batches collected cash payments into deposits handed to a
// treasurer. Member payments are locked until the deposit is cancelled.
type DepositService struct {
	paymentRepo repository.PaymentRepository
	depositRepo repository.DepositRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewDepositService(
	paymentRepo repository.PaymentRepository,
	depositRepo repository.DepositRepository,
	log *zap.Logger,
) *DepositService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DepositService{
		paymentRepo: paymentRepo,
		depositRepo: depositRepo,
		log:         log,
		now:         time.Now,
	}
}

// CreateDeposit sweeps every depositable cash payment in the period into a
// new deposit. jumlah_setor is the exact sum of the member payments.
func (s *DepositService) CreateDeposit(ctx context.Context, request *domain.CreateDepositRequest) (*domain.CreateDepositResponse, error) {
	start, err := domain.ParseMonth(request.PeriodStart)
	if err != nil {
		return nil, customError.WrapInvalidMonthFormat(request.PeriodStart)
	}
	end, err := domain.ParseMonth(request.PeriodEnd)
	if err != nil {
		return nil, customError.WrapInvalidMonthFormat(request.PeriodEnd)
	}
	if end.Before(start) {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidDepositPeriod,
			"periode_akhir precedes periode_awal",
			customError.ErrInvalidDepositPeriod,
		)
	}

	payments, err := s.paymentRepo.ListDepositableCash(ctx, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(payments) == 0 {
		return nil, customError.WrapDepositEmptyPeriod(start.String(), end.String())
	}

	total := decimal.Zero
	paymentIDs := make([]uuid.UUID, len(payments))
	for i, p := range payments {
		total = total.Add(p.Amount)
		paymentIDs[i] = p.ID
	}

	deposit := &domain.Deposit{
		ID:          uuid.New(),
		PeriodStart: start,
		PeriodEnd:   end,
		TotalAmount: total,
		Treasurer:   request.Treasurer,
		CreatedAt:   s.now(),
	}

	if err := s.depositRepo.Create(ctx, deposit, paymentIDs); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.Info("deposit created",
		zap.String("deposit_id", deposit.ID.String()),
		zap.String("periode", start.String()+".."+end.String()),
		zap.Int("payments", len(payments)),
	)

	return &domain.CreateDepositResponse{
		Deposit:      deposit,
		PaymentCount: len(payments),
	}, nil
}

// UndepositedCash lists cash payments that have not been swept into a
// deposit yet. The window reaches back twelve months so cash collected in an
// earlier month keeps showing up in the weekly reminder until it is
// deposited.
func (s *DepositService) UndepositedCash(ctx context.Context) ([]*domain.Payment, error) {
	now := s.now()
	start := domain.MonthOf(now.AddDate(-1, 0, 0))
	end := domain.MonthOf(now)

	payments, err := s.paymentRepo.ListDepositableCash(ctx, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// CancelDeposit reverses a deposit and unlocks its member payments so they
// become individually cancellable again.
func (s *DepositService) CancelDeposit(ctx context.Context, depositID uuid.UUID) (*domain.Deposit, error) {
	deposit, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDepositNotFound(depositID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if deposit.Cancelled() {
		return nil, customError.WrapDepositAlreadyCancelled(depositID.String())
	}

	at := s.now()
	if err := s.depositRepo.Cancel(ctx, depositID, at); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	deposit.CancelledAt = &at

	return deposit, nil
}

// WithClock overrides the wall clock, for tests.
func (s *DepositService) WithClock(now func() time.Time) *DepositService {
	s.now = now
	return s
}
