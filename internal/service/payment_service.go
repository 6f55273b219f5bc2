package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/repository"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
	"github.com/sabamas/arrears-engine/pkg/utils"
)

// PaymentService records and cancels payments. Cancellation is a soft
// reversal; arrears are never patched, they are re-derived from the
// remaining payment set on the next read.
type PaymentService struct {
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRepository
	arrears      *ArrearsService
	log          *zap.Logger
	now          func() time.Time
}

func NewPaymentService(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	arrears *ArrearsService,
	log *zap.Logger,
) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		arrears:      arrears,
		log:          log,
		now:          time.Now,
	}
}

// CreatePayment validates and stores a payment, then returns the customer's
// fresh arrears state together with the confirmation message sent to the
// customer over WhatsApp.
func (s *PaymentService) CreatePayment(ctx context.Context, request *domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	customer, err := s.customerRepo.GetByCustomerNumber(ctx, request.CustomerNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(request.CustomerNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.Amount.Sign() <= 0 {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidPaymentAmount,
			fmt.Sprintf("Payment amount %s must be positive", request.Amount),
			customError.ErrInvalidPaymentAmount,
		)
	}

	months := make(domain.MonthList, 0, len(request.Months))
	for _, raw := range request.Months {
		m, err := domain.ParseMonth(raw)
		if err != nil {
			return nil, customError.WrapInvalidMonthFormat(raw)
		}
		months = append(months, m)
	}

	var breakdown domain.MonthBreakdown
	if len(request.Breakdown) > 0 {
		breakdown = make(domain.MonthBreakdown, len(request.Breakdown))
		for raw, entry := range request.Breakdown {
			m, err := domain.ParseMonth(raw)
			if err != nil {
				return nil, customError.WrapInvalidMonthFormat(raw)
			}
			breakdown[m] = entry
		}
	}

	now := s.now()
	paidAt := now
	if request.PaidAt != nil {
		paidAt = *request.PaidAt
	}

	payment := &domain.Payment{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		PaidAt:     paidAt,
		Amount:     request.Amount,
		Method:     request.Method,
		Months:     months,
		Breakdown:  breakdown,
		IsPartial:  request.IsPartial,
		CreatedAt:  now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.arrears.InvalidateCustomer(ctx, customer.CustomerNumber)

	arrearsResp, err := s.arrears.GetCustomerArrears(ctx, customer.CustomerNumber, domain.Month{})
	if err != nil {
		return nil, err
	}

	return &domain.CreatePaymentResponse{
		Payment:      payment,
		Arrears:      arrearsResp.Arrears,
		Confirmation: composeConfirmation(customer, payment, arrearsResp.Arrears),
	}, nil
}

// CancelPayment soft-reverses a payment. Payments already swept into a
// deposit are locked and cannot be individually cancelled; the deposit has
// to be cancelled first.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if payment.Cancelled() {
		return nil, customError.WrapPaymentAlreadyCancelled(paymentID.String())
	}
	if payment.IsDeposited {
		return nil, customError.WrapPaymentAlreadyDeposited(paymentID.String())
	}

	at := s.now()
	if err := s.paymentRepo.Cancel(ctx, paymentID, at); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	payment.CancelledAt = &at

	customer, err := s.customerRepo.GetByID(ctx, payment.CustomerID)
	if err != nil {
		s.log.Warn("cancelled payment but could not resolve customer for cache invalidation",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		return payment, nil
	}
	s.arrears.InvalidateCustomer(ctx, customer.CustomerNumber)

	return payment, nil
}

// composeConfirmation builds the free-text payment confirmation the
// frontend forwards to WhatsApp: months joined into a sentence, plus the
// remaining arrears position.
func composeConfirmation(customer *domain.Customer, payment *domain.Payment, arrears *domain.ArrearsResult) string {
	msg := fmt.Sprintf(
		"Terima kasih %s. Pembayaran sebesar %s (%s) untuk bulan %s telah kami terima.",
		customer.Name,
		utils.FormatRupiah(payment.Amount),
		payment.Method,
		utils.JoinMonthLabels(payment.Months),
	)

	if arrears == nil || arrears.TotalMonths == 0 {
		return msg + " Tidak ada tunggakan."
	}
	return fmt.Sprintf("%s Sisa tunggakan: %s (%d bulan).",
		msg, utils.FormatRupiah(arrears.TotalArrears), arrears.TotalMonths)
}

// WithClock overrides the wall clock, for tests.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}
