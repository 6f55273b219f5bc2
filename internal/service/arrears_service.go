package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sabamas/arrears-engine/internal/config"
	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/repository"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
)

const dashboardCacheKey = "sabamas:dashboard:summary"

func arrearsCacheKey(customerNumber string) string {
	return "sabamas:arrears:" + customerNumber
}

// ArrearsService loads a customer's billing data and runs the arrears
// engine over it. Results for the current month are cached in Redis and
// invalidated whenever a payment or deposit mutation touches the customer.
type ArrearsService struct {
	customerRepo repository.CustomerRepository
	tariffRepo   repository.TariffRepository
	paymentRepo  repository.PaymentRepository
	engine       *ArrearsEngine
	cache        Cache
	config       *config.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewArrearsService(
	customerRepo repository.CustomerRepository,
	tariffRepo repository.TariffRepository,
	paymentRepo repository.PaymentRepository,
	cache Cache,
	cfg *config.Config,
	log *zap.Logger,
) *ArrearsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArrearsService{
		customerRepo: customerRepo,
		tariffRepo:   tariffRepo,
		paymentRepo:  paymentRepo,
		engine:       NewArrearsEngine(cfg.Business.CurrencyMinorUnits),
		cache:        cache,
		config:       cfg,
		log:          log,
		now:          time.Now,
	}
}

// GetCustomerArrears computes arrears for one customer. A zero asOf means
// the current calendar month, and an asOf beyond the current month is
// clamped to it: months that have not started are never owed.
func (s *ArrearsService) GetCustomerArrears(ctx context.Context, customerNumber string, asOf domain.Month) (*domain.CustomerArrearsResponse, error) {
	currentMonth := domain.MonthOf(s.now())
	if asOf.IsZero() || currentMonth.Before(asOf) {
		asOf = currentMonth
	}

	// Only current-month results are cached; historical as-of queries are
	// rare and always recomputed.
	cacheable := s.cache != nil && asOf == currentMonth
	if cacheable {
		if cached, err := s.cache.Get(ctx, arrearsCacheKey(customerNumber)); err == nil {
			var resp domain.CustomerArrearsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("arrears cache read failed", zap.Error(err))
		}
	}

	customer, err := s.customerRepo.GetByCustomerNumber(ctx, customerNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(customerNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.computeForCustomer(ctx, customer, asOf)
	if err != nil {
		return nil, err
	}

	resp := &domain.CustomerArrearsResponse{
		Customer: customer,
		AsOf:     asOf,
		Arrears:  result,
	}

	if cacheable {
		if encoded, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, arrearsCacheKey(customerNumber), string(encoded), s.config.Business.ArrearsCacheTTL); err != nil {
				s.log.Warn("arrears cache write failed", zap.Error(err))
			}
		}
	}

	return resp, nil
}

func (s *ArrearsService) computeForCustomer(ctx context.Context, customer *domain.Customer, asOf domain.Month) (*domain.ArrearsResult, error) {
	tariffHistory, err := s.tariffRepo.GetHistory(ctx, customer.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.paymentRepo.ListActiveByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	periods, err := s.customerRepo.GetStatusPeriods(ctx, customer.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.engine.Compute(customer, tariffHistory, s.normalizePayments(payments), asOf, eligibilityFromPeriods(periods))
}

// normalizePayments parses the raw bulan_dibayar and month_breakdown column
// values on freshly loaded rows. A row whose encoded month data cannot be
// parsed is logged and dropped, never fatal; the engine only ever sees
// parsed months.
func (s *ArrearsService) normalizePayments(payments []*domain.Payment) []*domain.Payment {
	normalized := make([]*domain.Payment, 0, len(payments))
	for _, p := range payments {
		if err := p.Normalize(); err != nil {
			s.log.Warn("skipping payment with malformed month data",
				zap.String("payment_id", p.ID.String()),
				zap.Error(customError.WrapMalformedPaymentData(p.ID.String(), err)),
			)
			continue
		}
		normalized = append(normalized, p)
	}
	return normalized
}

// eligibilityFromPeriods builds the engine's billability predicate from the
// customer's recorded non-billable month ranges. A month covered by any
// cuti or nonaktif period is not owed.
func eligibilityFromPeriods(periods []*domain.StatusPeriod) EligibilityFunc {
	if len(periods) == 0 {
		return nil
	}
	return func(m domain.Month) bool {
		for _, p := range periods {
			if p.Status != domain.CustomerStatusActive && p.Covers(m) {
				return false
			}
		}
		return true
	}
}

// InvalidateCustomer drops the cached arrears for a customer plus the
// dashboard summary. Called after every payment mutation.
func (s *ArrearsService) InvalidateCustomer(ctx context.Context, customerNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, arrearsCacheKey(customerNumber), dashboardCacheKey); err != nil {
		s.log.Warn("arrears cache invalidation failed",
			zap.String("nomor_pelanggan", customerNumber),
			zap.Error(err),
		)
	}
}

// GetDashboardSummary returns the cached dashboard aggregates, computing
// them on demand when the cache is cold.
func (s *ArrearsService) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey); err == nil {
			var summary domain.DashboardSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	return s.RefreshDashboardSummary(ctx)
}

// RefreshDashboardSummary recomputes arrears across all active customers
// and rewrites the cached summary. The scheduler runs this nightly.
func (s *ArrearsService) RefreshDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	asOf := domain.MonthOf(s.now())

	customers, err := s.customerRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := &domain.DashboardSummary{
		AsOf:            asOf,
		TotalArrears:    decimal.Zero,
		ActiveCustomers: len(customers),
		GeneratedAt:     s.now(),
	}

	for _, customer := range customers {
		result, err := s.computeForCustomer(ctx, customer, asOf)
		if err != nil {
			// A customer with broken tariff configuration must not take
			// down the whole dashboard; surface it in the logs instead.
			s.log.Warn("dashboard: skipping customer",
				zap.String("nomor_pelanggan", customer.CustomerNumber),
				zap.Error(err),
			)
			continue
		}

		summary.TotalArrears = summary.TotalArrears.Add(result.TotalArrears)
		summary.TotalMonths += result.TotalMonths
		if result.TotalMonths > 0 {
			summary.CustomersInArrears++
		}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			// The summary is rebuilt nightly; a day plus slack keeps it
			// warm between runs without serving stale data forever.
			if err := s.cache.Set(ctx, dashboardCacheKey, string(encoded), 26*time.Hour); err != nil {
				s.log.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}

	return summary, nil
}

// WithClock overrides the wall clock, for tests.
func (s *ArrearsService) WithClock(now func() time.Time) *ArrearsService {
	s.now = now
	return s
}
