package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sabamas/arrears-engine/internal/config"
	"github.com/sabamas/arrears-engine/internal/domain"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
	"github.com/sabamas/arrears-engine/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			CurrencyMinorUnits: 0,
			ArrearsCacheTTL:    time.Minute,
		},
	}
}

func fixedClock(t *testing.T, day string) func() time.Time {
	t.Helper()
	return func() time.Time { return date(t, day) }
}

func TestGetCustomerArrears(t *testing.T) {
	tests := []struct {
		name           string
		asOf           string
		setupMocks     func(*mocks.MockCustomerRepository, *mocks.MockTariffRepository, *mocks.MockPaymentRepository, *domain.Customer)
		expectedError  string
		validateResult func(*testing.T, *domain.CustomerArrearsResponse)
	}{
		{
			name: "Success - defaults to current month",
			setupMocks: func(customerRepo *mocks.MockCustomerRepository, tariffRepo *mocks.MockTariffRepository, paymentRepo *mocks.MockPaymentRepository, customer *domain.Customer) {
				customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
				tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
					testTariff(t, 15000, "2024-01-01", "2024-01-01"),
				}, nil)
				paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{
					testPayment(t, 30000, "2024-01", "2024-02"),
				}, nil)
				customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)
			},
			validateResult: func(t *testing.T, resp *domain.CustomerArrearsResponse) {
				assert.Equal(t, "2024-04", resp.AsOf.String())
				assert.Equal(t, 2, resp.Arrears.TotalMonths)
				assert.True(t, resp.Arrears.TotalArrears.Equal(decimal.NewFromInt(30000)))
			},
		},
		{
			name: "Success - cuti months excluded via status periods",
			setupMocks: func(customerRepo *mocks.MockCustomerRepository, tariffRepo *mocks.MockTariffRepository, paymentRepo *mocks.MockPaymentRepository, customer *domain.Customer) {
				customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
				tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
					testTariff(t, 15000, "2024-01-01", "2024-01-01"),
				}, nil)
				paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{}, nil)
				customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{
					{Status: domain.CustomerStatusOnLeave, FromMonth: month(t, "2024-02"), ToMonth: month(t, "2024-03")},
				}, nil)
			},
			validateResult: func(t *testing.T, resp *domain.CustomerArrearsResponse) {
				require.Equal(t, 2, resp.Arrears.TotalMonths)
				assert.Equal(t, "2024-01", resp.Arrears.ArrearMonths[0].Month.String())
				assert.Equal(t, "2024-04", resp.Arrears.ArrearMonths[1].Month.String())
			},
		},
		{
			name: "Failure - customer not found",
			setupMocks: func(customerRepo *mocks.MockCustomerRepository, tariffRepo *mocks.MockTariffRepository, paymentRepo *mocks.MockPaymentRepository, customer *domain.Customer) {
				customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(nil, sql.ErrNoRows)
			},
			expectedError: customError.ErrCodeCustomerNotFound,
		},
		{
			name: "Failure - no tariff history",
			setupMocks: func(customerRepo *mocks.MockCustomerRepository, tariffRepo *mocks.MockTariffRepository, paymentRepo *mocks.MockPaymentRepository, customer *domain.Customer) {
				customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
				tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{}, nil)
				paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{}, nil)
				customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)
			},
			expectedError: customError.ErrCodeMissingTariffHistory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customerRepo := &mocks.MockCustomerRepository{}
			tariffRepo := &mocks.MockTariffRepository{}
			paymentRepo := &mocks.MockPaymentRepository{}

			customer := testCustomer(t, "2024-01-01")
			tt.setupMocks(customerRepo, tariffRepo, paymentRepo, customer)

			svc := NewArrearsService(customerRepo, tariffRepo, paymentRepo, nil, testConfig(), nil).
				WithClock(fixedClock(t, "2024-04-10"))

			var asOf domain.Month
			if tt.asOf != "" {
				asOf = month(t, tt.asOf)
			}

			resp, err := svc.GetCustomerArrears(context.Background(), "PLG-0001", asOf)

			if tt.expectedError != "" {
				require.Error(t, err)
				var bizErr *customError.BusinessError
				require.ErrorAs(t, err, &bizErr)
				assert.Equal(t, tt.expectedError, bizErr.Code)
				return
			}

			require.NoError(t, err)
			tt.validateResult(t, resp)
			customerRepo.AssertExpectations(t)
		})
	}
}

func TestGetCustomerArrears_FutureAsOfClamped(t *testing.T) {
	// A caller asking for a month beyond the clock gets the current month;
	// months that have not started are never owed.
	customerRepo := &mocks.MockCustomerRepository{}
	tariffRepo := &mocks.MockTariffRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}

	customer := testCustomer(t, "2024-01-01")
	customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
	tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
		testTariff(t, 15000, "2024-01-01", "2024-01-01"),
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)

	svc := NewArrearsService(customerRepo, tariffRepo, paymentRepo, nil, testConfig(), nil).
		WithClock(fixedClock(t, "2024-04-10"))

	resp, err := svc.GetCustomerArrears(context.Background(), "PLG-0001", month(t, "2025-12"))
	require.NoError(t, err)

	assert.Equal(t, "2024-04", resp.AsOf.String())
	require.Equal(t, 4, resp.Arrears.TotalMonths)
	assert.Equal(t, "2024-04", resp.Arrears.ArrearMonths[3].Month.String())
}

func TestGetCustomerArrears_NormalizesStoredPayments(t *testing.T) {
	// Rows come back from Postgres with raw encoded month columns. A legacy
	// double-encoded bulan_dibayar still counts, and one unparseable row is
	// dropped with a warning instead of failing the whole computation.
	customerRepo := &mocks.MockCustomerRepository{}
	tariffRepo := &mocks.MockTariffRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}

	customer := testCustomer(t, "2024-01-01")
	legacy := &domain.Payment{
		ID:        uuid.New(),
		Amount:    decimal.NewFromInt(15000),
		RawMonths: json.RawMessage(`"[\"2024-01\"]"`),
	}
	bad := &domain.Payment{
		ID:        uuid.New(),
		Amount:    decimal.NewFromInt(15000),
		RawMonths: json.RawMessage(`"tidak valid"`),
	}

	customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
	tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
		testTariff(t, 15000, "2024-01-01", "2024-01-01"),
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{legacy, bad}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)

	svc := NewArrearsService(customerRepo, tariffRepo, paymentRepo, nil, testConfig(), nil).
		WithClock(fixedClock(t, "2024-04-10"))

	resp, err := svc.GetCustomerArrears(context.Background(), "PLG-0001", domain.Month{})
	require.NoError(t, err)

	// January settled by the legacy row; the malformed row credits nothing.
	require.Equal(t, 3, resp.Arrears.TotalMonths)
	assert.Equal(t, "2024-02", resp.Arrears.ArrearMonths[0].Month.String())
}

func TestGetCustomerArrears_CacheHit(t *testing.T) {
	cached := &domain.CustomerArrearsResponse{
		AsOf: month(t, "2024-04"),
		Arrears: &domain.ArrearsResult{
			TotalArrears: decimal.NewFromInt(45000),
			TotalMonths:  3,
			ArrearMonths: []domain.ArrearMonth{},
		},
	}
	encoded, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := &mocks.MockCache{}
	cache.On("Get", mock.Anything, "sabamas:arrears:PLG-0001").Return(string(encoded), nil)

	// No repository expectations: a cache hit must not touch storage.
	svc := NewArrearsService(&mocks.MockCustomerRepository{}, &mocks.MockTariffRepository{}, &mocks.MockPaymentRepository{}, cache, testConfig(), nil).
		WithClock(fixedClock(t, "2024-04-10"))

	resp, err := svc.GetCustomerArrears(context.Background(), "PLG-0001", domain.Month{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Arrears.TotalMonths)
	assert.True(t, resp.Arrears.TotalArrears.Equal(decimal.NewFromInt(45000)))
	cache.AssertExpectations(t)
}

func TestGetCustomerArrears_HistoricalAsOfBypassesCache(t *testing.T) {
	customerRepo := &mocks.MockCustomerRepository{}
	tariffRepo := &mocks.MockTariffRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	cache := &mocks.MockCache{}

	customer := testCustomer(t, "2024-01-01")
	customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
	tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
		testTariff(t, 15000, "2024-01-01", "2024-01-01"),
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)

	svc := NewArrearsService(customerRepo, tariffRepo, paymentRepo, cache, testConfig(), nil).
		WithClock(fixedClock(t, "2024-04-10"))

	resp, err := svc.GetCustomerArrears(context.Background(), "PLG-0001", month(t, "2024-02"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Arrears.TotalMonths)

	// Neither read nor written for a historical month.
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshDashboardSummary(t *testing.T) {
	customerRepo := &mocks.MockCustomerRepository{}
	tariffRepo := &mocks.MockTariffRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}

	inArrears := testCustomer(t, "2024-01-01")
	settled := testCustomer(t, "2024-03-01")
	settled.CustomerNumber = "PLG-0002"
	broken := testCustomer(t, "2024-01-01")
	broken.CustomerNumber = "PLG-0003"

	customerRepo.On("ListActive", mock.Anything).Return([]*domain.Customer{inArrears, settled, broken}, nil)

	tariffRepo.On("GetHistory", mock.Anything, inArrears.ID).Return([]*domain.TariffAssignment{
		testTariff(t, 15000, "2024-01-01", "2024-01-01"),
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, inArrears.ID).Return([]*domain.Payment{}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, inArrears.ID).Return([]*domain.StatusPeriod{}, nil)

	tariffRepo.On("GetHistory", mock.Anything, settled.ID).Return([]*domain.TariffAssignment{
		testTariff(t, 15000, "2024-03-01", "2024-03-01"),
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, settled.ID).Return([]*domain.Payment{
		testPayment(t, 30000, "2024-03", "2024-04"),
	}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, settled.ID).Return([]*domain.StatusPeriod{}, nil)

	// Broken tariff configuration must be skipped, not fatal.
	tariffRepo.On("GetHistory", mock.Anything, broken.ID).Return([]*domain.TariffAssignment{}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, broken.ID).Return([]*domain.Payment{}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, broken.ID).Return([]*domain.StatusPeriod{}, nil)

	svc := NewArrearsService(customerRepo, tariffRepo, paymentRepo, nil, testConfig(), nil).
		WithClock(fixedClock(t, "2024-04-10"))

	summary, err := svc.RefreshDashboardSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ActiveCustomers)
	assert.Equal(t, 1, summary.CustomersInArrears)
	assert.Equal(t, 4, summary.TotalMonths)
	assert.True(t, summary.TotalArrears.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, "2024-04", summary.AsOf.String())

	// The summary payload uses snake_case throughout.
	encoded, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"total_arrears"`)
	assert.Contains(t, string(encoded), `"total_months"`)
	assert.Contains(t, string(encoded), `"customers_in_arrears"`)
}
