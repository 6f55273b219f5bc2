package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sabamas/arrears-engine/internal/config"
	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/service"
	"github.com/sabamas/arrears-engine/tests/mocks"
)

func newTestRouter(svc *service.ArrearsService) *mux.Router {
	h := NewArrearsHandler(svc)
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/customers/{customerNumber}/arrears", h.GetCustomerArrears).Methods("GET")
	api.HandleFunc("/dashboard/summary", h.GetDashboardSummary).Methods("GET")
	return router
}

func arrearsServiceWithMocks(customerRepo *mocks.MockCustomerRepository, tariffRepo *mocks.MockTariffRepository, paymentRepo *mocks.MockPaymentRepository) *service.ArrearsService {
	cfg := &config.Config{
		Business: config.BusinessConfig{CurrencyMinorUnits: 0, ArrearsCacheTTL: time.Minute},
	}
	return service.NewArrearsService(customerRepo, tariffRepo, paymentRepo, nil, cfg, nil).
		WithClock(func() time.Time { return time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC) })
}

func TestGetCustomerArrearsEndpoint(t *testing.T) {
	customerRepo := &mocks.MockCustomerRepository{}
	tariffRepo := &mocks.MockTariffRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}

	customer := &domain.Customer{
		ID:             uuid.New(),
		CustomerNumber: "PLG-0001",
		Name:           "Budi Santoso",
		Status:         domain.CustomerStatusActive,
		JoinedAt:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-0001").Return(customer, nil)
	tariffRepo.On("GetHistory", mock.Anything, customer.ID).Return([]*domain.TariffAssignment{
		{
			ID:            uuid.New(),
			CategoryName:  "Rumah Tangga",
			Rate:          decimal.NewFromInt(15000),
			EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}, nil)
	paymentRepo.On("ListActiveByCustomer", mock.Anything, customer.ID).Return([]*domain.Payment{}, nil)
	customerRepo.On("GetStatusPeriods", mock.Anything, customer.ID).Return([]*domain.StatusPeriod{}, nil)

	router := newTestRouter(arrearsServiceWithMocks(customerRepo, tariffRepo, paymentRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/PLG-0001/arrears", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			AsOf    string `json:"as_of"`
			Arrears struct {
				TotalArrears decimal.Decimal      `json:"totalArrears"`
				TotalMonths  int                  `json:"totalMonths"`
				ArrearMonths []domain.ArrearMonth `json:"arrearMonths"`
			} `json:"arrears"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "2024-04", envelope.Data.AsOf)
	assert.Equal(t, 4, envelope.Data.Arrears.TotalMonths)
	assert.True(t, envelope.Data.Arrears.TotalArrears.Equal(decimal.NewFromInt(60000)))
	require.Len(t, envelope.Data.Arrears.ArrearMonths, 4)
	assert.Equal(t, "2024-01", envelope.Data.Arrears.ArrearMonths[0].Month.String())
}

func TestGetCustomerArrearsEndpoint_NotFound(t *testing.T) {
	customerRepo := &mocks.MockCustomerRepository{}
	customerRepo.On("GetByCustomerNumber", mock.Anything, "PLG-9999").Return(nil, sql.ErrNoRows)

	router := newTestRouter(arrearsServiceWithMocks(customerRepo, &mocks.MockTariffRepository{}, &mocks.MockPaymentRepository{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/PLG-9999/arrears", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", envelope.Code)
}

func TestGetCustomerArrearsEndpoint_BadAsOf(t *testing.T) {
	router := newTestRouter(arrearsServiceWithMocks(&mocks.MockCustomerRepository{}, &mocks.MockTariffRepository{}, &mocks.MockPaymentRepository{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/PLG-0001/arrears?as_of=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
