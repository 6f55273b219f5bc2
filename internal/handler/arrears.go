package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/service"
	customError "github.com/sabamas/arrears-engine/pkg/errors"
	"github.com/sabamas/arrears-engine/pkg/response"
)

// ArrearsHandler serves the read side consumed by the dashboard stat cards
// and the customer portal billing page.
type ArrearsHandler struct {
	service *service.ArrearsService
}

func NewArrearsHandler(service *service.ArrearsService) *ArrearsHandler {
	return &ArrearsHandler{service: service}
}

// GetCustomerArrears handles GET /customers/{customerNumber}/arrears.
// An optional as_of=YYYY-MM query pins the evaluation month.
func (h *ArrearsHandler) GetCustomerArrears(w http.ResponseWriter, r *http.Request) {
	customerNumber := mux.Vars(r)["customerNumber"]

	var asOf domain.Month
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := domain.ParseMonth(raw)
		if err != nil {
			response.BusinessError(w, customError.WrapInvalidMonthFormat(raw))
			return
		}
		asOf = parsed
	}

	resp, err := h.service.GetCustomerArrears(r.Context(), customerNumber, asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetDashboardSummary handles GET /dashboard/summary.
func (h *ArrearsHandler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetDashboardSummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, summary)
}

// writeServiceError maps service errors onto the response envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		response.BusinessError(w, bizErr)
		return
	}
	response.InternalServerError(w, "unexpected error", err)
}
