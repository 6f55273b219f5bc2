package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sabamas/arrears-engine/internal/domain"
	"github.com/sabamas/arrears-engine/internal/service"
	"github.com/sabamas/arrears-engine/pkg/response"
)

type DepositHandler struct {
	service   *service.DepositService
	validator *validator.Validate
}

func NewDepositHandler(service *service.DepositService) *DepositHandler {
	return &DepositHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateDeposit handles POST /deposits.
func (h *DepositHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	resp, err := h.service.CreateDeposit(r.Context(), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, resp)
}

// CancelDeposit handles POST /deposits/{depositId}/cancel.
func (h *DepositHandler) CancelDeposit(w http.ResponseWriter, r *http.Request) {
	depositID, err := uuid.Parse(mux.Vars(r)["depositId"])
	if err != nil {
		response.BadRequest(w, "invalid deposit id", err)
		return
	}

	deposit, err := h.service.CancelDeposit(r.Context(), depositID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, deposit)
}
