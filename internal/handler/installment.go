package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-service/internal/domain"
	customError "github.com/segyhp/installment-service/pkg/errors"
	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/response"
)

// InstallmentService is the subset of the service the HTTP layer drives
type InstallmentService interface {
	CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.InstallmentPlan, error)
	GetPlan(ctx context.Context, no string) (*domain.PlanDetail, error)
	PayNextItem(ctx context.Context, no string, request *domain.PayItemRequest) (*domain.InstallmentItem, error)
	HandleItemRefund(ctx context.Context, no string, sequence int, success bool) error
	RefreshRefundStatusByNo(ctx context.Context, no string) error
	StatusLabels() []domain.StatusLabel
}

type InstallmentHandler struct {
	service   InstallmentService
	validator *validator.Validate
	logger    *logger.Logger
}

func NewInstallmentHandler(service InstallmentService, log *logger.Logger) *InstallmentHandler {
	if log == nil {
		log = logger.Nop()
	}

	return &InstallmentHandler{
		service:   service,
		validator: newValidator(),
		logger:    log,
	}
}

// newValidator validates decimal amounts through their float value so the
// numeric tags (gt, gte, lte) apply to them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// CreatePlan handles POST /installments
func (h *InstallmentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), &request)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	response.Created(w, plan)
}

// GetPlan handles GET /installments/{no}
func (h *InstallmentHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetPlan(r.Context(), mux.Vars(r)["no"])
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	response.Success(w, detail)
}

// PayNextItem handles POST /installments/{no}/payments
func (h *InstallmentHandler) PayNextItem(w http.ResponseWriter, r *http.Request) {
	var request domain.PayItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	item, err := h.service.PayNextItem(r.Context(), mux.Vars(r)["no"], &request)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	response.Success(w, item)
}

// HandleItemRefund handles POST /installments/{no}/items/{sequence}/refund
func (h *InstallmentHandler) HandleItemRefund(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sequence, err := strconv.Atoi(vars["sequence"])
	if err != nil || sequence < 0 {
		response.BadRequest(w, "sequence must be a non-negative integer", err)
		return
	}

	var request domain.ItemRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.service.HandleItemRefund(r.Context(), vars["no"], sequence, request.Success); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	response.Success(w, map[string]any{"no": vars["no"], "sequence": sequence})
}

// RefreshRefundStatus handles POST /installments/{no}/refund-status
func (h *InstallmentHandler) RefreshRefundStatus(w http.ResponseWriter, r *http.Request) {
	no := mux.Vars(r)["no"]
	if err := h.service.RefreshRefundStatusByNo(r.Context(), no); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	response.Success(w, map[string]string{"no": no})
}

// StatusLabels handles GET /installment-statuses
func (h *InstallmentHandler) StatusLabels(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.StatusLabels())
}

func (h *InstallmentHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		h.logger.Error(ctx, "unhandled installment error", err)
		response.InternalServerError(w, "internal error", nil)
		return
	}

	status := http.StatusInternalServerError
	switch be.Code {
	case customError.ErrCodeInstallmentNotFound, customError.ErrCodeOrderNotFound, customError.ErrCodeItemNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeInvalidInstallment, customError.ErrCodeItemNotPaid:
		status = http.StatusBadRequest
	case customError.ErrCodeNoPendingItem:
		status = http.StatusConflict
	case customError.ErrCodePlanNoUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(ctx, be.Message, be.Err)
	}

	// The wrapped cause stays in the log; clients only see the code.
	response.ErrorWithCode(w, status, be.Code, be.Message, nil)
}
