package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Period
	GetPeriod(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)

	// Calculation
	Calculate(w http.ResponseWriter, r *http.Request)
	BulkCalculate(w http.ResponseWriter, r *http.Request)
	ListCalculations(w http.ResponseWriter, r *http.Request)
	GetCalculation(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// decodeBody decodes a JSON request body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ========== PERIOD ==========

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Approve(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period approved", result)
}

func (h *payrollHandlerImpl) Pay(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ProcessPayment(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period paid", result)
}

// ========== CALCULATION ==========

func (h *payrollHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculateRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollPeriodID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll calculated", result)
}

func (h *payrollHandlerImpl) BulkCalculate(w http.ResponseWriter, r *http.Request) {
	var req payroll.BulkCalculateRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollPeriodID = chi.URLParam(r, "periodID")

	result, err := h.payrollService.BulkCalculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Payroll calculated"
	if result.PartialFailure {
		message = "Payroll calculated with failures"
	}
	response.SuccessWithMessage(w, message, result)
}

func (h *payrollHandlerImpl) ListCalculations(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListCalculations(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetCalculation(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetCalculation(r.Context(), chi.URLParam(r, "periodID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
