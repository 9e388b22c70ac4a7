package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrCalculationNotFound):
		NotFound(w, "Payroll calculation not found")
	case errors.Is(err, payroll.ErrNotFound):
		NotFound(w, err.Error())

	// Period lifecycle
	case errors.Is(err, payroll.ErrConflict):
		Conflict(w, err.Error())

	// Rejected inputs
	case errors.Is(err, payroll.ErrValidation):
		UnprocessableEntity(w, err.Error(), nil)

	// Tax tables
	case errors.Is(err, payroll.ErrConfig):
		slog.Error("Payroll configuration error", "error", err)
		ConfigError(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
