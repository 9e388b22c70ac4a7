package payroll

import (
	"errors"
	"fmt"
)

// Error categories. Every payroll error wraps exactly one of them.
var (
	ErrValidation = errors.New("validation error")
	ErrConfig     = errors.New("configuration error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrPeriodNotFound      = fmt.Errorf("%w: payroll period not found", ErrNotFound)
	ErrCalculationNotFound = fmt.Errorf("%w: payroll calculation not found", ErrNotFound)

	ErrEmployeeInactive     = fmt.Errorf("%w: employee is not active", ErrValidation)
	ErrPrenominaNotFound    = fmt.Errorf("%w: prenomina not found for employee and period", ErrValidation)
	ErrInvalidPrenomina     = fmt.Errorf("%w: prenomina contains negative values", ErrValidation)
	ErrInvalidDailySalary   = fmt.Errorf("%w: daily salary must be greater than zero", ErrValidation)
	ErrHireDateAfterAsOf    = fmt.Errorf("%w: hire date is after the calculation date", ErrValidation)
	ErrInvalidInfonavitType = fmt.Errorf("%w: unknown infonavit deduction type", ErrValidation)
	ErrPayFrequencyMismatch = fmt.Errorf("%w: employee pay frequency does not match the period", ErrValidation)

	ErrTaxTableNotFound = fmt.Errorf("%w: tax table not found", ErrConfig)
	ErrTaxTableInvalid  = fmt.Errorf("%w: tax table is malformed", ErrConfig)
	ErrBracketNotFound  = fmt.Errorf("%w: no tax bracket applies to income", ErrConfig)

	ErrPeriodNotCalculable        = fmt.Errorf("%w: period does not accept calculations in its current status", ErrConflict)
	ErrInvalidStatusTransition    = fmt.Errorf("%w: invalid period status transition", ErrConflict)
	ErrApproveWithoutCalculations = fmt.Errorf("%w: period has no calculations to approve", ErrConflict)
	ErrPeriodStatusChanged        = fmt.Errorf("%w: period status changed concurrently", ErrConflict)
)
