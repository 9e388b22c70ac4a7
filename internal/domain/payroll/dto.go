package payroll

import (
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculateRequest struct {
	EmployeeID      string `json:"employee_id"`
	PayrollPeriodID string `json:"-"`
	CalculateSDI    bool   `json:"calculate_sdi"`
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.PayrollPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period_id", Message: "must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkCalculateRequest struct {
	PayrollPeriodID string   `json:"-"`
	EmployeeIDs     []string `json:"employee_ids,omitempty"`
	CalculateAll    bool     `json:"calculate_all"`
	CalculateSDI    bool     `json:"calculate_sdi"`
}

func (r *BulkCalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PayrollPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period_id", Message: "must be a valid UUID"})
	}
	if len(r.EmployeeIDs) == 0 && !r.CalculateAll {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "is required when calculate_all is false"})
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "contains an invalid UUID: " + id})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollCalculationResponse struct {
	ID                    string                     `json:"id"`
	EmployeeID            string                     `json:"employee_id"`
	PayrollPeriodID       string                     `json:"payroll_period_id"`
	DailySalary           decimal.Decimal            `json:"daily_salary"`
	SDIUsed               decimal.Decimal            `json:"sdi_used"`
	WorkedDays            decimal.Decimal            `json:"worked_days"`
	RegularSalary         decimal.Decimal            `json:"regular_salary"`
	OvertimeRegular       decimal.Decimal            `json:"overtime_regular"`
	OvertimeDouble        decimal.Decimal            `json:"overtime_double"`
	OvertimeTriple        decimal.Decimal            `json:"overtime_triple"`
	VacationPremium       decimal.Decimal            `json:"vacation_premium"`
	Aguinaldo             decimal.Decimal            `json:"aguinaldo"`
	OtherExtras           decimal.Decimal            `json:"other_extras"`
	TotalGrossIncome      decimal.Decimal            `json:"total_gross_income"`
	TaxableIncome         decimal.Decimal            `json:"taxable_income"`
	ISRBeforeSubsidy      decimal.Decimal            `json:"isr_before_subsidy"`
	SubsidyApplied        decimal.Decimal            `json:"subsidy_applied"`
	ISRWithholding        decimal.Decimal            `json:"isr_withholding"`
	IMSSEmployee          decimal.Decimal            `json:"imss_employee"`
	InfonavitEmployee     decimal.Decimal            `json:"infonavit_employee"`
	LoanDeduction         decimal.Decimal            `json:"loan_deduction"`
	AdvanceDeduction      decimal.Decimal            `json:"advance_deduction"`
	OtherDeduction        decimal.Decimal            `json:"other_deduction"`
	TotalDeductions       decimal.Decimal            `json:"total_deductions"`
	DeductionShortfall    decimal.Decimal            `json:"deduction_shortfall"`
	ShortfallDetail       map[string]decimal.Decimal `json:"shortfall_detail,omitempty"`
	EmployerContributions EmployerContribution       `json:"employer_contributions"`
	TotalNetPay           decimal.Decimal            `json:"total_net_pay"`
	CalculationStatus     string                     `json:"calculation_status"`
	CalculatedAt          time.Time                  `json:"calculated_at"`
}

// EmployeeResult is one entry of a bulk run. Error is set only when Success is false.
type EmployeeResult struct {
	EmployeeID       string           `json:"employee_id"`
	Success          bool             `json:"success"`
	Error            string           `json:"error,omitempty"`
	TotalGrossIncome *decimal.Decimal `json:"total_gross_income,omitempty"`
	TotalNetPay      *decimal.Decimal `json:"total_net_pay,omitempty"`
	err              error
}

// Err returns the underlying error of a failed result.
func (r EmployeeResult) Err() error {
	return r.err
}

// NewEmployeeFailure builds a failed result that keeps the original error.
func NewEmployeeFailure(employeeID string, err error) EmployeeResult {
	return EmployeeResult{EmployeeID: employeeID, Success: false, Error: err.Error(), err: err}
}

// NewEmployeeSuccess builds a successful result from a stored calculation.
func NewEmployeeSuccess(calc PayrollCalculation) EmployeeResult {
	gross := calc.TotalGrossIncome
	net := calc.TotalNetPay
	return EmployeeResult{EmployeeID: calc.EmployeeID, Success: true, TotalGrossIncome: &gross, TotalNetPay: &net}
}

type BulkCalculateResponse struct {
	PeriodCode      string           `json:"period_code"`
	PeriodStatus    string           `json:"period_status"`
	TotalCalculated int              `json:"total_calculated"`
	TotalSuccess    int              `json:"total_success"`
	TotalFailed     int              `json:"total_failed"`
	TotalGross      decimal.Decimal  `json:"total_gross"`
	TotalNet        decimal.Decimal  `json:"total_net"`
	PartialFailure  bool             `json:"partial_failure"`
	Results         []EmployeeResult `json:"results"`
}

// ========== PERIOD DTOs ==========

type UpdatePeriodStatusRequest struct {
	ID      string
	From    PeriodStatus
	To      PeriodStatus
	ActorID *string
	At      time.Time
}

type PayrollPeriodResponse struct {
	ID           string     `json:"id"`
	PeriodCode   string     `json:"period_code"`
	Year         int        `json:"year"`
	PeriodNumber int        `json:"period_number"`
	Frequency    string     `json:"frequency"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	PaymentDate  string     `json:"payment_date"`
	Status       string     `json:"status"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	PaidBy       *string    `json:"paid_by,omitempty"`
}

type ListCalculationResponse struct {
	PeriodCode   string                       `json:"period_code"`
	Calculations []PayrollCalculationResponse `json:"calculations"`
}
