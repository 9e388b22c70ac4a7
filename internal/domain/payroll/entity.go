package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PayrollPeriod - A pay period for one payment frequency
type PayrollPeriod struct {
	ID           string
	Year         int
	PeriodNumber int
	Frequency    employee.PayFrequency
	StartDate    time.Time
	EndDate      time.Time
	PaymentDate  time.Time
	Status       PeriodStatus
	ApprovedAt   *time.Time
	ApprovedBy   *string
	PaidAt       *time.Time
	PaidBy       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PeriodCode renders the period as "2025-B07".
func (p PayrollPeriod) PeriodCode() string {
	code := "M"
	switch p.Frequency {
	case employee.PayFrequencyWeekly:
		code = "W"
	case employee.PayFrequencyBiweekly:
		code = "B"
	}
	return fmt.Sprintf("%d-%s%02d", p.Year, code, p.PeriodNumber)
}

// Days returns the number of calendar days covered, both ends inclusive.
func (p PayrollPeriod) Days() int {
	if p.EndDate.Before(p.StartDate) {
		return 0
	}
	return int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
}

// OvertimeHours - Overtime split by pay tier
type OvertimeHours struct {
	Regular decimal.Decimal `json:"regular"`
	Double  decimal.Decimal `json:"double"`
	Triple  decimal.Decimal `json:"triple"`
}

// PrenominaMetric - Pre-payroll aggregate produced by the attendance module
type PrenominaMetric struct {
	EmployeeID       string
	PayrollPeriodID  string
	WorkedDays       decimal.Decimal
	RegularHours     decimal.Decimal
	OvertimeHours    OvertimeHours
	AbsenceDays      decimal.Decimal
	VacationDays     decimal.Decimal
	LoanDeduction    decimal.Decimal
	AdvanceDeduction decimal.Decimal
	OtherDeduction   decimal.Decimal
	BonusAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
}

// HasNegativeValues reports whether any amount or count is below zero.
func (m PrenominaMetric) HasNegativeValues() bool {
	values := []decimal.Decimal{
		m.WorkedDays, m.RegularHours,
		m.OvertimeHours.Regular, m.OvertimeHours.Double, m.OvertimeHours.Triple,
		m.AbsenceDays, m.VacationDays,
		m.LoanDeduction, m.AdvanceDeduction, m.OtherDeduction,
		m.BonusAmount, m.CommissionAmount,
	}
	for _, v := range values {
		if v.IsNegative() {
			return true
		}
	}
	return false
}

// CalculationStatus enum
type CalculationStatus string

const (
	CalculationStatusCalculated CalculationStatus = "calculated"
	CalculationStatusApproved   CalculationStatus = "approved"
	CalculationStatusPaid       CalculationStatus = "paid"
)

// EmployerContribution - Employer-side cost, informational only
type EmployerContribution struct {
	TotalIMSS       decimal.Decimal `json:"total_imss"`
	TotalInfonavit  decimal.Decimal `json:"total_infonavit"`
	TotalRetirement decimal.Decimal `json:"total_retirement"`
}

// Deduction concepts, in the order they are applied against gross income.
const (
	DeductionISR       = "isr"
	DeductionIMSS      = "imss"
	DeductionInfonavit = "infonavit"
	DeductionLoan      = "loan"
	DeductionAdvance   = "advance"
	DeductionOther     = "other"
)

// PayrollCalculation - Stored result for one employee and one period
type PayrollCalculation struct {
	ID              string
	EmployeeID      string
	PayrollPeriodID string

	// Income
	DailySalary      decimal.Decimal
	SDIUsed          decimal.Decimal
	WorkedDays       decimal.Decimal
	RegularSalary    decimal.Decimal
	OvertimeRegular  decimal.Decimal
	OvertimeDouble   decimal.Decimal
	OvertimeTriple   decimal.Decimal
	VacationPremium  decimal.Decimal
	Aguinaldo        decimal.Decimal
	OtherExtras      decimal.Decimal
	TotalGrossIncome decimal.Decimal
	TaxableIncome    decimal.Decimal

	// Deductions, after capping
	ISRBeforeSubsidy   decimal.Decimal
	SubsidyApplied     decimal.Decimal
	ISRWithholding     decimal.Decimal
	IMSSEmployee       decimal.Decimal
	InfonavitEmployee  decimal.Decimal
	LoanDeduction      decimal.Decimal
	AdvanceDeduction   decimal.Decimal
	OtherDeduction     decimal.Decimal
	TotalDeductions    decimal.Decimal
	DeductionShortfall decimal.Decimal
	ShortfallDetail    map[string]decimal.Decimal // {"loan": 120.50}

	EmployerContributions EmployerContribution

	TotalNetPay       decimal.Decimal
	CalculationStatus CalculationStatus
	CalculatedAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
