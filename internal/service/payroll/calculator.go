package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// CalculationInput - Everything needed to price one employee for one period
type CalculationInput struct {
	Employee  employee.Employee
	Period    payroll.PayrollPeriod
	Prenomina *payroll.PrenominaMetric
	TaxTable  payroll.TaxTable
	// RefreshSDI recomputes SDI even when the employee already has one stored.
	RefreshSDI bool
}

// Calculator turns prenomina into a PayrollCalculation. It does no I/O.
type Calculator struct {
	overtime OvertimePolicy
	now      func() time.Time
}

func NewCalculator(overtime OvertimePolicy, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{overtime: overtime, now: now}
}

// Calculate prices one employee for one period.
func (c *Calculator) Calculate(in CalculationInput) (payroll.PayrollCalculation, error) {
	emp := in.Employee
	if !emp.IsActive() {
		return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s is %s", payroll.ErrEmployeeInactive, emp.ID, emp.EmploymentStatus)
	}
	if emp.PayFrequency != in.Period.Frequency {
		return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s is paid %s, period is %s", payroll.ErrPayFrequencyMismatch, emp.ID, emp.PayFrequency, in.Period.Frequency)
	}
	if in.Prenomina == nil {
		return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s, period %s", payroll.ErrPrenominaNotFound, emp.ID, in.Period.ID)
	}
	pre := *in.Prenomina
	if pre.HasNegativeValues() {
		return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s", payroll.ErrInvalidPrenomina, emp.ID)
	}
	if !emp.DailySalary.IsPositive() {
		return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s", payroll.ErrInvalidDailySalary, emp.ID)
	}

	sdi := emp.SDI
	if in.RefreshSDI || !sdi.IsPositive() {
		var err error
		sdi, err = CalculateSDI(emp.DailySalary, emp.HireDate, in.Period.EndDate)
		if err != nil {
			return payroll.PayrollCalculation{}, err
		}
	}

	// Income
	regularSalary := round2(emp.DailySalary.Mul(pre.WorkedDays))
	hours := c.overtime.Retier(pre.OvertimeHours, WeeksInPeriod(in.Period.Days()))
	overtime := CalculateOvertime(emp.DailySalary, hours)
	vacationPremium := round2(emp.DailySalary.Mul(pre.VacationDays).Mul(vacationPremiumRate))
	aguinaldo := decimal.Zero
	otherExtras := round2(pre.BonusAmount.Add(pre.CommissionAmount))

	gross := regularSalary.
		Add(overtime.Total()).
		Add(vacationPremium).
		Add(aguinaldo).
		Add(otherExtras)
	taxable := gross

	// Statutory
	withholding, err := CalculateWithholding(taxable, in.TaxTable.ISRBrackets, in.TaxTable.SubsidyBrackets)
	if err != nil {
		return payroll.PayrollCalculation{}, err
	}
	contributions, err := CalculateContributions(sdi, pre.WorkedDays, in.TaxTable, emp)
	if err != nil {
		return payroll.PayrollCalculation{}, err
	}

	// Deductions are applied in priority order and each one is capped to
	// what is left, so net pay never drops below zero.
	ledger := newDeductionLedger(gross)
	isr := ledger.apply(payroll.DeductionISR, withholding.ISRWithholding)
	imss := ledger.apply(payroll.DeductionIMSS, contributions.IMSSEmployee)
	infonavit := ledger.apply(payroll.DeductionInfonavit, contributions.InfonavitEmployee)
	loan := ledger.apply(payroll.DeductionLoan, round2(pre.LoanDeduction))
	advance := ledger.apply(payroll.DeductionAdvance, round2(pre.AdvanceDeduction))
	other := ledger.apply(payroll.DeductionOther, round2(pre.OtherDeduction))

	return payroll.PayrollCalculation{
		EmployeeID:       emp.ID,
		PayrollPeriodID:  in.Period.ID,
		DailySalary:      emp.DailySalary,
		SDIUsed:          sdi,
		WorkedDays:       pre.WorkedDays,
		RegularSalary:    regularSalary,
		OvertimeRegular:  overtime.Regular,
		OvertimeDouble:   overtime.Double,
		OvertimeTriple:   overtime.Triple,
		VacationPremium:  vacationPremium,
		Aguinaldo:        aguinaldo,
		OtherExtras:      otherExtras,
		TotalGrossIncome: gross,
		TaxableIncome:    taxable,

		ISRBeforeSubsidy:   withholding.ISRBeforeSubsidy,
		SubsidyApplied:     withholding.SubsidyApplied,
		ISRWithholding:     isr,
		IMSSEmployee:       imss,
		InfonavitEmployee:  infonavit,
		LoanDeduction:      loan,
		AdvanceDeduction:   advance,
		OtherDeduction:     other,
		TotalDeductions:    ledger.applied,
		DeductionShortfall: ledger.shortfallTotal,
		ShortfallDetail:    ledger.shortfall,

		EmployerContributions: payroll.EmployerContribution{
			TotalIMSS:       contributions.IMSSEmployer,
			TotalInfonavit:  contributions.InfonavitEmployer,
			TotalRetirement: contributions.EmployerRetirement,
		},

		TotalNetPay:       ledger.remaining,
		CalculationStatus: payroll.CalculationStatusCalculated,
		CalculatedAt:      c.now(),
	}, nil
}

// deductionLedger tracks what is left of gross income while deductions are
// applied.
type deductionLedger struct {
	remaining      decimal.Decimal
	applied        decimal.Decimal
	shortfallTotal decimal.Decimal
	shortfall      map[string]decimal.Decimal
}

func newDeductionLedger(gross decimal.Decimal) *deductionLedger {
	return &deductionLedger{
		remaining:      gross,
		applied:        decimal.Zero,
		shortfallTotal: decimal.Zero,
		shortfall:      map[string]decimal.Decimal{},
	}
}

func (l *deductionLedger) apply(concept string, requested decimal.Decimal) decimal.Decimal {
	applied := decimal.Min(requested, l.remaining)
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	l.remaining = l.remaining.Sub(applied)
	l.applied = l.applied.Add(applied)

	if missing := requested.Sub(applied); missing.IsPositive() {
		l.shortfall[concept] = missing
		l.shortfallTotal = l.shortfallTotal.Add(missing)
	}
	return applied
}
