package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var calculatedAt = time.Date(2025, time.April, 14, 10, 0, 0, 0, time.UTC)

func newTestCalculator() *Calculator {
	return NewCalculator(OvertimePolicy{}, func() time.Time { return calculatedAt })
}

func TestCalculator_Calculate_EndToEnd(t *testing.T) {
	t.Parallel()
	emp := testEmployee("e1", "E-001")
	pre := testPrenomina(emp.ID)

	calc, err := newTestCalculator().Calculate(CalculationInput{
		Employee:  emp,
		Period:    testPeriod(payroll.PeriodStatusOpen),
		Prenomina: &pre,
		TaxTable:  testTaxTable(),
	})

	require.NoError(t, err)
	assert.Equal(t, "12000.00", calc.RegularSalary.StringFixed(2))
	assert.Equal(t, "500.00", calc.OvertimeRegular.StringFixed(2))
	assert.Equal(t, "12500.00", calc.TotalGrossIncome.StringFixed(2))
	assert.Equal(t, "12500.00", calc.TaxableIncome.StringFixed(2))
	assert.Equal(t, "1035.97", calc.ISRWithholding.StringFixed(2))
	assert.Equal(t, "329.06", calc.IMSSEmployee.StringFixed(2))
	assert.Equal(t, "1365.03", calc.TotalDeductions.StringFixed(2))
	assert.Equal(t, "11134.97", calc.TotalNetPay.StringFixed(2))
	assert.True(t, calc.TotalNetPay.IsPositive())
	assert.True(t, calc.TotalNetPay.LessThan(calc.TotalGrossIncome))
	assert.True(t, calc.DeductionShortfall.IsZero())
	assert.Empty(t, calc.ShortfallDetail)

	assert.Equal(t, "1712.26", calc.EmployerContributions.TotalIMSS.StringFixed(2))
	assert.Equal(t, "629.59", calc.EmployerContributions.TotalInfonavit.StringFixed(2))
	assert.Equal(t, "648.48", calc.EmployerContributions.TotalRetirement.StringFixed(2))

	assert.Equal(t, payroll.CalculationStatusCalculated, calc.CalculationStatus)
	assert.Equal(t, calculatedAt, calc.CalculatedAt)
	assert.Equal(t, "839.45", calc.SDIUsed.StringFixed(2))
}

func TestCalculator_Calculate_NetPlusDeductionsEqualsGross(t *testing.T) {
	t.Parallel()
	emp := testEmployee("e1", "E-001")
	emp.InfonavitCredit = "1234567890"
	emp.InfonavitDeductionType = employee.InfonavitDeductionFixedAmount
	emp.InfonavitDeductionValue = d("750")
	pre := testPrenomina(emp.ID)
	pre.VacationDays = d("3")
	pre.BonusAmount = d("100")
	pre.CommissionAmount = d("50")
	pre.LoanDeduction = d("1000")
	pre.AdvanceDeduction = d("250.50")

	calc, err := newTestCalculator().Calculate(CalculationInput{
		Employee:  emp,
		Period:    testPeriod(payroll.PeriodStatusOpen),
		Prenomina: &pre,
		TaxTable:  testTaxTable(),
	})

	require.NoError(t, err)
	assert.Equal(t, "600.00", calc.VacationPremium.StringFixed(2))
	assert.Equal(t, "150.00", calc.OtherExtras.StringFixed(2))
	assert.True(t, calc.Aguinaldo.IsZero())
	assert.Equal(t, "750.00", calc.InfonavitEmployee.StringFixed(2))

	deductions := calc.ISRWithholding.Add(calc.IMSSEmployee).Add(calc.InfonavitEmployee).
		Add(calc.LoanDeduction).Add(calc.AdvanceDeduction).Add(calc.OtherDeduction)
	assert.True(t, deductions.Equal(calc.TotalDeductions))
	assert.True(t, calc.TotalNetPay.Add(calc.TotalDeductions).Equal(calc.TotalGrossIncome))
}

func TestCalculator_Calculate_DeductionsCappedWithShortfall(t *testing.T) {
	t.Parallel()
	emp := testEmployee("e1", "E-001")
	pre := testPrenomina(emp.ID)
	pre.WorkedDays = d("1")
	pre.OvertimeHours = payroll.OvertimeHours{}
	pre.LoanDeduction = d("1000")
	pre.AdvanceDeduction = d("50")

	calc, err := newTestCalculator().Calculate(CalculationInput{
		Employee:  emp,
		Period:    testPeriod(payroll.PeriodStatusOpen),
		Prenomina: &pre,
		TaxTable:  testTaxTable(),
	})

	require.NoError(t, err)
	assert.Equal(t, "800.00", calc.TotalGrossIncome.StringFixed(2))
	assert.True(t, calc.ISRWithholding.IsZero(), "subsidy covers the tax")
	assert.Equal(t, "21.94", calc.IMSSEmployee.StringFixed(2))
	assert.Equal(t, "778.06", calc.LoanDeduction.StringFixed(2))
	assert.True(t, calc.AdvanceDeduction.IsZero())
	assert.True(t, calc.TotalNetPay.IsZero())
	assert.Equal(t, "800.00", calc.TotalDeductions.StringFixed(2))

	require.Len(t, calc.ShortfallDetail, 2)
	assert.Equal(t, "221.94", calc.ShortfallDetail[payroll.DeductionLoan].StringFixed(2))
	assert.Equal(t, "50.00", calc.ShortfallDetail[payroll.DeductionAdvance].StringFixed(2))
	assert.Equal(t, "271.94", calc.DeductionShortfall.StringFixed(2))
}

func TestCalculator_Calculate_RefreshSDI(t *testing.T) {
	t.Parallel()
	emp := testEmployee("e1", "E-001")
	emp.HireDate = date(2019, time.January, 1)
	pre := testPrenomina(emp.ID)

	in := CalculationInput{
		Employee:  emp,
		Period:    testPeriod(payroll.PeriodStatusOpen),
		Prenomina: &pre,
		TaxTable:  testTaxTable(),
	}

	kept, err := newTestCalculator().Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "839.45", kept.SDIUsed.StringFixed(2))

	in.RefreshSDI = true
	refreshed, err := newTestCalculator().Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "844.93", refreshed.SDIUsed.StringFixed(2))

	in.RefreshSDI = false
	in.Employee.SDI = d("0")
	missing, err := newTestCalculator().Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "844.93", missing.SDIUsed.StringFixed(2))
}

func TestCalculator_Calculate_OvertimeRetieredByPolicy(t *testing.T) {
	t.Parallel()
	emp := testEmployee("e1", "E-001")
	pre := testPrenomina(emp.ID)
	pre.OvertimeHours = payroll.OvertimeHours{Regular: d("0"), Double: d("30"), Triple: d("0")}
	calculator := NewCalculator(OvertimePolicy{DoubleWeeklyCapHours: d("9")}, nil)

	calc, err := calculator.Calculate(CalculationInput{
		Employee:  emp,
		Period:    testPeriod(payroll.PeriodStatusOpen),
		Prenomina: &pre,
		TaxTable:  testTaxTable(),
	})

	require.NoError(t, err)
	// 15 days is three weeks: 27 double hours, 3 triple
	assert.Equal(t, "5400.00", calc.OvertimeDouble.StringFixed(2))
	assert.Equal(t, "900.00", calc.OvertimeTriple.StringFixed(2))
}

func TestCalculator_Calculate_ValidationErrors(t *testing.T) {
	t.Parallel()

	negative := testPrenomina("e1")
	negative.LoanDeduction = d("-1")

	tests := []struct {
		name      string
		mutate    func(in *CalculationInput)
		wantError error
	}{
		{"inactive employee", func(in *CalculationInput) {
			in.Employee.EmploymentStatus = employee.EmploymentStatusTerminated
		}, payroll.ErrEmployeeInactive},
		{"pay frequency mismatch", func(in *CalculationInput) {
			in.Employee.PayFrequency = employee.PayFrequencyWeekly
		}, payroll.ErrPayFrequencyMismatch},
		{"missing prenomina", func(in *CalculationInput) {
			in.Prenomina = nil
		}, payroll.ErrPrenominaNotFound},
		{"negative prenomina", func(in *CalculationInput) {
			in.Prenomina = &negative
		}, payroll.ErrInvalidPrenomina},
		{"zero daily salary", func(in *CalculationInput) {
			in.Employee.DailySalary = d("0")
		}, payroll.ErrInvalidDailySalary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre := testPrenomina("e1")
			in := CalculationInput{
				Employee:  testEmployee("e1", "E-001"),
				Period:    testPeriod(payroll.PeriodStatusOpen),
				Prenomina: &pre,
				TaxTable:  testTaxTable(),
			}
			tt.mutate(&in)

			_, err := newTestCalculator().Calculate(in)

			assert.ErrorIs(t, err, tt.wantError)
			assert.ErrorIs(t, err, payroll.ErrValidation)
		})
	}
}
