package payroll

import (
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	testPeriodID = "7b0c7f5e-2f43-4e51-9a2e-5d6f1f0c9a01"
	testActorID  = "3e8b9f7a-0c1d-4b2e-8f3a-6d5c4b3a2a10"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// testTaxTable is a biweekly 2025 table. The middle ISR bracket is the one
// published for biweekly incomes above 6,224.69.
func testTaxTable() payroll.TaxTable {
	return payroll.TaxTable{
		FiscalYear:    2025,
		PeriodType:    employee.PayFrequencyBiweekly,
		UMADailyValue: d("113.14"),
		ISRBrackets: []payroll.Bracket{
			{LowerLimit: d("0.01"), FixedFee: d("0"), Rate: d("0.0192")},
			{LowerLimit: d("6224.69"), FixedFee: d("353.22"), Rate: d("0.1088")},
			{LowerLimit: d("20000.00"), FixedFee: d("1912.00"), Rate: d("0.30")},
		},
		SubsidyBrackets: []payroll.Bracket{
			{LowerLimit: d("0.01"), FixedFee: d("200.00"), Rate: d("0")},
			{LowerLimit: d("5000.01"), FixedFee: d("0"), Rate: d("0")},
		},
		IMSS: payroll.IMSSRates{
			Employee: payroll.IMSSEmployeeRates{
				EnfermedadMaternidadExcedente: d("0.0040"),
				PrestacionesDinero:            d("0.0025"),
				GastosMedicosPensionados:      d("0.00375"),
				InvalidezVida:                 d("0.00625"),
				CesantiaVejez:                 d("0.01125"),
			},
			Employer: payroll.IMSSEmployerRates{
				CuotaFija:                     d("0.2040"),
				EnfermedadMaternidadExcedente: d("0.0110"),
				PrestacionesDinero:            d("0.0070"),
				GastosMedicosPensionados:      d("0.0105"),
				InvalidezVida:                 d("0.0175"),
				Guarderias:                    d("0.0100"),
				Retiro:                        d("0.0200"),
				CesantiaVejez:                 d("0.0315"),
				RiesgoTrabajo:                 d("0.0054355"),
			},
		},
		Infonavit: payroll.InfonavitRules{EmployerRate: d("0.05")},
	}
}

func testEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:               id,
		EmployeeCode:     code,
		FullName:         "Empleado " + code,
		CollarType:       employee.CollarTypeWhite,
		DailySalary:      d("800"),
		SDI:              d("839.45"),
		HireDate:         date(2024, time.January, 1),
		PayFrequency:     employee.PayFrequencyBiweekly,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}

func testPeriod(status payroll.PeriodStatus) payroll.PayrollPeriod {
	return payroll.PayrollPeriod{
		ID:           testPeriodID,
		Year:         2025,
		PeriodNumber: 7,
		Frequency:    employee.PayFrequencyBiweekly,
		StartDate:    date(2025, time.April, 1),
		EndDate:      date(2025, time.April, 15),
		PaymentDate:  date(2025, time.April, 15),
		Status:       status,
	}
}

func testPrenomina(employeeID string) payroll.PrenominaMetric {
	return payroll.PrenominaMetric{
		EmployeeID:      employeeID,
		PayrollPeriodID: testPeriodID,
		WorkedDays:      d("15"),
		RegularHours:    d("120"),
		OvertimeHours:   payroll.OvertimeHours{Regular: d("5")},
	}
}
