package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	// IMSS base is capped at 25 UMA.
	salaryCapUMA = 25
	// Enfermedad y maternidad excess applies above 3 UMA.
	excessThresholdUMA = 3
)

// IMSS component names used in the breakdown maps.
const (
	ComponentCuotaFija                = "cuota_fija"
	ComponentExcedente                = "enfermedad_maternidad_excedente"
	ComponentPrestacionesDinero       = "prestaciones_dinero"
	ComponentGastosMedicosPensionados = "gastos_medicos_pensionados"
	ComponentInvalidezVida            = "invalidez_vida"
	ComponentCesantiaVejez            = "cesantia_vejez"
	ComponentGuarderias               = "guarderias"
	ComponentRetiro                   = "retiro"
	ComponentRiesgoTrabajo            = "riesgo_trabajo"
)

var hundred = decimal.NewFromInt(100)

// ContributionResult - IMSS and INFONAVIT for one employee and period
type ContributionResult struct {
	// ContributionBase is the capped daily base, min(SDI, 25 UMA).
	ContributionBase   decimal.Decimal
	IMSSEmployee       decimal.Decimal
	IMSSEmployer       decimal.Decimal
	EmployerRetirement decimal.Decimal
	InfonavitEmployee  decimal.Decimal
	InfonavitEmployer  decimal.Decimal
	EmployeeDetail     map[string]decimal.Decimal
	EmployerDetail     map[string]decimal.Decimal
}

// ContributionBase returns min(sdi, 25 x uma).
func ContributionBase(sdi, uma decimal.Decimal) decimal.Decimal {
	return decimal.Min(sdi, uma.Mul(decimal.NewFromInt(salaryCapUMA)))
}

// CalculateContributions computes employee and employer IMSS quotas plus the
// INFONAVIT credit deduction. Every component is rounded to centavos and the
// totals are sums of the rounded components.
func CalculateContributions(sdi, workedDays decimal.Decimal, table payroll.TaxTable, emp employee.Employee) (ContributionResult, error) {
	uma := table.UMADailyValue
	base := ContributionBase(sdi, uma)
	cappedBase := base.Mul(workedDays)

	excessDaily := base.Sub(uma.Mul(decimal.NewFromInt(excessThresholdUMA)))
	if excessDaily.IsNegative() {
		excessDaily = decimal.Zero
	}
	excessBase := excessDaily.Mul(workedDays)

	ee := table.IMSS.Employee
	employeeDetail := map[string]decimal.Decimal{
		ComponentExcedente:                round2(excessBase.Mul(ee.EnfermedadMaternidadExcedente)),
		ComponentPrestacionesDinero:       round2(cappedBase.Mul(ee.PrestacionesDinero)),
		ComponentGastosMedicosPensionados: round2(cappedBase.Mul(ee.GastosMedicosPensionados)),
		ComponentInvalidezVida:            round2(cappedBase.Mul(ee.InvalidezVida)),
		ComponentCesantiaVejez:            round2(cappedBase.Mul(ee.CesantiaVejez)),
	}

	er := table.IMSS.Employer
	employerDetail := map[string]decimal.Decimal{
		ComponentCuotaFija:                round2(uma.Mul(workedDays).Mul(er.CuotaFija)),
		ComponentExcedente:                round2(excessBase.Mul(er.EnfermedadMaternidadExcedente)),
		ComponentPrestacionesDinero:       round2(cappedBase.Mul(er.PrestacionesDinero)),
		ComponentGastosMedicosPensionados: round2(cappedBase.Mul(er.GastosMedicosPensionados)),
		ComponentInvalidezVida:            round2(cappedBase.Mul(er.InvalidezVida)),
		ComponentGuarderias:               round2(cappedBase.Mul(er.Guarderias)),
		ComponentRetiro:                   round2(cappedBase.Mul(er.Retiro)),
		ComponentCesantiaVejez:            round2(cappedBase.Mul(er.CesantiaVejez)),
		ComponentRiesgoTrabajo:            round2(cappedBase.Mul(er.RiesgoTrabajo)),
	}

	infonavit, err := infonavitDeduction(emp, cappedBase)
	if err != nil {
		return ContributionResult{}, err
	}

	return ContributionResult{
		ContributionBase:   base,
		IMSSEmployee:       sumValues(employeeDetail),
		IMSSEmployer:       sumValues(employerDetail),
		EmployerRetirement: employerDetail[ComponentRetiro].Add(employerDetail[ComponentCesantiaVejez]),
		InfonavitEmployee:  infonavit,
		InfonavitEmployer:  round2(sdi.Mul(workedDays).Mul(table.Infonavit.EmployerRate)),
		EmployeeDetail:     employeeDetail,
		EmployerDetail:     employerDetail,
	}, nil
}

func infonavitDeduction(emp employee.Employee, cappedBase decimal.Decimal) (decimal.Decimal, error) {
	if !emp.HasInfonavitCredit() {
		return decimal.Zero, nil
	}

	switch emp.InfonavitDeductionType {
	case employee.InfonavitDeductionFixedAmount:
		return round2(emp.InfonavitDeductionValue), nil
	case employee.InfonavitDeductionPercentage:
		return round2(cappedBase.Mul(emp.InfonavitDeductionValue).Div(hundred)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", payroll.ErrInvalidInfonavitType, emp.InfonavitDeductionType)
	}
}

func sumValues(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
