package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// Bracket is one row of an ISR or subsidy table. Rate is a fraction (0.1088).
type Bracket struct {
	LowerLimit decimal.Decimal `json:"lower_limit" yaml:"lower_limit"`
	FixedFee   decimal.Decimal `json:"fixed_fee" yaml:"fixed_fee"`
	Rate       decimal.Decimal `json:"rate" yaml:"rate"`
}

type IMSSEmployeeRates struct {
	EnfermedadMaternidadExcedente decimal.Decimal `json:"enfermedad_maternidad_excedente" yaml:"enfermedad_maternidad_excedente"`
	PrestacionesDinero            decimal.Decimal `json:"prestaciones_dinero" yaml:"prestaciones_dinero"`
	GastosMedicosPensionados      decimal.Decimal `json:"gastos_medicos_pensionados" yaml:"gastos_medicos_pensionados"`
	InvalidezVida                 decimal.Decimal `json:"invalidez_vida" yaml:"invalidez_vida"`
	CesantiaVejez                 decimal.Decimal `json:"cesantia_vejez" yaml:"cesantia_vejez"`
}

type IMSSEmployerRates struct {
	CuotaFija                     decimal.Decimal `json:"cuota_fija" yaml:"cuota_fija"`
	EnfermedadMaternidadExcedente decimal.Decimal `json:"enfermedad_maternidad_excedente" yaml:"enfermedad_maternidad_excedente"`
	PrestacionesDinero            decimal.Decimal `json:"prestaciones_dinero" yaml:"prestaciones_dinero"`
	GastosMedicosPensionados      decimal.Decimal `json:"gastos_medicos_pensionados" yaml:"gastos_medicos_pensionados"`
	InvalidezVida                 decimal.Decimal `json:"invalidez_vida" yaml:"invalidez_vida"`
	Guarderias                    decimal.Decimal `json:"guarderias" yaml:"guarderias"`
	Retiro                        decimal.Decimal `json:"retiro" yaml:"retiro"`
	CesantiaVejez                 decimal.Decimal `json:"cesantia_vejez" yaml:"cesantia_vejez"`
	RiesgoTrabajo                 decimal.Decimal `json:"riesgo_trabajo" yaml:"riesgo_trabajo"`
}

type IMSSRates struct {
	Employee IMSSEmployeeRates `json:"employee" yaml:"employee"`
	Employer IMSSEmployerRates `json:"employer" yaml:"employer"`
}

type InfonavitRules struct {
	EmployerRate decimal.Decimal `json:"employer_rate" yaml:"employer_rate"`
}

// TaxTable - Statutory parameters for one fiscal year and pay frequency
type TaxTable struct {
	FiscalYear      int                   `json:"fiscal_year" yaml:"fiscal_year"`
	PeriodType      employee.PayFrequency `json:"period_type" yaml:"period_type"`
	UMADailyValue   decimal.Decimal       `json:"uma_daily_value" yaml:"uma_daily_value"`
	ISRBrackets     []Bracket             `json:"isr_brackets" yaml:"isr_brackets"`
	SubsidyBrackets []Bracket             `json:"subsidy_brackets" yaml:"subsidy_brackets"`
	IMSS            IMSSRates             `json:"imss" yaml:"imss"`
	Infonavit       InfonavitRules        `json:"infonavit" yaml:"infonavit"`
}

// TaxTableKey identifies a table version.
type TaxTableKey struct {
	FiscalYear int
	PeriodType employee.PayFrequency
}

func (t TaxTable) Key() TaxTableKey {
	return TaxTableKey{FiscalYear: t.FiscalYear, PeriodType: t.PeriodType}
}

// Validate checks a table before it is used. Brackets must be sorted by
// strictly ascending lower limit; insertion order from the source is never
// trusted.
func (t TaxTable) Validate() error {
	if t.FiscalYear <= 0 {
		return fmt.Errorf("%w: fiscal_year must be positive", ErrTaxTableInvalid)
	}
	if !t.PeriodType.IsValid() {
		return fmt.Errorf("%w: unknown period_type %q", ErrTaxTableInvalid, t.PeriodType)
	}
	if !t.UMADailyValue.IsPositive() {
		return fmt.Errorf("%w: uma_daily_value must be positive", ErrTaxTableInvalid)
	}
	if len(t.ISRBrackets) == 0 {
		return fmt.Errorf("%w: isr_brackets is empty", ErrTaxTableInvalid)
	}
	if err := validateBrackets("isr_brackets", t.ISRBrackets); err != nil {
		return err
	}
	if err := validateBrackets("subsidy_brackets", t.SubsidyBrackets); err != nil {
		return err
	}

	rates := map[string]decimal.Decimal{
		"imss.employee.enfermedad_maternidad_excedente": t.IMSS.Employee.EnfermedadMaternidadExcedente,
		"imss.employee.prestaciones_dinero":             t.IMSS.Employee.PrestacionesDinero,
		"imss.employee.gastos_medicos_pensionados":      t.IMSS.Employee.GastosMedicosPensionados,
		"imss.employee.invalidez_vida":                  t.IMSS.Employee.InvalidezVida,
		"imss.employee.cesantia_vejez":                  t.IMSS.Employee.CesantiaVejez,
		"imss.employer.cuota_fija":                      t.IMSS.Employer.CuotaFija,
		"imss.employer.enfermedad_maternidad_excedente": t.IMSS.Employer.EnfermedadMaternidadExcedente,
		"imss.employer.prestaciones_dinero":             t.IMSS.Employer.PrestacionesDinero,
		"imss.employer.gastos_medicos_pensionados":      t.IMSS.Employer.GastosMedicosPensionados,
		"imss.employer.invalidez_vida":                  t.IMSS.Employer.InvalidezVida,
		"imss.employer.guarderias":                      t.IMSS.Employer.Guarderias,
		"imss.employer.retiro":                          t.IMSS.Employer.Retiro,
		"imss.employer.cesantia_vejez":                  t.IMSS.Employer.CesantiaVejez,
		"imss.employer.riesgo_trabajo":                  t.IMSS.Employer.RiesgoTrabajo,
		"infonavit.employer_rate":                       t.Infonavit.EmployerRate,
	}
	for name, rate := range rates {
		if !isFraction(rate) {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %s", ErrTaxTableInvalid, name, rate)
		}
	}

	return nil
}

func validateBrackets(name string, brackets []Bracket) error {
	for i, b := range brackets {
		if b.LowerLimit.IsNegative() {
			return fmt.Errorf("%w: %s[%d].lower_limit is negative", ErrTaxTableInvalid, name, i)
		}
		if b.FixedFee.IsNegative() {
			return fmt.Errorf("%w: %s[%d].fixed_fee is negative", ErrTaxTableInvalid, name, i)
		}
		if !isFraction(b.Rate) {
			return fmt.Errorf("%w: %s[%d].rate must be between 0 and 1", ErrTaxTableInvalid, name, i)
		}
		if i > 0 && !b.LowerLimit.GreaterThan(brackets[i-1].LowerLimit) {
			return fmt.Errorf("%w: %s[%d].lower_limit %s is not above %s", ErrTaxTableInvalid, name, i, b.LowerLimit, brackets[i-1].LowerLimit)
		}
	}
	return nil
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
