package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const aguinaldoDays = 15

var (
	vacationPremiumRate = decimal.NewFromFloat(0.25)
	daysPerYear         = decimal.NewFromInt(365)
)

// SeniorityYears returns the number of whole years between hireDate and asOf.
func SeniorityYears(hireDate, asOf time.Time) int {
	hired, at := dateOnly(hireDate), dateOnly(asOf)
	years := at.Year() - hired.Year()
	if hired.AddDate(years, 0, 0).After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// VacationDays returns the LFT art. 76 entitlement for a seniority in whole
// years. The first year of service uses the year-one tier.
func VacationDays(seniorityYears int) int {
	switch {
	case seniorityYears <= 1:
		return 12
	case seniorityYears <= 5:
		return 12 + (seniorityYears-1)*2
	default:
		// 22 days for years 6-10, then +2 for every further block of five
		return 22 + ((seniorityYears-6)/5)*2
	}
}

// IntegrationFactor is 1 + (vacation days x 25% + 15 aguinaldo days) / 365.
func IntegrationFactor(vacationDays int) decimal.Decimal {
	integrated := decimal.NewFromInt(int64(vacationDays)).
		Mul(vacationPremiumRate).
		Add(decimal.NewFromInt(aguinaldoDays))
	return decimal.NewFromInt(1).Add(integrated.Div(daysPerYear))
}

// CalculateSDI returns the integrated daily salary as of asOf, rounded to
// centavos.
func CalculateSDI(dailySalary decimal.Decimal, hireDate, asOf time.Time) (decimal.Decimal, error) {
	if !dailySalary.IsPositive() {
		return decimal.Zero, payroll.ErrInvalidDailySalary
	}
	if dateOnly(hireDate).After(dateOnly(asOf)) {
		return decimal.Zero, fmt.Errorf("%w: hired %s, as of %s", payroll.ErrHireDateAfterAsOf,
			hireDate.Format("2006-01-02"), asOf.Format("2006-01-02"))
	}

	vacation := VacationDays(SeniorityYears(hireDate, asOf))
	return round2(dailySalary.Mul(IntegrationFactor(vacation))), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// round2 rounds half away from zero to two decimals, which is half-up for
// the non-negative amounts payroll produces.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
