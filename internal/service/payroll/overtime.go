package payroll

import (
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const hoursPerShift = 8

var (
	regularMultiplier = decimal.NewFromInt(1)
	doubleMultiplier  = decimal.NewFromInt(2)
	tripleMultiplier  = decimal.NewFromInt(3)
)

// OvertimePolicy - Statutory limits applied before pricing overtime
type OvertimePolicy struct {
	// DoubleWeeklyCapHours is the number of double-rate hours allowed per
	// week; hours above it are paid at triple rate. Zero keeps the tiers
	// exactly as reported.
	DoubleWeeklyCapHours decimal.Decimal
}

// OvertimeAmounts - Overtime pay by tier
type OvertimeAmounts struct {
	Regular decimal.Decimal
	Double  decimal.Decimal
	Triple  decimal.Decimal
}

func (a OvertimeAmounts) Total() decimal.Decimal {
	return a.Regular.Add(a.Double).Add(a.Triple)
}

// WeeksInPeriod returns ceil(days / 7), at least one.
func WeeksInPeriod(days int) int {
	weeks := (days + 6) / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// Retier moves double-rate hours above the weekly cap into the triple tier.
func (p OvertimePolicy) Retier(hours payroll.OvertimeHours, weeks int) payroll.OvertimeHours {
	if !p.DoubleWeeklyCapHours.IsPositive() {
		return hours
	}

	allowed := p.DoubleWeeklyCapHours.Mul(decimal.NewFromInt(int64(weeks)))
	if hours.Double.LessThanOrEqual(allowed) {
		return hours
	}

	excess := hours.Double.Sub(allowed)
	return payroll.OvertimeHours{
		Regular: hours.Regular,
		Double:  allowed,
		Triple:  hours.Triple.Add(excess),
	}
}

// CalculateOvertime prices each tier at daily salary / 8 times its multiplier.
func CalculateOvertime(dailySalary decimal.Decimal, hours payroll.OvertimeHours) OvertimeAmounts {
	hourly := dailySalary.Div(decimal.NewFromInt(hoursPerShift))
	return OvertimeAmounts{
		Regular: round2(hourly.Mul(hours.Regular).Mul(regularMultiplier)),
		Double:  round2(hourly.Mul(hours.Double).Mul(doubleMultiplier)),
		Triple:  round2(hourly.Mul(hours.Triple).Mul(tripleMultiplier)),
	}
}
