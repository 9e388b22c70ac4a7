package payroll

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// WithholdingResult - ISR for one period after the employment subsidy
type WithholdingResult struct {
	ISRBeforeSubsidy decimal.Decimal
	SubsidyApplied   decimal.Decimal
	ISRWithholding   decimal.Decimal
}

// FindBracket returns the bracket with the largest lower limit that does not
// exceed income. Brackets must be sorted ascending by lower limit.
func FindBracket(brackets []payroll.Bracket, income decimal.Decimal) (payroll.Bracket, bool) {
	// first bracket whose lower limit is above income
	i := sort.Search(len(brackets), func(i int) bool {
		return brackets[i].LowerLimit.GreaterThan(income)
	})
	if i == 0 {
		return payroll.Bracket{}, false
	}
	return brackets[i-1], true
}

func applyBracket(b payroll.Bracket, income decimal.Decimal) decimal.Decimal {
	return b.FixedFee.Add(income.Sub(b.LowerLimit).Mul(b.Rate))
}

// CalculateWithholding computes ISR on taxableIncome and subtracts the
// employment subsidy. The subsidy never turns the tax negative.
func CalculateWithholding(taxableIncome decimal.Decimal, isrBrackets, subsidyBrackets []payroll.Bracket) (WithholdingResult, error) {
	if !taxableIncome.IsPositive() {
		return WithholdingResult{
			ISRBeforeSubsidy: decimal.Zero,
			SubsidyApplied:   decimal.Zero,
			ISRWithholding:   decimal.Zero,
		}, nil
	}

	bracket, ok := FindBracket(isrBrackets, taxableIncome)
	if !ok {
		return WithholdingResult{}, fmt.Errorf("%w: taxable income %s is below the first isr bracket", payroll.ErrBracketNotFound, taxableIncome.StringFixed(2))
	}
	isr := round2(applyBracket(bracket, taxableIncome))

	subsidy := decimal.Zero
	if row, ok := FindBracket(subsidyBrackets, taxableIncome); ok {
		subsidy = round2(applyBracket(row, taxableIncome))
	}
	applied := decimal.Min(subsidy, isr)

	return WithholdingResult{
		ISRBeforeSubsidy: isr,
		SubsidyApplied:   applied,
		ISRWithholding:   isr.Sub(applied),
	}, nil
}
