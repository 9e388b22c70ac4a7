package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVacationDays(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		0: 12, 1: 12, 2: 14, 3: 16, 4: 18, 5: 20,
		6: 22, 10: 22, 11: 24, 15: 24, 16: 26, 21: 28,
	}
	for years, want := range cases {
		assert.Equal(t, want, VacationDays(years), "seniority %d", years)
	}
}

func TestSeniorityYears(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, SeniorityYears(date(2025, time.January, 1), date(2025, time.April, 15)))
	assert.Equal(t, 1, SeniorityYears(date(2024, time.April, 15), date(2025, time.April, 15)))
	assert.Equal(t, 0, SeniorityYears(date(2024, time.April, 16), date(2025, time.April, 15)))
	assert.Equal(t, 0, SeniorityYears(date(2020, time.February, 29), date(2021, time.February, 28)))
	assert.Equal(t, 1, SeniorityYears(date(2020, time.February, 29), date(2021, time.March, 1)))
}

func TestCalculateSDI_Success(t *testing.T) {
	t.Parallel()

	asOf := date(2025, time.April, 15)
	tests := []struct {
		name     string
		hireDate time.Time
		want     string
	}{
		{"first year", date(2025, time.January, 1), "839.45"},
		{"one year", date(2024, time.January, 1), "839.45"},
		{"three years", date(2022, time.January, 1), "841.64"},
		{"six years", date(2019, time.January, 1), "844.93"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sdi, err := CalculateSDI(d("800"), tt.hireDate, asOf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sdi.StringFixed(2))
		})
	}
}

func TestCalculateSDI_HireDateAfterAsOf(t *testing.T) {
	t.Parallel()

	_, err := CalculateSDI(d("800"), date(2025, time.May, 1), date(2025, time.April, 15))

	assert.ErrorIs(t, err, payroll.ErrHireDateAfterAsOf)
	assert.ErrorIs(t, err, payroll.ErrValidation)
}

func TestCalculateSDI_NonPositiveSalary(t *testing.T) {
	t.Parallel()

	_, err := CalculateSDI(d("0"), date(2024, time.January, 1), date(2025, time.April, 15))

	assert.ErrorIs(t, err, payroll.ErrInvalidDailySalary)
}

func TestCalculateSDI_NeverBelowDailySalary(t *testing.T) {
	t.Parallel()

	asOf := date(2025, time.April, 15)
	for years := 0; years <= 40; years++ {
		hire := asOf.AddDate(-years, 0, 0)
		sdi, err := CalculateSDI(d("278.80"), hire, asOf)
		require.NoError(t, err)
		assert.True(t, sdi.GreaterThan(d("278.80")), "seniority %d gave %s", years, sdi)
	}
}
