package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll view of an employee record. It is owned by the
// HR module; payroll only reads it and refreshes the stored SDI.
type Employee struct {
	ID                      string
	EmployeeCode            string
	FullName                string
	CollarType              CollarType
	DailySalary             decimal.Decimal
	SDI                     decimal.Decimal
	HireDate                time.Time
	PayFrequency            PayFrequency
	InfonavitCredit         string
	InfonavitDeductionType  InfonavitDeductionType
	InfonavitDeductionValue decimal.Decimal
	IsSindicalizado         bool
	EmploymentStatus        EmploymentStatus
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// HasInfonavitCredit reports whether a housing credit is registered.
func (e Employee) HasInfonavitCredit() bool {
	return e.InfonavitCredit != ""
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

type CollarType string

const (
	CollarTypeWhite CollarType = "white"
	CollarTypeBlue  CollarType = "blue"
)

type PayFrequency string

const (
	PayFrequencyWeekly   PayFrequency = "weekly"
	PayFrequencyBiweekly PayFrequency = "biweekly"
	PayFrequencyMonthly  PayFrequency = "monthly"
)

func (f PayFrequency) IsValid() bool {
	switch f {
	case PayFrequencyWeekly, PayFrequencyBiweekly, PayFrequencyMonthly:
		return true
	}
	return false
}

type InfonavitDeductionType string

const (
	InfonavitDeductionFixedAmount InfonavitDeductionType = "fixed_amount"
	InfonavitDeductionPercentage  InfonavitDeductionType = "percentage"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusOnLeave    EmploymentStatus = "on_leave"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)
