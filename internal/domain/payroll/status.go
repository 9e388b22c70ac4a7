package payroll

// PeriodStatus enum. Status only moves forward.
type PeriodStatus string

const (
	PeriodStatusOpen       PeriodStatus = "open"
	PeriodStatusCalculated PeriodStatus = "calculated"
	PeriodStatusApproved   PeriodStatus = "approved"
	PeriodStatusPaid       PeriodStatus = "paid"
)

var nextPeriodStatus = map[PeriodStatus]PeriodStatus{
	PeriodStatusOpen:       PeriodStatusCalculated,
	PeriodStatusCalculated: PeriodStatusApproved,
	PeriodStatusApproved:   PeriodStatusPaid,
}

func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusOpen, PeriodStatusCalculated, PeriodStatusApproved, PeriodStatusPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is the immediate successor of s.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	successor, ok := nextPeriodStatus[s]
	return ok && successor == next
}

// AcceptsCalculations reports whether calculations may be written or replaced.
func (s PeriodStatus) AcceptsCalculations() bool {
	return s == PeriodStatusOpen || s == PeriodStatusCalculated
}

func (s PeriodStatus) IsTerminal() bool {
	return s == PeriodStatusPaid
}
