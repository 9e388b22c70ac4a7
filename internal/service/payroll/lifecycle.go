package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/keymutex"
)

// PeriodGuard owns every status change of a payroll period. Changes for the
// same period are serialised in-process and then written with a
// compare-and-set, so a transition computed from a stale read is rejected.
type PeriodGuard struct {
	periods payroll.PeriodRepository
	locks   *keymutex.KeyMutex
	now     func() time.Time
}

func NewPeriodGuard(periods payroll.PeriodRepository, locks *keymutex.KeyMutex, now func() time.Time) *PeriodGuard {
	if now == nil {
		now = time.Now
	}
	return &PeriodGuard{periods: periods, locks: locks, now: now}
}

// Lock takes the exclusive in-process lock for a period.
func (g *PeriodGuard) Lock(ctx context.Context, periodID string) (func(), error) {
	unlock, err := g.locks.Lock(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payroll period %s: %w", periodID, err)
	}
	return unlock, nil
}

// EnsureCalculable rejects calculations against approved or paid periods.
func EnsureCalculable(period payroll.PayrollPeriod) error {
	if !period.Status.AcceptsCalculations() {
		return fmt.Errorf("%w: period %s is %s", payroll.ErrPeriodNotCalculable, period.PeriodCode(), period.Status)
	}
	return nil
}

// Transition moves the period to the immediate successor status `to`.
func (g *PeriodGuard) Transition(ctx context.Context, period payroll.PayrollPeriod, to payroll.PeriodStatus, actorID *string) (payroll.PayrollPeriod, error) {
	if !period.Status.CanTransitionTo(to) {
		return payroll.PayrollPeriod{}, fmt.Errorf("%w: period %s is %s, cannot move to %s",
			payroll.ErrInvalidStatusTransition, period.PeriodCode(), period.Status, to)
	}

	updated, err := g.periods.UpdateStatus(ctx, payroll.UpdatePeriodStatusRequest{
		ID:      period.ID,
		From:    period.Status,
		To:      to,
		ActorID: actorID,
		At:      g.now(),
	})
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	return updated, nil
}

// MarkCalculated advances open -> calculated. A period that is already
// calculated is returned unchanged.
func (g *PeriodGuard) MarkCalculated(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	if period.Status == payroll.PeriodStatusCalculated {
		return period, nil
	}

	updated, err := g.Transition(ctx, period, payroll.PeriodStatusCalculated, nil)
	if errors.Is(err, payroll.ErrPeriodStatusChanged) {
		// another writer may have advanced it already
		current, getErr := g.periods.GetByID(ctx, period.ID)
		if getErr == nil && current.Status == payroll.PeriodStatusCalculated {
			return current, nil
		}
	}
	return updated, err
}
