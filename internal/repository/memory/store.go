// Package memory provides in-memory repositories for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type calcKey struct {
	EmployeeID string
	PeriodID   string
}

// Store holds every payroll table in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	employees    map[string]employee.Employee
	periods      map[string]payroll.PayrollPeriod
	prenomina    map[calcKey]payroll.PrenominaMetric
	calculations map[calcKey]payroll.PayrollCalculation
}

func NewStore() *Store {
	return &Store{
		employees:    make(map[string]employee.Employee),
		periods:      make(map[string]payroll.PayrollPeriod),
		prenomina:    make(map[calcKey]payroll.PrenominaMetric),
		calculations: make(map[calcKey]payroll.PayrollCalculation),
	}
}

// ========== SEEDING ==========

func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) PutPeriod(p payroll.PayrollPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[p.ID] = p
}

func (s *Store) PutPrenomina(m payroll.PrenominaMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prenomina[calcKey{EmployeeID: m.EmployeeID, PeriodID: m.PayrollPeriodID}] = m
}

// CalculationCount returns the number of stored calculations across all periods.
func (s *Store) CalculationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calculations)
}

// ========== REPOSITORIES ==========

func (s *Store) Employees() employee.EmployeeRepository      { return &employeeRepository{s} }
func (s *Store) Periods() payroll.PeriodRepository           { return &periodRepository{s} }
func (s *Store) Prenomina() payroll.PrenominaRepository      { return &prenominaRepository{s} }
func (s *Store) Calculations() payroll.CalculationRepository { return &calculationRepository{s} }

// Transactor runs fn directly. The store has no rollback, so a failing fn
// leaves earlier writes in place.
func (s *Store) Transactor() payroll.Transactor { return transactor{} }

type transactor struct{}

func (transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========== EMPLOYEES ==========

type employeeRepository struct{ s *Store }

func (r *employeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) ListActiveByPayFrequency(_ context.Context, frequency employee.PayFrequency) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []employee.Employee
	for _, e := range r.s.employees {
		if e.IsActive() && e.PayFrequency == frequency {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EmployeeCode < result[j].EmployeeCode
	})
	return result, nil
}

func (r *employeeRepository) UpdateSDI(_ context.Context, id string, sdi decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.SDI = sdi
	r.s.employees[id] = e
	return nil
}

// ========== PERIODS ==========

type periodRepository struct{ s *Store }

func (r *periodRepository) GetByID(_ context.Context, id string) (payroll.PayrollPeriod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *periodRepository) GetStatusForShare(ctx context.Context, id string) (payroll.PeriodStatus, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Status, nil
}

func (r *periodRepository) UpdateStatus(_ context.Context, req payroll.UpdatePeriodStatusRequest) (payroll.PayrollPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.periods[req.ID]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	if p.Status != req.From {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodStatusChanged
	}

	at := req.At
	p.Status = req.To
	p.UpdatedAt = at
	switch req.To {
	case payroll.PeriodStatusApproved:
		p.ApprovedAt = &at
		p.ApprovedBy = req.ActorID
	case payroll.PeriodStatusPaid:
		p.PaidAt = &at
		p.PaidBy = req.ActorID
	}
	r.s.periods[req.ID] = p
	return p, nil
}

// ========== PRENOMINA ==========

type prenominaRepository struct{ s *Store }

func (r *prenominaRepository) GetByEmployeePeriod(_ context.Context, employeeID, periodID string) (payroll.PrenominaMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.prenomina[calcKey{EmployeeID: employeeID, PeriodID: periodID}]
	if !ok {
		return payroll.PrenominaMetric{}, payroll.ErrPrenominaNotFound
	}
	return m, nil
}

// ========== CALCULATIONS ==========

type calculationRepository struct{ s *Store }

// Upsert keeps one row per employee and period; the id and creation time of
// an existing row survive recalculation.
func (r *calculationRepository) Upsert(_ context.Context, calc payroll.PayrollCalculation) (payroll.PayrollCalculation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := calcKey{EmployeeID: calc.EmployeeID, PeriodID: calc.PayrollPeriodID}
	if existing, ok := r.s.calculations[k]; ok {
		calc.ID = existing.ID
		calc.CreatedAt = existing.CreatedAt
	} else {
		calc.ID = uuid.NewString()
		calc.CreatedAt = calc.CalculatedAt
	}
	calc.UpdatedAt = calc.CalculatedAt
	r.s.calculations[k] = calc
	return calc, nil
}

func (r *calculationRepository) GetByEmployeePeriod(_ context.Context, employeeID, periodID string) (payroll.PayrollCalculation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.calculations[calcKey{EmployeeID: employeeID, PeriodID: periodID}]
	if !ok {
		return payroll.PayrollCalculation{}, payroll.ErrCalculationNotFound
	}
	return c, nil
}

func (r *calculationRepository) ListByPeriod(_ context.Context, periodID string) ([]payroll.PayrollCalculation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []payroll.PayrollCalculation
	for k, c := range r.s.calculations {
		if k.PeriodID == periodID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

func (r *calculationRepository) CountByPeriod(_ context.Context, periodID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for k := range r.s.calculations {
		if k.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

func (r *calculationRepository) UpdateStatusByPeriod(_ context.Context, periodID string, status payroll.CalculationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, c := range r.s.calculations {
		if k.PeriodID == periodID {
			c.CalculationStatus = status
			r.s.calculations[k] = c
		}
	}
	return nil
}
