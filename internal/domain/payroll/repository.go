package payroll

import (
	"context"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
)

// PeriodRepository persists payroll periods. Period creation belongs to the
// period-management module; payroll only reads and moves the status forward.
type PeriodRepository interface {
	GetByID(ctx context.Context, id string) (PayrollPeriod, error)
	// GetStatusForShare reads the status and, inside a transaction, holds a
	// shared lock on the period until commit so no status change can
	// interleave with the calculation being written.
	GetStatusForShare(ctx context.Context, id string) (PeriodStatus, error)
	// UpdateStatus moves the period from `from` to `to` only if its stored
	// status still equals `from`. Returns ErrPeriodStatusChanged otherwise.
	UpdateStatus(ctx context.Context, req UpdatePeriodStatusRequest) (PayrollPeriod, error)
}

// CalculationRepository persists one PayrollCalculation per employee and period.
type CalculationRepository interface {
	Upsert(ctx context.Context, calc PayrollCalculation) (PayrollCalculation, error)
	GetByEmployeePeriod(ctx context.Context, employeeID, periodID string) (PayrollCalculation, error)
	ListByPeriod(ctx context.Context, periodID string) ([]PayrollCalculation, error)
	CountByPeriod(ctx context.Context, periodID string) (int, error)
	UpdateStatusByPeriod(ctx context.Context, periodID string, status CalculationStatus) error
}

// PrenominaRepository reads the aggregates produced by the attendance module.
type PrenominaRepository interface {
	GetByEmployeePeriod(ctx context.Context, employeeID, periodID string) (PrenominaMetric, error)
}

// TaxConfigProvider supplies validated tax tables.
type TaxConfigProvider interface {
	GetTaxTable(ctx context.Context, fiscalYear int, periodType employee.PayFrequency) (TaxTable, error)
}

// Transactor runs fn inside one storage transaction. Repositories called
// with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaxTableSource loads every published tax table from a backing store.
type TaxTableSource interface {
	LoadTaxTables(ctx context.Context) ([]TaxTable, error)
}
