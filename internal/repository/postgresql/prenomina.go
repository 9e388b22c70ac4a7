package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type prenominaRepository struct {
	db *database.DB
}

func NewPrenominaRepository(db *database.DB) payroll.PrenominaRepository {
	return &prenominaRepository{db: db}
}

// GetByEmployeePeriod implements payroll.PrenominaRepository.
func (r *prenominaRepository) GetByEmployeePeriod(ctx context.Context, employeeID, periodID string) (payroll.PrenominaMetric, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, payroll_period_id, worked_days, regular_hours,
			   overtime_regular, overtime_double, overtime_triple,
			   absence_days, vacation_days, loan_deduction, advance_deduction, other_deduction,
			   bonus_amount, commission_amount
		FROM prenomina_metrics
		WHERE employee_id = $1 AND payroll_period_id = $2
	`

	var m payroll.PrenominaMetric
	err := q.QueryRow(ctx, query, employeeID, periodID).Scan(
		&m.EmployeeID, &m.PayrollPeriodID, &m.WorkedDays, &m.RegularHours,
		&m.OvertimeHours.Regular, &m.OvertimeHours.Double, &m.OvertimeHours.Triple,
		&m.AbsenceDays, &m.VacationDays, &m.LoanDeduction, &m.AdvanceDeduction, &m.OtherDeduction,
		&m.BonusAmount, &m.CommissionAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PrenominaMetric{}, payroll.ErrPrenominaNotFound
		}
		return payroll.PrenominaMetric{}, fmt.Errorf("failed to get prenomina: %w", err)
	}

	return m, nil
}
