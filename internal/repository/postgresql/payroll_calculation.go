package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const calculationColumns = `
	id, employee_id, payroll_period_id, daily_salary, sdi_used, worked_days,
	regular_salary, overtime_regular, overtime_double, overtime_triple,
	vacation_premium, aguinaldo, other_extras, total_gross_income, taxable_income,
	isr_before_subsidy, subsidy_applied, isr_withholding, imss_employee, infonavit_employee,
	loan_deduction, advance_deduction, other_deduction, total_deductions,
	deduction_shortfall, shortfall_detail, employer_contributions,
	total_net_pay, calculation_status, calculated_at, created_at, updated_at
`

type calculationRepository struct {
	db *database.DB
}

func NewCalculationRepository(db *database.DB) payroll.CalculationRepository {
	return &calculationRepository{db: db}
}

func scanCalculation(row pgx.Row) (payroll.PayrollCalculation, error) {
	var (
		c             payroll.PayrollCalculation
		shortfallJSON []byte
		employerJSON  []byte
	)
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.PayrollPeriodID, &c.DailySalary, &c.SDIUsed, &c.WorkedDays,
		&c.RegularSalary, &c.OvertimeRegular, &c.OvertimeDouble, &c.OvertimeTriple,
		&c.VacationPremium, &c.Aguinaldo, &c.OtherExtras, &c.TotalGrossIncome, &c.TaxableIncome,
		&c.ISRBeforeSubsidy, &c.SubsidyApplied, &c.ISRWithholding, &c.IMSSEmployee, &c.InfonavitEmployee,
		&c.LoanDeduction, &c.AdvanceDeduction, &c.OtherDeduction, &c.TotalDeductions,
		&c.DeductionShortfall, &shortfallJSON, &employerJSON,
		&c.TotalNetPay, &c.CalculationStatus, &c.CalculatedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollCalculation{}, err
	}

	c.ShortfallDetail = map[string]decimal.Decimal{}
	if len(shortfallJSON) > 0 {
		if err := json.Unmarshal(shortfallJSON, &c.ShortfallDetail); err != nil {
			return payroll.PayrollCalculation{}, fmt.Errorf("failed to decode shortfall detail: %w", err)
		}
	}
	if len(employerJSON) > 0 {
		if err := json.Unmarshal(employerJSON, &c.EmployerContributions); err != nil {
			return payroll.PayrollCalculation{}, fmt.Errorf("failed to decode employer contributions: %w", err)
		}
	}

	return c, nil
}

// Upsert implements payroll.CalculationRepository. A recalculation replaces
// every amount but keeps the row id and created_at.
func (r *calculationRepository) Upsert(ctx context.Context, calc payroll.PayrollCalculation) (payroll.PayrollCalculation, error) {
	q := GetQuerier(ctx, r.db)

	shortfall := calc.ShortfallDetail
	if shortfall == nil {
		shortfall = map[string]decimal.Decimal{}
	}
	shortfallJSON, err := json.Marshal(shortfall)
	if err != nil {
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to encode shortfall detail: %w", err)
	}
	employerJSON, err := json.Marshal(calc.EmployerContributions)
	if err != nil {
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to encode employer contributions: %w", err)
	}

	query := `
		INSERT INTO payroll_calculations (
			employee_id, payroll_period_id, daily_salary, sdi_used, worked_days,
			regular_salary, overtime_regular, overtime_double, overtime_triple,
			vacation_premium, aguinaldo, other_extras, total_gross_income, taxable_income,
			isr_before_subsidy, subsidy_applied, isr_withholding, imss_employee, infonavit_employee,
			loan_deduction, advance_deduction, other_deduction, total_deductions,
			deduction_shortfall, shortfall_detail, employer_contributions,
			total_net_pay, calculation_status, calculated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		ON CONFLICT (employee_id, payroll_period_id) DO UPDATE SET
			daily_salary = EXCLUDED.daily_salary,
			sdi_used = EXCLUDED.sdi_used,
			worked_days = EXCLUDED.worked_days,
			regular_salary = EXCLUDED.regular_salary,
			overtime_regular = EXCLUDED.overtime_regular,
			overtime_double = EXCLUDED.overtime_double,
			overtime_triple = EXCLUDED.overtime_triple,
			vacation_premium = EXCLUDED.vacation_premium,
			aguinaldo = EXCLUDED.aguinaldo,
			other_extras = EXCLUDED.other_extras,
			total_gross_income = EXCLUDED.total_gross_income,
			taxable_income = EXCLUDED.taxable_income,
			isr_before_subsidy = EXCLUDED.isr_before_subsidy,
			subsidy_applied = EXCLUDED.subsidy_applied,
			isr_withholding = EXCLUDED.isr_withholding,
			imss_employee = EXCLUDED.imss_employee,
			infonavit_employee = EXCLUDED.infonavit_employee,
			loan_deduction = EXCLUDED.loan_deduction,
			advance_deduction = EXCLUDED.advance_deduction,
			other_deduction = EXCLUDED.other_deduction,
			total_deductions = EXCLUDED.total_deductions,
			deduction_shortfall = EXCLUDED.deduction_shortfall,
			shortfall_detail = EXCLUDED.shortfall_detail,
			employer_contributions = EXCLUDED.employer_contributions,
			total_net_pay = EXCLUDED.total_net_pay,
			calculation_status = EXCLUDED.calculation_status,
			calculated_at = EXCLUDED.calculated_at,
			updated_at = NOW()
		RETURNING ` + calculationColumns

	saved, err := scanCalculation(q.QueryRow(ctx, query,
		calc.EmployeeID, calc.PayrollPeriodID, calc.DailySalary, calc.SDIUsed, calc.WorkedDays,
		calc.RegularSalary, calc.OvertimeRegular, calc.OvertimeDouble, calc.OvertimeTriple,
		calc.VacationPremium, calc.Aguinaldo, calc.OtherExtras, calc.TotalGrossIncome, calc.TaxableIncome,
		calc.ISRBeforeSubsidy, calc.SubsidyApplied, calc.ISRWithholding, calc.IMSSEmployee, calc.InfonavitEmployee,
		calc.LoanDeduction, calc.AdvanceDeduction, calc.OtherDeduction, calc.TotalDeductions,
		calc.DeductionShortfall, shortfallJSON, employerJSON,
		calc.TotalNetPay, calc.CalculationStatus, calc.CalculatedAt,
	))
	if err != nil {
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to upsert payroll calculation: %w", err)
	}

	return saved, nil
}

// GetByEmployeePeriod implements payroll.CalculationRepository.
func (r *calculationRepository) GetByEmployeePeriod(ctx context.Context, employeeID, periodID string) (payroll.PayrollCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + calculationColumns + `
		FROM payroll_calculations
		WHERE employee_id = $1 AND payroll_period_id = $2
	`

	c, err := scanCalculation(q.QueryRow(ctx, query, employeeID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollCalculation{}, payroll.ErrCalculationNotFound
		}
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to get payroll calculation: %w", err)
	}

	return c, nil
}

// ListByPeriod implements payroll.CalculationRepository.
func (r *calculationRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.PayrollCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + calculationColumns + `
		FROM payroll_calculations
		WHERE payroll_period_id = $1
		ORDER BY (SELECT e.employee_code FROM employees e WHERE e.id = payroll_calculations.employee_id)
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll calculations: %w", err)
	}
	defer rows.Close()

	var calculations []payroll.PayrollCalculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll calculation: %w", err)
		}
		calculations = append(calculations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll calculations: %w", err)
	}

	return calculations, nil
}

// CountByPeriod implements payroll.CalculationRepository.
func (r *calculationRepository) CountByPeriod(ctx context.Context, periodID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_calculations WHERE payroll_period_id = $1`, periodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payroll calculations: %w", err)
	}

	return count, nil
}

// UpdateStatusByPeriod implements payroll.CalculationRepository.
func (r *calculationRepository) UpdateStatusByPeriod(ctx context.Context, periodID string, status payroll.CalculationStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_calculations
		SET calculation_status = $1, updated_at = NOW()
		WHERE payroll_period_id = $2
	`

	if _, err := q.Exec(ctx, query, status, periodID); err != nil {
		return fmt.Errorf("failed to update payroll calculation status: %w", err)
	}

	return nil
}
