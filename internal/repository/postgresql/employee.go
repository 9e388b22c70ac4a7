package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const employeeColumns = `
	id, employee_code, full_name, collar_type, daily_salary, sdi, hire_date, pay_frequency,
	infonavit_credit, infonavit_deduction_type, infonavit_deduction_value,
	is_sindicalizado, employment_status, created_at, updated_at
`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.CollarType, &emp.DailySalary, &emp.SDI,
		&emp.HireDate, &emp.PayFrequency, &emp.InfonavitCredit, &emp.InfonavitDeductionType,
		&emp.InfonavitDeductionValue, &emp.IsSindicalizado, &emp.EmploymentStatus,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, fmt.Errorf("employee with id %s: %w", id, employee.ErrEmployeeNotFound)
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	return emp, nil
}

// ListActiveByPayFrequency implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveByPayFrequency(ctx context.Context, frequency employee.PayFrequency) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE pay_frequency = $1 AND employment_status = $2
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, frequency, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees paid %s: %w", frequency, err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// UpdateSDI implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateSDI(ctx context.Context, id string, sdi decimal.Decimal) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET sdi = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := q.Exec(ctx, query, sdi, id)
	if err != nil {
		return fmt.Errorf("failed to update sdi for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee with id %s: %w", id, employee.ErrEmployeeNotFound)
	}

	return nil
}
