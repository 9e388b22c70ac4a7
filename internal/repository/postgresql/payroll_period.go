package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const periodColumns = `
	id, year, period_number, frequency, start_date, end_date, payment_date, status,
	approved_at, approved_by, paid_at, paid_by, created_at, updated_at
`

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepository{db: db}
}

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.Year, &p.PeriodNumber, &p.Frequency, &p.StartDate, &p.EndDate, &p.PaymentDate, &p.Status,
		&p.ApprovedAt, &p.ApprovedBy, &p.PaidAt, &p.PaidBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepository) GetByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// GetStatusForShare implements payroll.PeriodRepository. Outside a
// transaction the lock is released as soon as the statement ends.
func (r *periodRepository) GetStatusForShare(ctx context.Context, id string) (payroll.PeriodStatus, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT status FROM payroll_periods WHERE id = $1 FOR SHARE`

	var status payroll.PeriodStatus
	if err := q.QueryRow(ctx, query, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", payroll.ErrPeriodNotFound
		}
		return "", fmt.Errorf("failed to read payroll period status: %w", err)
	}

	return status, nil
}

// UpdateStatus implements payroll.PeriodRepository.
func (r *periodRepository) UpdateStatus(ctx context.Context, req payroll.UpdatePeriodStatusRequest) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	stamp := ""
	switch req.To {
	case payroll.PeriodStatusApproved:
		stamp = ", approved_at = $4, approved_by = $5"
	case payroll.PeriodStatusPaid:
		stamp = ", paid_at = $4, paid_by = $5"
	}

	args := []interface{}{req.ID, req.From, req.To}
	if stamp != "" {
		args = append(args, req.At, req.ActorID)
	}

	query := fmt.Sprintf(`
		UPDATE payroll_periods
		SET status = $3, updated_at = NOW()%s
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, stamp, periodColumns)

	p, err := scanPeriod(q.QueryRow(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to update payroll period status: %w", err)
	}

	// No row matched: either the period is gone or its status moved on.
	if _, getErr := r.GetByID(ctx, req.ID); getErr != nil {
		return payroll.PayrollPeriod{}, getErr
	}
	return payroll.PayrollPeriod{}, fmt.Errorf("%w: expected %s", payroll.ErrPeriodStatusChanged, req.From)
}
