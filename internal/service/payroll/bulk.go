package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// statusWriteTimeout bounds the final period status write, which runs even
// when the batch deadline has already passed.
const statusWriteTimeout = 10 * time.Second

// BulkCalculate prices every selected employee of a period. Per-employee
// failures are recorded in the result and never abort the batch.
func (s *PayrollServiceImpl) BulkCalculate(ctx context.Context, req payroll.BulkCalculateRequest) (payroll.BulkCalculateResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkCalculateResponse{}, err
	}

	if _, ok := ctx.Deadline(); !ok && s.opts.BulkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.BulkTimeout)
		defer cancel()
	}

	unlock, err := s.guard.Lock(ctx, req.PayrollPeriodID)
	if err != nil {
		return payroll.BulkCalculateResponse{}, err
	}
	defer unlock()

	// Period and tax table problems affect every employee, so they fail the
	// whole request instead of being repeated per item.
	period, err := s.loadCalculablePeriod(ctx, req.PayrollPeriodID)
	if err != nil {
		return payroll.BulkCalculateResponse{}, err
	}
	table, err := s.loadTaxTable(ctx, period)
	if err != nil {
		return payroll.BulkCalculateResponse{}, err
	}
	employeeIDs, err := s.selectEmployees(ctx, period, req)
	if err != nil {
		return payroll.BulkCalculateResponse{}, err
	}

	start := time.Now()
	results := s.runBatch(ctx, period, table, employeeIDs, req.CalculateSDI)
	resp := summarize(period, results)

	if resp.TotalSuccess > 0 {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
		defer cancel()

		updated, err := s.guard.MarkCalculated(writeCtx, period)
		if err != nil {
			return payroll.BulkCalculateResponse{}, fmt.Errorf("failed to mark period %s as calculated: %w", period.PeriodCode(), err)
		}
		period = updated
	}
	resp.PeriodStatus = string(period.Status)

	slog.Info("Bulk payroll calculation finished",
		"period_id", period.ID,
		"period_code", resp.PeriodCode,
		"total", resp.TotalCalculated,
		"success", resp.TotalSuccess,
		"failed", resp.TotalFailed,
		"duration", time.Since(start),
	)

	return resp, nil
}

// selectEmployees returns the ids to calculate in the order results are
// reported. An explicit list is kept in input order without duplicates.
func (s *PayrollServiceImpl) selectEmployees(ctx context.Context, period payroll.PayrollPeriod, req payroll.BulkCalculateRequest) ([]string, error) {
	if len(req.EmployeeIDs) > 0 {
		seen := make(map[string]bool, len(req.EmployeeIDs))
		ids := make([]string, 0, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		return ids, nil
	}

	employees, err := s.employeeRepo.ListActiveByPayFrequency(ctx, period.Frequency)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}
	return ids, nil
}

// runBatch fans the employees out to a bounded worker pool. Each worker
// writes only its own slot, so results keep input order.
func (s *PayrollServiceImpl) runBatch(ctx context.Context, period payroll.PayrollPeriod, table payroll.TaxTable, employeeIDs []string, refreshSDI bool) []payroll.EmployeeResult {
	results := make([]payroll.EmployeeResult, len(employeeIDs))

	var g errgroup.Group
	g.SetLimit(s.opts.WorkerPoolSize)

	for i, id := range employeeIDs {
		if err := ctx.Err(); err != nil {
			results[i] = payroll.NewEmployeeFailure(id, fmt.Errorf("not calculated before deadline: %w", err))
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = payroll.NewEmployeeFailure(id, fmt.Errorf("not calculated before deadline: %w", err))
				return nil
			}

			calc, err := s.calculateEmployee(ctx, period, table, id, refreshSDI)
			if err != nil {
				slog.Warn("Payroll calculation failed", "period_id", period.ID, "employee_id", id, "error", err)
				results[i] = payroll.NewEmployeeFailure(id, err)
				return nil
			}
			results[i] = payroll.NewEmployeeSuccess(calc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func summarize(period payroll.PayrollPeriod, results []payroll.EmployeeResult) payroll.BulkCalculateResponse {
	resp := payroll.BulkCalculateResponse{
		PeriodCode:      period.PeriodCode(),
		TotalCalculated: len(results),
		TotalGross:      decimal.Zero,
		TotalNet:        decimal.Zero,
		Results:         results,
	}

	for _, r := range results {
		if !r.Success {
			resp.TotalFailed++
			continue
		}
		resp.TotalSuccess++
		resp.TotalGross = resp.TotalGross.Add(*r.TotalGrossIncome)
		resp.TotalNet = resp.TotalNet.Add(*r.TotalNetPay)
	}
	resp.PartialFailure = resp.TotalFailed > 0

	return resp
}
