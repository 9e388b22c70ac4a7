package payroll

import "context"

type PayrollService interface {
	// Calculation
	Calculate(ctx context.Context, req CalculateRequest) (PayrollCalculationResponse, error)
	BulkCalculate(ctx context.Context, req BulkCalculateRequest) (BulkCalculateResponse, error)
	GetCalculation(ctx context.Context, periodID, employeeID string) (PayrollCalculationResponse, error)
	ListCalculations(ctx context.Context, periodID string) (ListCalculationResponse, error)

	// Period lifecycle
	GetPeriod(ctx context.Context, periodID string) (PayrollPeriodResponse, error)
	Approve(ctx context.Context, periodID string) (PayrollPeriodResponse, error)
	ProcessPayment(ctx context.Context, periodID string) (PayrollPeriodResponse, error)
}
