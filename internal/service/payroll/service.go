package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/keymutex"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// Options tune the service. Zero values fall back to defaults.
type Options struct {
	WorkerPoolSize int
	BulkTimeout    time.Duration
	Overtime       OvertimePolicy
	Now            func() time.Time
}

const defaultWorkerPoolSize = 8

type PayrollServiceImpl struct {
	tx            payroll.Transactor
	periodRepo    payroll.PeriodRepository
	calcRepo      payroll.CalculationRepository
	prenominaRepo payroll.PrenominaRepository
	employeeRepo  employee.EmployeeRepository
	taxConfig     payroll.TaxConfigProvider
	calculator    *Calculator
	guard         *PeriodGuard
	opts          Options
}

func NewPayrollService(
	tx payroll.Transactor,
	periodRepo payroll.PeriodRepository,
	calcRepo payroll.CalculationRepository,
	prenominaRepo payroll.PrenominaRepository,
	employeeRepo employee.EmployeeRepository,
	taxConfig payroll.TaxConfigProvider,
	opts Options,
) payroll.PayrollService {
	if opts.WorkerPoolSize <= 0 {
		opts.WorkerPoolSize = defaultWorkerPoolSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PayrollServiceImpl{
		tx:            tx,
		periodRepo:    periodRepo,
		calcRepo:      calcRepo,
		prenominaRepo: prenominaRepo,
		employeeRepo:  employeeRepo,
		taxConfig:     taxConfig,
		calculator:    NewCalculator(opts.Overtime, opts.Now),
		guard:         NewPeriodGuard(periodRepo, keymutex.New(), opts.Now),
		opts:          opts,
	}
}

// actorFromContext returns the user_id claim of the verified token, if any.
func actorFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return nil
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}

func validatePeriodID(periodID string) error {
	if !validator.IsValidUUID(periodID) {
		return validator.ValidationErrors{{Field: "payroll_period_id", Message: "must be a valid UUID"}}
	}
	return nil
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculateRequest) (payroll.PayrollCalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	unlock, err := s.guard.Lock(ctx, req.PayrollPeriodID)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}
	defer unlock()

	period, err := s.loadCalculablePeriod(ctx, req.PayrollPeriodID)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}
	table, err := s.loadTaxTable(ctx, period)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	calc, err := s.calculateEmployee(ctx, period, table, req.EmployeeID, req.CalculateSDI)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	if _, err := s.guard.MarkCalculated(ctx, period); err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}

	return mapToCalculationResponse(calc), nil
}

func (s *PayrollServiceImpl) GetCalculation(ctx context.Context, periodID, employeeID string) (payroll.PayrollCalculationResponse, error) {
	if err := validatePeriodID(periodID); err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}
	if !validator.IsValidUUID(employeeID) {
		return payroll.PayrollCalculationResponse{}, validator.ValidationErrors{{Field: "employee_id", Message: "must be a valid UUID"}}
	}

	calc, err := s.calcRepo.GetByEmployeePeriod(ctx, employeeID, periodID)
	if err != nil {
		return payroll.PayrollCalculationResponse{}, err
	}
	return mapToCalculationResponse(calc), nil
}

func (s *PayrollServiceImpl) ListCalculations(ctx context.Context, periodID string) (payroll.ListCalculationResponse, error) {
	if err := validatePeriodID(periodID); err != nil {
		return payroll.ListCalculationResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.ListCalculationResponse{}, err
	}
	calcs, err := s.calcRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return payroll.ListCalculationResponse{}, err
	}

	return payroll.ListCalculationResponse{
		PeriodCode:   period.PeriodCode(),
		Calculations: mapToCalculationResponses(calcs),
	}, nil
}

// loadCalculablePeriod fetches the period and checks it still accepts
// calculations.
func (s *PayrollServiceImpl) loadCalculablePeriod(ctx context.Context, periodID string) (payroll.PayrollPeriod, error) {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	if err := EnsureCalculable(period); err != nil {
		return payroll.PayrollPeriod{}, err
	}
	return period, nil
}

func (s *PayrollServiceImpl) loadTaxTable(ctx context.Context, period payroll.PayrollPeriod) (payroll.TaxTable, error) {
	table, err := s.taxConfig.GetTaxTable(ctx, period.Year, period.Frequency)
	if err != nil {
		return payroll.TaxTable{}, fmt.Errorf("failed to load tax table for %s: %w", period.PeriodCode(), err)
	}
	return table, nil
}

// calculateEmployee prices one employee and stores the result. The upsert
// runs in a transaction that holds a shared lock on the period, so an
// approval cannot commit between the status check and the write.
func (s *PayrollServiceImpl) calculateEmployee(ctx context.Context, period payroll.PayrollPeriod, table payroll.TaxTable, employeeID string, refreshSDI bool) (payroll.PayrollCalculation, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayrollCalculation{}, fmt.Errorf("%w: employee %s: %w", payroll.ErrNotFound, employeeID, err)
		}
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
	}

	var prenomina *payroll.PrenominaMetric
	metric, err := s.prenominaRepo.GetByEmployeePeriod(ctx, employeeID, period.ID)
	switch {
	case err == nil:
		prenomina = &metric
	case !errors.Is(err, payroll.ErrPrenominaNotFound):
		return payroll.PayrollCalculation{}, fmt.Errorf("failed to get prenomina for employee %s: %w", employeeID, err)
	}

	calc, err := s.calculator.Calculate(CalculationInput{
		Employee:   emp,
		Period:     period,
		Prenomina:  prenomina,
		TaxTable:   table,
		RefreshSDI: refreshSDI,
	})
	if err != nil {
		return payroll.PayrollCalculation{}, err
	}

	var saved payroll.PayrollCalculation
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		status, err := s.periodRepo.GetStatusForShare(txCtx, period.ID)
		if err != nil {
			return err
		}
		if !status.AcceptsCalculations() {
			return fmt.Errorf("%w: period %s is %s", payroll.ErrPeriodNotCalculable, period.PeriodCode(), status)
		}

		saved, err = s.calcRepo.Upsert(txCtx, calc)
		if err != nil {
			return fmt.Errorf("failed to save payroll calculation for employee %s: %w", employeeID, err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollCalculation{}, err
	}

	if !calc.SDIUsed.Equal(emp.SDI) {
		if err := s.employeeRepo.UpdateSDI(ctx, emp.ID, calc.SDIUsed); err != nil {
			slog.Error("Failed to store refreshed SDI", "employee_id", emp.ID, "sdi", calc.SDIUsed.String(), "error", err)
		}
	}

	return saved, nil
}

// ========== PERIOD LIFECYCLE ==========

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if err := validatePeriodID(periodID); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	return mapToPeriodResponse(period), nil
}

// Approve moves a calculated period to approved. The period must hold at
// least one calculation.
func (s *PayrollServiceImpl) Approve(ctx context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if err := validatePeriodID(periodID); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	unlock, err := s.guard.Lock(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	defer unlock()

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	if period.Status != payroll.PeriodStatusCalculated {
		return payroll.PayrollPeriodResponse{}, fmt.Errorf("%w: period %s is %s, only calculated periods can be approved",
			payroll.ErrInvalidStatusTransition, period.PeriodCode(), period.Status)
	}

	count, err := s.calcRepo.CountByPeriod(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, fmt.Errorf("failed to count payroll calculations: %w", err)
	}
	if count == 0 {
		return payroll.PayrollPeriodResponse{}, fmt.Errorf("%w: period %s", payroll.ErrApproveWithoutCalculations, period.PeriodCode())
	}

	updated, err := s.advanceWithCalculations(ctx, period, payroll.PeriodStatusApproved, payroll.CalculationStatusApproved)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	slog.Info("Payroll period approved", "period_id", periodID, "period_code", updated.PeriodCode(), "calculations", count)
	return mapToPeriodResponse(updated), nil
}

// ProcessPayment moves an approved period to paid.
func (s *PayrollServiceImpl) ProcessPayment(ctx context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if err := validatePeriodID(periodID); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	unlock, err := s.guard.Lock(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	defer unlock()

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	if period.Status != payroll.PeriodStatusApproved {
		return payroll.PayrollPeriodResponse{}, fmt.Errorf("%w: period %s is %s, only approved periods can be paid",
			payroll.ErrInvalidStatusTransition, period.PeriodCode(), period.Status)
	}

	updated, err := s.advanceWithCalculations(ctx, period, payroll.PeriodStatusPaid, payroll.CalculationStatusPaid)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	slog.Info("Payroll period paid", "period_id", periodID, "period_code", updated.PeriodCode())
	return mapToPeriodResponse(updated), nil
}

// advanceWithCalculations moves the period and all of its calculation rows
// in one transaction.
func (s *PayrollServiceImpl) advanceWithCalculations(ctx context.Context, period payroll.PayrollPeriod, to payroll.PeriodStatus, calcStatus payroll.CalculationStatus) (payroll.PayrollPeriod, error) {
	actor := actorFromContext(ctx)

	var updated payroll.PayrollPeriod
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.guard.Transition(txCtx, period, to, actor)
		if err != nil {
			return err
		}
		if err := s.calcRepo.UpdateStatusByPeriod(txCtx, period.ID, calcStatus); err != nil {
			return fmt.Errorf("failed to update payroll calculation status: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	return updated, nil
}

// ========== MAPPERS ==========

func mapToCalculationResponse(c payroll.PayrollCalculation) payroll.PayrollCalculationResponse {
	return payroll.PayrollCalculationResponse{
		ID:                    c.ID,
		EmployeeID:            c.EmployeeID,
		PayrollPeriodID:       c.PayrollPeriodID,
		DailySalary:           c.DailySalary,
		SDIUsed:               c.SDIUsed,
		WorkedDays:            c.WorkedDays,
		RegularSalary:         c.RegularSalary,
		OvertimeRegular:       c.OvertimeRegular,
		OvertimeDouble:        c.OvertimeDouble,
		OvertimeTriple:        c.OvertimeTriple,
		VacationPremium:       c.VacationPremium,
		Aguinaldo:             c.Aguinaldo,
		OtherExtras:           c.OtherExtras,
		TotalGrossIncome:      c.TotalGrossIncome,
		TaxableIncome:         c.TaxableIncome,
		ISRBeforeSubsidy:      c.ISRBeforeSubsidy,
		SubsidyApplied:        c.SubsidyApplied,
		ISRWithholding:        c.ISRWithholding,
		IMSSEmployee:          c.IMSSEmployee,
		InfonavitEmployee:     c.InfonavitEmployee,
		LoanDeduction:         c.LoanDeduction,
		AdvanceDeduction:      c.AdvanceDeduction,
		OtherDeduction:        c.OtherDeduction,
		TotalDeductions:       c.TotalDeductions,
		DeductionShortfall:    c.DeductionShortfall,
		ShortfallDetail:       c.ShortfallDetail,
		EmployerContributions: c.EmployerContributions,
		TotalNetPay:           c.TotalNetPay,
		CalculationStatus:     string(c.CalculationStatus),
		CalculatedAt:          c.CalculatedAt,
	}
}

func mapToCalculationResponses(calcs []payroll.PayrollCalculation) []payroll.PayrollCalculationResponse {
	result := make([]payroll.PayrollCalculationResponse, 0, len(calcs))
	for _, c := range calcs {
		result = append(result, mapToCalculationResponse(c))
	}
	return result
}

func mapToPeriodResponse(p payroll.PayrollPeriod) payroll.PayrollPeriodResponse {
	return payroll.PayrollPeriodResponse{
		ID:           p.ID,
		PeriodCode:   p.PeriodCode(),
		Year:         p.Year,
		PeriodNumber: p.PeriodNumber,
		Frequency:    string(p.Frequency),
		StartDate:    p.StartDate.Format("2006-01-02"),
		EndDate:      p.EndDate.Format("2006-01-02"),
		PaymentDate:  p.PaymentDate.Format("2006-01-02"),
		Status:       string(p.Status),
		ApprovedAt:   p.ApprovedAt,
		ApprovedBy:   p.ApprovedBy,
		PaidAt:       p.PaidAt,
		PaidBy:       p.PaidBy,
	}
}
