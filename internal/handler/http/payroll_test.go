package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	handlerPeriodID   = "0192f000-0000-7000-8000-000000000007"
	handlerEmployeeID = "11111111-1111-4111-8111-111111111111"
)

// stubPayrollService records the requests it receives and returns whatever
// the test configured.
type stubPayrollService struct {
	err error

	calculateReq payroll.CalculateRequest
	bulkReq      payroll.BulkCalculateRequest
	bulkResp     payroll.BulkCalculateResponse
}

func (s *stubPayrollService) Calculate(_ context.Context, req payroll.CalculateRequest) (payroll.PayrollCalculationResponse, error) {
	s.calculateReq = req
	if s.err != nil {
		return payroll.PayrollCalculationResponse{}, s.err
	}
	return payroll.PayrollCalculationResponse{
		EmployeeID:      req.EmployeeID,
		PayrollPeriodID: req.PayrollPeriodID,
		TotalNetPay:     decimal.RequireFromString("11134.97"),
	}, nil
}

func (s *stubPayrollService) BulkCalculate(_ context.Context, req payroll.BulkCalculateRequest) (payroll.BulkCalculateResponse, error) {
	s.bulkReq = req
	if s.err != nil {
		return payroll.BulkCalculateResponse{}, s.err
	}
	return s.bulkResp, nil
}

func (s *stubPayrollService) GetCalculation(_ context.Context, periodID, employeeID string) (payroll.PayrollCalculationResponse, error) {
	if s.err != nil {
		return payroll.PayrollCalculationResponse{}, s.err
	}
	return payroll.PayrollCalculationResponse{EmployeeID: employeeID, PayrollPeriodID: periodID}, nil
}

func (s *stubPayrollService) ListCalculations(_ context.Context, _ string) (payroll.ListCalculationResponse, error) {
	if s.err != nil {
		return payroll.ListCalculationResponse{}, s.err
	}
	return payroll.ListCalculationResponse{PeriodCode: "2025-BIWEEKLY-07"}, nil
}

func (s *stubPayrollService) GetPeriod(_ context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if s.err != nil {
		return payroll.PayrollPeriodResponse{}, s.err
	}
	return payroll.PayrollPeriodResponse{ID: periodID, Status: string(payroll.PeriodStatusOpen)}, nil
}

func (s *stubPayrollService) Approve(_ context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if s.err != nil {
		return payroll.PayrollPeriodResponse{}, s.err
	}
	return payroll.PayrollPeriodResponse{ID: periodID, Status: string(payroll.PeriodStatusApproved)}, nil
}

func (s *stubPayrollService) ProcessPayment(_ context.Context, periodID string) (payroll.PayrollPeriodResponse, error) {
	if s.err != nil {
		return payroll.PayrollPeriodResponse{}, s.err
	}
	return payroll.PayrollPeriodResponse{ID: periodID, Status: string(payroll.PeriodStatusPaid)}, nil
}

type handlerFixture struct {
	server  http.Handler
	tokens  jwt.Service
	service *stubPayrollService
}

func newHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()

	tokens, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	svc := &stubPayrollService{}
	router := NewRouter(tokens.JWTAuth(), RouterConfig{
		Env:            "test",
		Version:        "test",
		LogLevel:       slog.LevelError,
		AllowedOrigins: []string{"http://localhost:3000"},
	}, NewPayrollHandler(svc))

	return handlerFixture{server: router, tokens: tokens, service: svc}
}

func (f handlerFixture) do(t *testing.T, method, path, role string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := f.tokens.GenerateAccessToken("user-1", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func periodPath(suffix string) string {
	return fmt.Sprintf("/api/v1/payroll/periods/%s%s", handlerPeriodID, suffix)
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodGet, periodPath("/"), "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestRouter_RejectsForeignSignature(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	other, err := jwt.NewJWTService("another-secret", "1h")
	require.NoError(t, err)
	token, _, err := other.GenerateAccessToken("user-1", "manager")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, periodPath("/"), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayrollHandler_GetPeriod_Success(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodGet, periodPath("/"), "employee", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, handlerPeriodID, data["id"])
	assert.Equal(t, "open", data["status"])
}

func TestPayrollHandler_Calculate_UsesPeriodFromPath(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodPost, periodPath("/calculate"), "employee", map[string]interface{}{
		"employee_id":       handlerEmployeeID,
		"calculate_sdi":     true,
		"payroll_period_id": "ignored",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, handlerPeriodID, f.service.calculateReq.PayrollPeriodID)
	assert.Equal(t, handlerEmployeeID, f.service.calculateReq.EmployeeID)
	assert.True(t, f.service.calculateReq.CalculateSDI)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "11134.97", data["total_net_pay"])
}

func TestPayrollHandler_Calculate_InvalidBody(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	token, _, err := f.tokens.GenerateAccessToken("user-1", "employee")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, periodPath("/calculate"), bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayrollHandler_BulkCalculate_PartialFailureMessage(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)
	f.service.bulkResp = payroll.BulkCalculateResponse{
		PeriodCode:      "2025-BIWEEKLY-07",
		TotalCalculated: 2,
		TotalSuccess:    1,
		TotalFailed:     1,
		PartialFailure:  true,
	}

	rec, resp := f.do(t, http.MethodPost, periodPath("/calculate-bulk"), "employee", map[string]interface{}{
		"calculate_all": true,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Payroll calculated with failures", resp.Message)
	assert.True(t, f.service.bulkReq.CalculateAll)
	assert.Equal(t, handlerPeriodID, f.service.bulkReq.PayrollPeriodID)
}

func TestPayrollHandler_BulkCalculate_EmptyBodyReachesService(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)
	f.service.err = validator.ValidationErrors{{Field: "employee_ids", Message: "is required when calculate_all is false"}}

	rec, resp := f.do(t, http.MethodPost, periodPath("/calculate-bulk"), "employee", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required when calculate_all is false", resp.Error.Details["employee_ids"])
}

func TestPayrollHandler_Approve_RequiresManager(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodPost, periodPath("/approve"), "employee", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestPayrollHandler_ApproveAndPay_AllowedRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role   string
		path   string
		status string
	}{
		{role: "manager", path: "/approve", status: "approved"},
		{role: "owner", path: "/approve", status: "approved"},
		{role: "manager", path: "/pay", status: "paid"},
		{role: "owner", path: "/pay", status: "paid"},
	}

	for _, tt := range tests {
		t.Run(tt.role+tt.path, func(t *testing.T) {
			t.Parallel()
			f := newHandlerFixture(t)

			rec, resp := f.do(t, http.MethodPost, periodPath(tt.path), tt.role, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			data := resp.Data.(map[string]interface{})
			assert.Equal(t, tt.status, data["status"])
		})
	}
}

func TestPayrollHandler_GetCalculation_PassesBothIDs(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodGet, periodPath("/calculations/"+handlerEmployeeID), "employee", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, handlerEmployeeID, data["employee_id"])
	assert.Equal(t, handlerPeriodID, data["payroll_period_id"])
}

func TestPayrollHandler_ListCalculations_Success(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodGet, periodPath("/calculations"), "employee", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "2025-BIWEEKLY-07", data["period_code"])
}

func TestPayrollHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "period not found", err: payroll.ErrPeriodNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "wrapped calculation not found", err: fmt.Errorf("lookup: %w", payroll.ErrCalculationNotFound), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "not calculable", err: payroll.ErrPeriodNotCalculable, status: http.StatusConflict, code: "CONFLICT"},
		{name: "stale status", err: payroll.ErrPeriodStatusChanged, status: http.StatusConflict, code: "CONFLICT"},
		{name: "inactive employee", err: payroll.ErrEmployeeInactive, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "missing tax table", err: payroll.ErrTaxTableNotFound, status: http.StatusInternalServerError, code: "CONFIG_ERROR"},
		{name: "unexpected", err: fmt.Errorf("connection reset"), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newHandlerFixture(t)
			f.service.err = tt.err

			rec, resp := f.do(t, http.MethodGet, periodPath("/"), "employee", nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
