package employee

import (
	"context"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActiveByPayFrequency(ctx context.Context, frequency PayFrequency) ([]Employee, error)
	UpdateSDI(ctx context.Context, id string, sdi decimal.Decimal) error
}
