package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
)

// TaxTables is a TaxTableSource holding tables in memory. Tables are not
// validated here; the provider that loads them does that.
type TaxTables struct {
	mu     sync.RWMutex
	tables []payroll.TaxTable
}

func NewTaxTables(tables ...payroll.TaxTable) *TaxTables {
	return &TaxTables{tables: tables}
}

func (t *TaxTables) Put(table payroll.TaxTable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tables = append(t.tables, table)
}

func (t *TaxTables) LoadTaxTables(_ context.Context) ([]payroll.TaxTable, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]payroll.TaxTable, len(t.tables))
	copy(result, t.tables)
	return result, nil
}
