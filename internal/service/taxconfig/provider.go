package taxconfig

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
)

// CachedProvider serves tax tables from memory and refreshes them from a
// source. A reload that fails validation keeps the previous tables.
type CachedProvider struct {
	source payroll.TaxTableSource
	mu     sync.RWMutex
	tables map[payroll.TaxTableKey]payroll.TaxTable
}

func NewCachedProvider(source payroll.TaxTableSource) *CachedProvider {
	return &CachedProvider{
		source: source,
		tables: make(map[payroll.TaxTableKey]payroll.TaxTable),
	}
}

// Reload reads every table from the source, validates all of them and swaps
// the cache only if the whole set is valid.
func (p *CachedProvider) Reload(ctx context.Context) error {
	tables, err := p.source.LoadTaxTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tax tables: %w", err)
	}

	next := make(map[payroll.TaxTableKey]payroll.TaxTable, len(tables))
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tax table %d/%s: %w", t.FiscalYear, t.PeriodType, err)
		}
		if _, dup := next[t.Key()]; dup {
			return fmt.Errorf("%w: duplicate tax table %d/%s", payroll.ErrTaxTableInvalid, t.FiscalYear, t.PeriodType)
		}
		next[t.Key()] = t
	}

	p.mu.Lock()
	p.tables = next
	p.mu.Unlock()

	slog.Info("Tax tables loaded", "count", len(next))
	return nil
}

func (p *CachedProvider) GetTaxTable(_ context.Context, fiscalYear int, periodType employee.PayFrequency) (payroll.TaxTable, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	table, ok := p.tables[payroll.TaxTableKey{FiscalYear: fiscalYear, PeriodType: periodType}]
	if !ok {
		return payroll.TaxTable{}, fmt.Errorf("%w: fiscal year %d, %s", payroll.ErrTaxTableNotFound, fiscalYear, periodType)
	}
	return table, nil
}
