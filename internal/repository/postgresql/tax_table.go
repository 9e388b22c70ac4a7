package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
)

type TaxTableRepository struct {
	db *database.DB
}

// NewTaxTableRepository returns a tax table source backed by the
// tax_tables table. Each row stores one table as a JSON payload.
func NewTaxTableRepository(db *database.DB) *TaxTableRepository {
	return &TaxTableRepository{db: db}
}

// LoadTaxTables implements payroll.TaxTableSource.
func (r *TaxTableRepository) LoadTaxTables(ctx context.Context) ([]payroll.TaxTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT fiscal_year, period_type, payload
		FROM tax_tables
		ORDER BY fiscal_year, period_type
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax tables: %w", err)
	}
	defer rows.Close()

	var tables []payroll.TaxTable
	for rows.Next() {
		var (
			table   payroll.TaxTable
			key     payroll.TaxTableKey
			payload []byte
		)
		if err := rows.Scan(&key.FiscalYear, &key.PeriodType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan tax table: %w", err)
		}
		if err := json.Unmarshal(payload, &table); err != nil {
			return nil, fmt.Errorf("%w: %d %s: %v", payroll.ErrTaxTableInvalid, key.FiscalYear, key.PeriodType, err)
		}
		// the row key wins over whatever the payload repeats
		table.FiscalYear = key.FiscalYear
		table.PeriodType = key.PeriodType
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax tables: %w", err)
	}

	return tables, nil
}

// SaveTaxTable stores or replaces one table version.
func (r *TaxTableRepository) SaveTaxTable(ctx context.Context, table payroll.TaxTable) error {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode tax table: %w", err)
	}

	query := `
		INSERT INTO tax_tables (fiscal_year, period_type, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (fiscal_year, period_type) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, table.FiscalYear, table.PeriodType, payload); err != nil {
		return fmt.Errorf("failed to save tax table %d %s: %w", table.FiscalYear, table.PeriodType, err)
	}

	return nil
}
