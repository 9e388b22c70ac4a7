package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the payroll tables when they do not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply payroll schema: %w", err)
	}
	return nil
}
