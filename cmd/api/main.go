package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/config"
	"github.com/cmlabs-hris/nomina-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/nomina-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/nomina-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/nomina-backend-go/internal/repository/taxfile"
	payrollService "github.com/cmlabs-hris/nomina-backend-go/internal/service/payroll"
	"github.com/cmlabs-hris/nomina-backend-go/internal/service/taxconfig"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx := context.Background()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("Database schema applied")
	}

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	calculationRepo := postgresql.NewCalculationRepository(db)
	prenominaRepo := postgresql.NewPrenominaRepository(db)

	taxSource, err := newTaxTableSource(ctx, cfg, db, transactor)
	if err != nil {
		return err
	}
	taxProvider := taxconfig.NewCachedProvider(taxSource)
	if err := taxProvider.Reload(ctx); err != nil {
		return fmt.Errorf("error loading tax tables: %w", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewTaxTableJobs(taxProvider, cfg.Tax.ReloadInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("error creating jwt service: %w", err)
	}

	payrollSvc := payrollService.NewPayrollService(
		transactor,
		periodRepo,
		calculationRepo,
		prenominaRepo,
		employeeRepo,
		taxProvider,
		payrollService.Options{
			WorkerPoolSize: cfg.Payroll.WorkerPoolSize,
			BulkTimeout:    cfg.Payroll.BulkTimeout,
			Overtime: payrollService.OvertimePolicy{
				DoubleWeeklyCapHours: cfg.Payroll.DoubleOvertimeWeeklyCap,
			},
		},
	)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(JWTService.JWTAuth(), appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		Version:        cfg.App.Version,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, payrollHandler)

	// Bulk runs may take up to the bulk timeout, so writes get that much room.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Payroll.BulkTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("Shutting down server...", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

// newTaxTableSource returns the configured tax table source. With the
// database source and seeding enabled, the YAML tables are upserted first.
func newTaxTableSource(ctx context.Context, cfg *config.Config, db *database.DB, tx payroll.Transactor) (payroll.TaxTableSource, error) {
	fileSource := taxfile.NewSource(cfg.Tax.FilePath)
	if cfg.Tax.Source == config.TaxSourceFile {
		slog.Info("Using tax tables from file", "path", cfg.Tax.FilePath)
		return fileSource, nil
	}

	repo := postgresql.NewTaxTableRepository(db)
	if cfg.Tax.SeedFromFile {
		tables, err := fileSource.LoadTaxTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("error reading tax tables to seed: %w", err)
		}
		err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, t := range tables {
				if err := t.Validate(); err != nil {
					return fmt.Errorf("tax table %d/%s: %w", t.FiscalYear, t.PeriodType, err)
				}
				if err := repo.SaveTaxTable(txCtx, t); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error seeding tax tables: %w", err)
		}
		slog.Info("Tax tables seeded from file", "path", cfg.Tax.FilePath, "count", len(tables))
	}

	slog.Info("Using tax tables from database")
	return repo, nil
}
