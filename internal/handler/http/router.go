package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/nomina-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the app settings the router needs.
type RouterConfig struct {
	Env            string
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(tokenAuth *jwtauth.JWTAuth, cfg RouterConfig, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "nomina-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(middleware.AuthRequired(tokenAuth))

			r.Route("/payroll/periods/{periodID}", func(r chi.Router) {
				r.Get("/", payrollHandler.GetPeriod)
				r.Post("/calculate", payrollHandler.Calculate)
				r.Post("/calculate-bulk", payrollHandler.BulkCalculate)
				r.Get("/calculations", payrollHandler.ListCalculations)
				r.Get("/calculations/{employeeID}", payrollHandler.GetCalculation)

				// Manager or owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/approve", payrollHandler.Approve)
					r.Post("/pay", payrollHandler.Pay)
				})
			})
		})
	})
	return r
}
