package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/nomina-backend-go/internal/pkg/validator"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	TaxSourceFile     = "file"
	TaxSourceDatabase = "database"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
	Tax      TaxConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	Version        string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds calculation engine settings
type PayrollConfig struct {
	WorkerPoolSize          int
	// BulkTimeout bounds a bulk run when the request carries no deadline.
	BulkTimeout             time.Duration
	DoubleOvertimeWeeklyCap decimal.Decimal
}

// TaxConfig selects where tax tables come from and how often they reload
type TaxConfig struct {
	Source         string
	FilePath       string
	ReloadInterval time.Duration
	// SeedFromFile upserts the YAML tables into the database at startup when
	// Source is database.
	SeedFromFile bool
}

// Load reads configuration from the environment. A .env file is optional.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	dbMaxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := getEnvBool("DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "nomina"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(dbMaxConns),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll configuration
	workers, err := getEnvInt("PAYROLL_WORKER_POOL_SIZE", 8)
	if err != nil {
		return nil, err
	}
	bulkTimeout, err := getEnvDuration("PAYROLL_BULK_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	doubleCap, err := decimal.NewFromString(getEnv("PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP: %w", err)
	}

	config.Payroll = PayrollConfig{
		WorkerPoolSize:          workers,
		BulkTimeout:             bulkTimeout,
		DoubleOvertimeWeeklyCap: doubleCap,
	}

	// Tax table configuration
	reloadInterval, err := getEnvDuration("TAX_TABLE_RELOAD_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvBool("TAX_TABLE_SEED_FROM_FILE", false)
	if err != nil {
		return nil, err
	}

	config.Tax = TaxConfig{
		Source:         getEnv("TAX_TABLE_SOURCE", TaxSourceFile),
		FilePath:       getEnv("TAX_TABLE_FILE", "config/tax_tables.yaml"),
		ReloadInterval: reloadInterval,
		SeedFromFile:   seed,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is not a duration: %w", err)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.Payroll.WorkerPoolSize < 1 {
		return fmt.Errorf("PAYROLL_WORKER_POOL_SIZE must be at least 1")
	}
	if int(c.Database.MaxConns) < c.Payroll.WorkerPoolSize {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be at least PAYROLL_WORKER_POOL_SIZE (%d)", c.Database.MaxConns, c.Payroll.WorkerPoolSize)
	}
	if c.Payroll.DoubleOvertimeWeeklyCap.IsNegative() {
		return fmt.Errorf("PAYROLL_DOUBLE_OVERTIME_WEEKLY_CAP must not be negative")
	}
	if !validator.IsInSlice(c.Tax.Source, []string{TaxSourceFile, TaxSourceDatabase}) {
		return fmt.Errorf("TAX_TABLE_SOURCE must be %q or %q", TaxSourceFile, TaxSourceDatabase)
	}
	if (c.Tax.Source == TaxSourceFile || c.Tax.SeedFromFile) && c.Tax.FilePath == "" {
		return fmt.Errorf("TAX_TABLE_FILE is required")
	}
	if !validator.IsInSlice(strings.ToLower(c.App.LogLevel), []string{"debug", "info", "warn", "error"}) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
