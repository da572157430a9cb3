package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	RedisURL      string
	RabbitMQURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string

	MinTransactionAmount decimal.Decimal
	MaxTransactionAmount decimal.Decimal

	AdminRegistrationSecret string
	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                    fallback(os.Getenv("PORT"), "8000"),
		StorageDriver:           strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:                strings.TrimSpace(os.Getenv("REDIS_URL")),
		RabbitMQURL:             strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:               fallback(os.Getenv("JWT_ISSUER"), "rta-portal"),
		CORSOrigins:             parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "http://localhost:5173,http://localhost:3000")),
		LogLevel:                fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:               fallback(os.Getenv("LOG_FORMAT"), "console"),
		AdminRegistrationSecret: strings.TrimSpace(os.Getenv("ADMIN_REGISTRATION_SECRET")),
		LoginRateLimit:          positiveInt(os.Getenv("LOGIN_RATE_LIMIT"), 10),
	}
	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 30)) * time.Minute

	var err error
	if cfg.MinTransactionAmount, err = parseAmount("MIN_TRANSACTION_AMOUNT", "100"); err != nil {
		return Config{}, err
	}
	if cfg.MaxTransactionAmount, err = parseAmount("MAX_TRANSACTION_AMOUNT", "1000000"); err != nil {
		return Config{}, err
	}
	if cfg.MinTransactionAmount.GreaterThan(cfg.MaxTransactionAmount) {
		return Config{}, errors.New("MIN_TRANSACTION_AMOUNT must not exceed MAX_TRANSACTION_AMOUNT")
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.RedisURL == "" {
		return Config{}, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func parseAmount(key, def string) (decimal.Decimal, error) {
	raw := fallback(os.Getenv(key), def)
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s must be a positive number, got %q", key, raw)
	}
	return amount, nil
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
