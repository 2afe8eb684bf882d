package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Loans    LoanConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// LoanConfig holds the tunable loan rules. Defaults match the library
// policy: 3 active loans per borrower, 14-day default duration.
type LoanConfig struct {
	MaxActiveLoans  int
	DefaultLoanDays int
	MinLoanDays     int
	MaxLoanDays     int
	DueSoonDays     int
	GraceDays       int
	LockWait        time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		Loans:    loadLoanConfig(),
	}

	if err := config.Loans.validate(); err != nil {
		return nil, err
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "biblioteca"),
	}
}

// loadLoanConfig loads loan rule config
func loadLoanConfig() LoanConfig {
	lockWaitSecs, _ := strconv.Atoi(getEnv("LOAN_LOCK_WAIT_SECONDS", "5"))

	return LoanConfig{
		MaxActiveLoans:  getEnvInt("LOAN_MAX_ACTIVE", 3),
		DefaultLoanDays: getEnvInt("LOAN_DEFAULT_DAYS", 14),
		MinLoanDays:     getEnvInt("LOAN_MIN_DAYS", 1),
		MaxLoanDays:     getEnvInt("LOAN_MAX_DAYS", 30),
		DueSoonDays:     getEnvInt("LOAN_DUE_SOON_DAYS", 2),
		GraceDays:       getEnvInt("LOAN_GRACE_DAYS", 3),
		LockWait:        time.Duration(lockWaitSecs) * time.Second,
	}
}

func (l LoanConfig) validate() error {
	if l.MaxActiveLoans < 1 {
		return fmt.Errorf("LOAN_MAX_ACTIVE must be at least 1, got %d", l.MaxActiveLoans)
	}
	if l.MinLoanDays < 1 || l.MaxLoanDays < l.MinLoanDays {
		return fmt.Errorf("invalid loan duration bounds [%d, %d]", l.MinLoanDays, l.MaxLoanDays)
	}
	if l.DefaultLoanDays < l.MinLoanDays || l.DefaultLoanDays > l.MaxLoanDays {
		return fmt.Errorf("LOAN_DEFAULT_DAYS %d outside bounds [%d, %d]",
			l.DefaultLoanDays, l.MinLoanDays, l.MaxLoanDays)
	}
	return nil
}

// PolicyConfig maps the loan config to the policy engine config
func (c *Config) PolicyConfig() policy.Config {
	return policy.Config{
		MaxActiveLoans:  c.Loans.MaxActiveLoans,
		DefaultLoanDays: c.Loans.DefaultLoanDays,
		MinLoanDays:     c.Loans.MinLoanDays,
		MaxLoanDays:     c.Loans.MaxLoanDays,
		DueSoonDays:     c.Loans.DueSoonDays,
		GraceDays:       c.Loans.GraceDays,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://biblioteca.example.org"
	}
	return origins
}
