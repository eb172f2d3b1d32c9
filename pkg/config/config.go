package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the risk engine.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Engine defaults
	Engine EngineConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration for the report store.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// EngineConfig holds default parameters for risk computations.
// Callers may override per request; these are the service defaults.
type EngineConfig struct {
	Confidences []float64 // e.g. 0.95, 0.99
	NumPaths    int       // Monte Carlo PFE paths
	NumSims     int       // Monte Carlo VaR simulations
	Seed        int64     // 0 = derive from entropy
}

// SchedulerConfig holds the cron spec for the daily risk snapshot.
type SchedulerConfig struct {
	Enabled      bool
	SnapshotSpec string // standard 5-field cron expression
	LookbackObs  int    // number of return observations pulled per snapshot
}

// Load reads configuration from environment variables, consulting a .env
// file when one is present next to the working directory or binary.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Engine: EngineConfig{
			Confidences: getEnvAsFloats("RISK_CONFIDENCES", []float64{0.95, 0.99}),
			NumPaths:    getEnvAsInt("RISK_NUM_PATHS", 10000),
			NumSims:     getEnvAsInt("RISK_NUM_SIMS", 10000),
			Seed:        int64(getEnvAsInt("RISK_SEED", 0)),
		},

		Scheduler: SchedulerConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", false),
			SnapshotSpec: getEnv("SCHEDULER_SNAPSHOT_SPEC", "30 18 * * MON-FRI"),
			LookbackObs:  getEnvAsInt("SCHEDULER_LOOKBACK_OBS", 250),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep inside a computation.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	for _, conf := range c.Engine.Confidences {
		if conf <= 0.0 || conf >= 1.0 {
			return fmt.Errorf("RISK_CONFIDENCES values must be in (0, 1), got %v", conf)
		}
	}
	if c.Engine.NumPaths <= 0 {
		return fmt.Errorf("RISK_NUM_PATHS must be > 0")
	}
	if c.Engine.NumSims <= 0 {
		return fmt.Errorf("RISK_NUM_SIMS must be > 0")
	}
	return nil
}

// loadEnvFile tries to load .env from a few conventional locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsFloats parses a comma-separated list of floats.
func getEnvAsFloats(key string, defaultValue []float64) []float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return defaultValue
		}
		values = append(values, v)
	}
	return values
}
