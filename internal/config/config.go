package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageLocal    = "local"
	StoragePostgres = "postgres"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Storage   StorageConfig
	Simulator SimulatorConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
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
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig selects where blobs live and where exports are archived
type StorageConfig struct {
	Type string
	// BlobPath is the directory of the local blob store
	BlobPath       string
	ExportBasePath string
	ExportBaseURL  string
}

// SimulatorConfig controls the automatic check-in simulator
type SimulatorConfig struct {
	Enabled      bool
	Interval     time.Duration
	WorkspaceIDs []string
}

// Load reads .env when present and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_analytics"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:           strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		BlobPath:       getEnv("BLOB_BASE_PATH", "./data"),
		ExportBasePath: getEnv("EXPORT_BASE_PATH", "./exports"),
		ExportBaseURL:  getEnv("EXPORT_BASE_URL", fmt.Sprintf("http://localhost:%d/exports", appPort)),
	}

	// Simulator configuration
	simEnabled, err := strconv.ParseBool(getEnv("SIMULATOR_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATOR_ENABLED: %w", err)
	}
	simInterval, err := time.ParseDuration(getEnv("SIMULATOR_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATOR_INTERVAL: %w", err)
	}

	config.Simulator = SimulatorConfig{
		Enabled:      simEnabled,
		Interval:     simInterval,
		WorkspaceIDs: getEnvSlice("SIMULATOR_WORKSPACES", []string{}),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Debug("Configuration loaded",
		"env", config.App.Env,
		"storage", config.Storage.Type,
		"simulator_enabled", config.Simulator.Enabled)

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Storage.Type {
	case StorageMemory, StorageLocal:
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORAGE_TYPE is postgres")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be one of: memory, local, postgres")
	}

	if c.Simulator.Interval <= 0 {
		return fmt.Errorf("SIMULATOR_INTERVAL must be positive")
	}
	if c.Simulator.Enabled && len(c.Simulator.WorkspaceIDs) == 0 {
		return fmt.Errorf("SIMULATOR_WORKSPACES is required when the simulator is enabled")
	}
	return nil
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

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
