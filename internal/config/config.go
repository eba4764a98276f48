package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	JWT      JWTConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration for the admin surface
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// EngineConfig holds geofence engine policy knobs
type EngineConfig struct {
	// LocationAPIKey is the shared secret checked on POST /locations.
	LocationAPIKey string
	// RegistryRefresh is the upper bound on registry snapshot staleness.
	RegistryRefresh time.Duration
	// SyntheticEntryGap is subtracted from an orphan exit's timestamp to
	// fabricate the entry time of the synthetic session.
	SyntheticEntryGap time.Duration
	// CloseSessionsOnDelete closes outstanding sessions when a geofence
	// is logically deleted, with note "geofence_deactivated".
	CloseSessionsOnDelete bool
	// NotifyWebhookURL receives entry/exit notifications for geofences
	// with notify flags set. Empty means notifications only get logged.
	NotifyWebhookURL string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

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
		Name:     getEnv("DB_NAME", "geofence-engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Engine configuration
	refreshSeconds, err := strconv.Atoi(getEnv("REGISTRY_REFRESH_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_REFRESH_SECONDS: %w", err)
	}
	if refreshSeconds < 1 || refreshSeconds > 60 {
		return nil, fmt.Errorf("REGISTRY_REFRESH_SECONDS must be between 1 and 60, got %d", refreshSeconds)
	}

	gapMinutes, err := strconv.Atoi(getEnv("SYNTHETIC_ENTRY_GAP_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNTHETIC_ENTRY_GAP_MINUTES: %w", err)
	}
	if gapMinutes < 0 {
		return nil, fmt.Errorf("SYNTHETIC_ENTRY_GAP_MINUTES must not be negative, got %d", gapMinutes)
	}

	config.Engine = EngineConfig{
		LocationAPIKey:        getEnv("LOCATION_API_KEY", ""),
		RegistryRefresh:       time.Duration(refreshSeconds) * time.Second,
		SyntheticEntryGap:     time.Duration(gapMinutes) * time.Minute,
		CloseSessionsOnDelete: getEnv("CLOSE_SESSIONS_ON_DELETE", "false") == "true",
		NotifyWebhookURL:      getEnv("NOTIFY_WEBHOOK_URL", ""),
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
	if c.Engine.LocationAPIKey == "" {
		return fmt.Errorf("LOCATION_API_KEY is required")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
