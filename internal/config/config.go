package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Timeclock TimeclockConfig
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
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// TimeclockConfig holds timeclock policy knobs.
type TimeclockConfig struct {
	// MaxAccuracyMeters is the worst GPS accuracy accepted for any action or heartbeat.
	MaxAccuracyMeters float64
	// StandardLunchMinutes is the lunch duration above which an excessive_lunch alert fires.
	StandardLunchMinutes int
	// MissingLunchShiftHours is the shift length at which a lunch becomes mandatory.
	MissingLunchShiftHours float64
	// GeofenceStrikes is the number of consecutive outside-geofence heartbeats
	// before the server auto-clocks the shift out.
	GeofenceStrikes int
	// StaleShiftHours is how long a shift may stay open before the sweeper closes it.
	StaleShiftHours int
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

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
		Name:     getEnv("DB_NAME", "apprentice_ops"),
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

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Timeclock policy configuration
	maxAccuracy, err := strconv.ParseFloat(getEnv("TIMECLOCK_MAX_ACCURACY_M", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_MAX_ACCURACY_M: %w", err)
	}
	lunchMinutes, err := strconv.Atoi(getEnv("TIMECLOCK_STANDARD_LUNCH_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_STANDARD_LUNCH_MINUTES: %w", err)
	}
	missingLunchHours, err := strconv.ParseFloat(getEnv("TIMECLOCK_MISSING_LUNCH_SHIFT_HOURS", "6"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_MISSING_LUNCH_SHIFT_HOURS: %w", err)
	}
	geofenceStrikes, err := strconv.Atoi(getEnv("TIMECLOCK_GEOFENCE_STRIKES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_GEOFENCE_STRIKES: %w", err)
	}
	staleShiftHours, err := strconv.Atoi(getEnv("TIMECLOCK_STALE_SHIFT_HOURS", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMECLOCK_STALE_SHIFT_HOURS: %w", err)
	}

	config.Timeclock = TimeclockConfig{
		MaxAccuracyMeters:      maxAccuracy,
		StandardLunchMinutes:   lunchMinutes,
		MissingLunchShiftHours: missingLunchHours,
		GeofenceStrikes:        geofenceStrikes,
		StaleShiftHours:        staleShiftHours,
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
	if c.Timeclock.GeofenceStrikes < 1 {
		return fmt.Errorf("TIMECLOCK_GEOFENCE_STRIKES must be at least 1")
	}
	if c.Timeclock.MaxAccuracyMeters <= 0 {
		return fmt.Errorf("TIMECLOCK_MAX_ACCURACY_M must be positive")
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
