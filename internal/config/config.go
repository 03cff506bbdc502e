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

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Cron       CronConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
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
	RunMigrations  bool
}

// AttendanceConfig holds the organizational attendance policy. It can be overridden
// by a YAML file named in ATTENDANCE_POLICY_FILE.
type AttendanceConfig struct {
	TimeZone           string          `yaml:"time_zone"`
	Office             geo.Coordinates `yaml:"office"`
	OfficeRadiusMeters float64         `yaml:"office_radius_meters"`
	GracePeriod        time.Duration   `yaml:"grace_period"`
	DefaultWorkStart   string          `yaml:"default_work_start"`
	AutoCheckoutAt     string          `yaml:"auto_checkout_at"`
	OneSessionPerDay   bool            `yaml:"one_session_per_day"`
	StaleSweepInterval time.Duration   `yaml:"stale_sweep_interval"`

	// Resolved by Validate
	Location         *time.Location     `yaml:"-"`
	WorkStart        timeutil.LocalTime `yaml:"-"`
	AutoCheckoutTime timeutil.LocalTime `yaml:"-"`
}

type CronConfig struct {
	Secret    string
	Scheduler bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
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
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RunMigrations:  getEnvBool("RUN_MIGRATIONS", true),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy
	config.Attendance = AttendanceConfig{
		TimeZone: getEnv("ATTENDANCE_TIME_ZONE", timeutil.DefaultZone),
		Office: geo.Coordinates{
			Lat: getEnvFloat("ATTENDANCE_OFFICE_LAT", 6.5244),
			Lng: getEnvFloat("ATTENDANCE_OFFICE_LNG", 3.3792),
		},
		OfficeRadiusMeters: getEnvFloat("ATTENDANCE_OFFICE_RADIUS_METERS", 200),
		GracePeriod:        getEnvDuration("ATTENDANCE_GRACE_PERIOD", 90*time.Minute),
		DefaultWorkStart:   getEnv("ATTENDANCE_DEFAULT_WORK_START", "09:00"),
		AutoCheckoutAt:     getEnv("ATTENDANCE_AUTO_CHECKOUT_AT", "18:00"),
		OneSessionPerDay:   getEnvBool("ATTENDANCE_ONE_SESSION_PER_DAY", false),
		StaleSweepInterval: getEnvDuration("ATTENDANCE_STALE_SWEEP_INTERVAL", time.Hour),
	}

	if path := getEnv("ATTENDANCE_POLICY_FILE", ""); path != "" {
		if err := loadPolicyFile(path, &config.Attendance); err != nil {
			return nil, err
		}
	}

	// Cron configuration
	config.Cron = CronConfig{
		Secret:    getEnv("CRON_SECRET", ""),
		Scheduler: getEnvBool("CRON_SCHEDULER_ENABLED", true),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadPolicyFile overlays the YAML policy onto cfg. ${VAR} references are expanded
// from the environment before parsing.
func loadPolicyFile(path string, cfg *AttendanceConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading attendance policy file: %w", err)
	}

	content := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return fmt.Errorf("error parsing attendance policy file: %w", err)
	}

	slog.Info("Attendance policy loaded", "path", path)
	return nil
}

// Validate validates the configuration and resolves derived attendance values
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.App.Env == "production" && c.Cron.Secret == "" {
		return fmt.Errorf("CRON_SECRET is required in production")
	}

	return c.Attendance.Validate()
}

func (a *AttendanceConfig) Validate() error {
	loc, err := timeutil.LoadZone(a.TimeZone)
	if err != nil {
		return fmt.Errorf("ATTENDANCE_TIME_ZONE: %w", err)
	}
	a.Location = loc

	if err := a.Office.Validate(); err != nil {
		return fmt.Errorf("office location: %w", err)
	}
	if a.OfficeRadiusMeters <= 0 {
		return fmt.Errorf("ATTENDANCE_OFFICE_RADIUS_METERS must be positive")
	}
	if a.GracePeriod < 0 {
		return fmt.Errorf("ATTENDANCE_GRACE_PERIOD must not be negative")
	}

	workStart, err := timeutil.ParseLocalTime(a.DefaultWorkStart)
	if err != nil {
		return fmt.Errorf("ATTENDANCE_DEFAULT_WORK_START: %w", err)
	}
	a.WorkStart = workStart
	if workStart.SinceMidnight()+a.GracePeriod >= 24*time.Hour {
		return fmt.Errorf("ATTENDANCE_DEFAULT_WORK_START plus ATTENDANCE_GRACE_PERIOD must end before midnight")
	}

	autoCheckout, err := timeutil.ParseLocalTime(a.AutoCheckoutAt)
	if err != nil {
		return fmt.Errorf("ATTENDANCE_AUTO_CHECKOUT_AT: %w", err)
	}
	a.AutoCheckoutTime = autoCheckout

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
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

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
