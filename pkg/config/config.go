package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig selects and tunes the gorm dialector.
type DBConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the sqlite path or a libpq keyword/value string.
func (c *DBConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type ServerConfig struct {
	Port string
	Env  string
}

type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

type LogConfig struct {
	Level string
}

// CacheConfig sizes the in-memory principal and dashboard caches.
type CacheConfig struct {
	PrincipalSize int
	PrincipalTTL  time.Duration
	DashboardSize int
	DashboardTTL  time.Duration
}

// SchedulerConfig holds the housekeeping cron specs and horizons.
type SchedulerConfig struct {
	Enabled               bool
	ListingTTLDays        int
	GaugeRefreshSpec      string
	ListingExpirySpec     string
	SalaryResetSpec       string
	ServiceDueHorizonDays int
}

// SeedConfig holds the credentials of the built-in SystemAdmin and ITSupport accounts.
type SeedConfig struct {
	AdminEmail      string
	AdminUsername   string
	AdminPassword   string
	SupportEmail    string
	SupportUsername string
	SupportPassword string
}

type Config struct {
	DB        DBConfig
	Server    ServerConfig
	JWT       JWTConfig
	Log       LogConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Seed      SeedConfig

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		EnvFileLoaded: loaded,
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "agrocore"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "agrocore.db"),
			MaxIdleConns:    parseEnv("DB_MAX_IDLE_CONNS", 10, strconv.Atoi),
			MaxOpenConns:    parseEnv("DB_MAX_OPEN_CONNS", 100, strconv.Atoi),
			ConnMaxLifetime: parseEnv("DB_CONN_MAX_LIFETIME", time.Hour, time.ParseDuration),
			LogLevel:        parseEnv("DB_LOG_LEVEL", logger.Warn, parseGormLevel),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "agrocoresecretkey"),
			ExpirationHours: parseEnv("JWT_EXPIRATION_HOURS", 24, strconv.Atoi),
		},
		Log: LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Cache: CacheConfig{
			PrincipalSize: parseEnv("PRINCIPAL_CACHE_SIZE", 1024, strconv.Atoi),
			PrincipalTTL:  parseEnv("PRINCIPAL_CACHE_TTL", 30*time.Second, time.ParseDuration),
			DashboardSize: parseEnv("DASHBOARD_CACHE_SIZE", 256, strconv.Atoi),
			DashboardTTL:  parseEnv("DASHBOARD_CACHE_TTL", 15*time.Second, time.ParseDuration),
		},
		Scheduler: SchedulerConfig{
			Enabled:               parseEnv("SCHEDULER_ENABLED", true, strconv.ParseBool),
			ListingTTLDays:        parseEnv("MARKETPLACE_LISTING_TTL_DAYS", 90, strconv.Atoi),
			GaugeRefreshSpec:      getEnv("SCHEDULE_GAUGE_REFRESH", "@every 5m"),
			ListingExpirySpec:     getEnv("SCHEDULE_LISTING_EXPIRY", "@daily"),
			SalaryResetSpec:       getEnv("SCHEDULE_SALARY_RESET", "0 0 1 * *"),
			ServiceDueHorizonDays: parseEnv("SERVICE_DUE_HORIZON_DAYS", 14, strconv.Atoi),
		},
		Seed: SeedConfig{
			AdminEmail:      getEnv("SEED_ADMIN_EMAIL", "admin@gmail.com"),
			AdminUsername:   getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "Admin123!"),
			SupportEmail:    getEnv("SEED_SUPPORT_EMAIL", "it@gmail.com"),
			SupportUsername: getEnv("SEED_SUPPORT_USERNAME", "it_support"),
			SupportPassword: getEnv("SEED_SUPPORT_PASSWORD", "It123!"),
		},
	}

	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	return cfg, nil
}

// LogConfig returns the fields attached to every log line.
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", "agrocore"),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// parseEnv falls back when the variable is unset or does not parse.
func parseEnv[T any](key string, fallback T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseGormLevel(s string) (logger.LogLevel, error) {
	switch s {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown gorm log level %q", s)
}
