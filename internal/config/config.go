package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server      ServerConfig      `mapstructure:",squash"`
	Database    DatabaseConfig    `mapstructure:",squash"`
	Redis       RedisConfig       `mapstructure:",squash"`
	Scheduler   SchedulerConfig   `mapstructure:",squash"`
	Logging     LoggingConfig     `mapstructure:",squash"`
	Installment InstallmentConfig `mapstructure:",squash"`
	Health      HealthConfig      `mapstructure:",squash"`
	Metrics     MetricsConfig     `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

type SchedulerConfig struct {
	FineCron   string `mapstructure:"SCHEDULER_FINE_CRON"`
	RefundCron string `mapstructure:"SCHEDULER_REFUND_CRON"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type InstallmentConfig struct {
	Timezone      string `mapstructure:"APP_TIMEZONE"`
	NoMaxAttempts int    `mapstructure:"NO_MAX_ATTEMPTS"`
}

type MetricsConfig struct {
	// Port of the scheduler's metrics listener; the API serves /metrics on its own port
	Port string `mapstructure:"METRICS_PORT"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "installments")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_TIMEZONE", "Asia/Shanghai")
	v.SetDefault("NO_MAX_ATTEMPTS", 10)
	v.SetDefault("SCHEDULER_FINE_CRON", "0 0 0 * * *")
	v.SetDefault("SCHEDULER_REFUND_CRON", "0 */10 * * * *")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
	v.SetDefault("METRICS_PORT", "9091")

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Installment.NoMaxAttempts <= 0 {
		return fmt.Errorf("NO_MAX_ATTEMPTS must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Installment.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE must be a valid IANA zone: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduler.FineCron); err != nil {
		return fmt.Errorf("SCHEDULER_FINE_CRON must be a valid cron expression: %w", err)
	}
	if _, err := parser.Parse(c.Scheduler.RefundCron); err != nil {
		return fmt.Errorf("SCHEDULER_REFUND_CRON must be a valid cron expression: %w", err)
	}

	if c.Redis.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be greater than 0")
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the timezone used for installment numbers and due dates
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Installment.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisAddr returns host:port of the Redis server
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
