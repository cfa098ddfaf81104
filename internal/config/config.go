package config

import (
	"fmt"
	"time"

	"github.com/segyhp/circulation-engine/internal/retention"
	customError "github.com/segyhp/circulation-engine/pkg/errors"
	"github.com/segyhp/circulation-engine/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the circulation engine
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Retention RetentionConfig
	Scheduler SchedulerConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RetentionConfig struct {
	Min                time.Duration
	Max                time.Duration
	DefaultKeepHistory bool
	PageSize           int
}

type SchedulerConfig struct {
	AnonymizationSpec string
	FeeAssessmentSpec string
	Timezone          string
}

type HealthConfig struct {
	Timeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PATRON_CACHE_TTL", "1h")
	v.SetDefault("RETENTION_MIN", "90d")
	v.SetDefault("RETENTION_MAX", "180d")
	v.SetDefault("DEFAULT_KEEP_HISTORY", true)
	v.SetDefault("BATCH_PAGE_SIZE", 100)
	v.SetDefault("ANONYMIZATION_CRON", "0 0 2 * * *")
	v.SetDefault("FEE_ASSESSMENT_CRON", "0 0 0 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config, err := fromViper(v)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	minRetention, err := parseRetention(v, "RETENTION_MIN")
	if err != nil {
		return nil, err
	}
	maxRetention, err := parseRetention(v, "RETENTION_MAX")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(v.GetString("PATRON_CACHE_TTL"))
	if err != nil {
		return nil, customError.WrapInvalidConfiguration("PATRON_CACHE_TTL must be a valid duration")
	}
	healthTimeout, err := time.ParseDuration(v.GetString("HEALTH_CHECK_TIMEOUT"))
	if err != nil {
		return nil, customError.WrapInvalidConfiguration("HEALTH_CHECK_TIMEOUT must be a valid duration")
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: cacheTTL,
		},
		Retention: RetentionConfig{
			Min:                minRetention,
			Max:                maxRetention,
			DefaultKeepHistory: v.GetBool("DEFAULT_KEEP_HISTORY"),
			PageSize:           v.GetInt("BATCH_PAGE_SIZE"),
		},
		Scheduler: SchedulerConfig{
			AnonymizationSpec: v.GetString("ANONYMIZATION_CRON"),
			FeeAssessmentSpec: v.GetString("FEE_ASSESSMENT_CRON"),
			Timezone:          v.GetString("SCHEDULER_TIMEZONE"),
		},
		Health: HealthConfig{
			Timeout: healthTimeout,
		},
	}, nil
}

func parseRetention(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, customError.WrapInvalidConfiguration(key + " is required")
	}
	d, err := utils.ParseDays(raw)
	if err != nil {
		return 0, customError.WrapInvalidConfiguration(fmt.Sprintf("%s must be a number of days or a duration: %v", key, err))
	}
	return d, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return customError.WrapInvalidConfiguration("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return customError.WrapInvalidConfiguration("DATABASE_URL is required")
	}

	if err := c.RetentionPolicy().Validate(); err != nil {
		return err
	}

	if c.Retention.PageSize <= 0 {
		return customError.WrapInvalidConfiguration("BATCH_PAGE_SIZE must be greater than 0")
	}

	if _, err := c.Location(); err != nil {
		return customError.WrapInvalidConfiguration(fmt.Sprintf("SCHEDULER_TIMEZONE is not a known time zone: %v", err))
	}

	if c.Health.Timeout <= 0 {
		return customError.WrapInvalidConfiguration("HEALTH_CHECK_TIMEOUT must be greater than 0")
	}

	return nil
}

// RetentionPolicy returns the configured retention floor and ceiling
func (c *Config) RetentionPolicy() retention.Policy {
	return retention.Policy{
		MinRetention: c.Retention.Min,
		MaxRetention: c.Retention.Max,
	}
}

// Location returns the scheduler time zone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Timezone)
}

// Addr returns the operational listener address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// RedisAddr returns the redis host:port pair
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}
