package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the service
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevelRaw string `mapstructure:"LOG_LEVEL"`
	LogLevel    slog.Level

	Database DatabaseConfig
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	JWT        JWTConfig
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	DefaultAdmin DefaultAdminConfig

	CORSAllowedOrigins []string
	LoginRateLimit     int `mapstructure:"RATE_LIMIT_LOGIN"`

	Events EventsConfig

	// SeedData loads the sample catalog into an empty database outside production
	SeedData bool `mapstructure:"SEED_DATA"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	Host         string `mapstructure:"DB_HOST"`
	Port         string `mapstructure:"DB_PORT"`
	User         string `mapstructure:"DB_USER"`
	Password     string `mapstructure:"DB_PASSWORD"`
	Name         string `mapstructure:"DB_NAME"`
	SSLMode      string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret string        `mapstructure:"JWT_SECRET"`
	Expire time.Duration `mapstructure:"JWT_EXPIRE"`
}

type DefaultAdminConfig struct {
	Name     string `mapstructure:"ADMIN_NAME"`
	Email    string `mapstructure:"ADMIN_EMAIL"`
	Password string `mapstructure:"ADMIN_PASSWORD"`
}

type EventsConfig struct {
	KafkaBrokers []string
	Topic        string `mapstructure:"EVENTS_TOPIC"`
}

var keys = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL",
	"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"REDIS_URL", "CACHE_TTL",
	"JWT_SECRET", "JWT_EXPIRE", "BCRYPT_COST",
	"ADMIN_NAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_LOGIN",
	"KAFKA_BROKERS", "EVENTS_TOPIC",
	"SEED_DATA",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "edulearn")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("JWT_EXPIRE", "720h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("ADMIN_EMAIL", "admin@edulearn.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("RATE_LIMIT_LOGIN", 10)
	v.SetDefault("EVENTS_TOPIC", "learning.events")
	v.SetDefault("SEED_DATA", false)
}

// LoadConfig reads configuration from .env, app.env and the environment.
// Environment variables win over file values.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".")
}

// LoadConfigFrom is LoadConfig with an explicit directory for the env files
func LoadConfigFrom(path string) (*Config, error) {
	// .env is optional; real deployments inject variables directly
	_ = godotenv.Load(path + "/.env")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Database); err != nil {
		return nil, fmt.Errorf("unmarshal database config: %w", err)
	}
	if err := v.Unmarshal(&cfg.JWT); err != nil {
		return nil, fmt.Errorf("unmarshal jwt config: %w", err)
	}
	if err := v.Unmarshal(&cfg.DefaultAdmin); err != nil {
		return nil, fmt.Errorf("unmarshal admin config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events config: %w", err)
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.Events.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.LogLevel = parseLevel(cfg.LogLevelRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that have no safe default
func (c *Config) Validate() error {
	if c.Port == "" || c.Port == "0" {
		return fmt.Errorf("PORT must be set")
	}
	if c.IsProduction() && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.JWT.Expire <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// JWTSecret falls back to a fixed development secret outside production
func (c *Config) JWTSecret() string {
	if c.JWT.Secret == "" {
		return "edulearn-development-secret"
	}
	return c.JWT.Secret
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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
