package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the keys so that ambient variables do not leak into the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5174"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Events.KafkaBrokers)
	assert.Equal(t, "learning.events", cfg.Events.Topic)
	assert.Equal(t, "admin@edulearn.com", cfg.DefaultAdmin.Email)
	assert.Equal(t, "edulearn-development-secret", cfg.JWTSecret())
	assert.Contains(t, cfg.Database.DSN(), "dbname=edulearn")
	assert.False(t, cfg.SeedData)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	appEnv := "PORT=8080\nLOG_LEVEL=debug\nDB_NAME=from_file\nJWT_EXPIRE=1h\nKAFKA_BROKERS=k1:9092, k2:9092\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(appEnv), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/learning")
	t.Setenv("SEED_DATA", "true")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port, "environment wins over file")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "from_file", cfg.Database.Name)
	assert.Equal(t, time.Hour, cfg.JWT.Expire)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "postgres://u:p@db:5432/learning", cfg.Database.DSN())
	assert.True(t, cfg.SeedData)
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ADMIN_EMAIL")
	t.Cleanup(func() { os.Unsetenv("ADMIN_EMAIL") })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_EMAIL=root@example.com\n"), 0o600))

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", cfg.DefaultAdmin.Email)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfigFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := Config{Port: "5000", JWT: JWTConfig{Expire: time.Hour}, BcryptCost: 10}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"missing port":    func(c *Config) { c.Port = "" },
		"zero expiry":     func(c *Config) { c.JWT.Expire = 0 },
		"bcrypt too low":  func(c *Config) { c.BcryptCost = 3 },
		"bcrypt too high": func(c *Config) { c.BcryptCost = 32 },
		"prod w/o secret": func(c *Config) { c.Environment = "production" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	prod := base
	prod.Environment = "production"
	prod.JWT.Secret = "s3cret"
	assert.NoError(t, prod.Validate())
	assert.Equal(t, "s3cret", prod.JWTSecret())
}
