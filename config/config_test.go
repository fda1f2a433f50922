package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 20, cfg.DB.MaxOpenConns)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.Session.InactivityTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Session.PaymentGrace)
	assert.True(t, cfg.UsesDevSecret())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/restaurant")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://menu.example.com")
	t.Setenv("SESSION_SWEEP_INTERVAL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, []string{"http://localhost:5173", "https://menu.example.com"}, cfg.CORS.Origins)
	assert.Equal(t, 15*time.Second, cfg.Session.SweepInterval)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("PORT: \"9090\"\nAMQP_EXCHANGE: kitchen.events\n"), 0o600))

	t.Setenv("APP_ENV", "test")
	t.Setenv("CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "kitchen.events", cfg.AMQPExchange)
}

func TestValidateProductionRequiresStrongSecret(t *testing.T) {
	cfg := &Config{
		Env:     EnvProduction,
		DB:      DBConfig{Driver: "postgres", URL: "postgres://db"},
		JWT:     JWTConfig{Secret: "short", TTL: time.Hour},
		CORS:    CORSConfig{Origins: []string{"https://menu.example.com"}},
		Session: SessionConfig{SweepInterval: time.Minute},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be at least 32 characters")

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Env:     EnvDevelopment,
		DB:      DBConfig{Driver: "oracle"},
		JWT:     JWTConfig{TTL: time.Hour},
		Session: SessionConfig{SweepInterval: time.Minute},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
