package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	devJWTSecret    = "dev-only-secret-change-me-0123456789abcdef"
	minSecretLength = 32
)

type Config struct {
	Env       string
	Port      string
	APIPrefix string
	LogLevel  string

	DB      DBConfig
	JWT     JWTConfig
	CORS    CORSConfig
	Session SessionConfig
	Rate    RateConfig

	AMQPURL      string
	AMQPExchange string
}

type DBConfig struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnTimeout     time.Duration
	Seed            bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type CORSConfig struct {
	Origins []string
}

type SessionConfig struct {
	SweepInterval     time.Duration
	InactivityTimeout time.Duration
	PaymentGrace      time.Duration
}

// RateConfig holds per-client request rates, in requests per second, and the burst
// allowed on top of each.
type RateConfig struct {
	APIRPS       float64
	APIBurst     int
	OrderRPS     float64
	OrderBurst   int
	AuthRPS      float64
	AuthBurst    int
	SessionRPS   float64
	SessionBurst int
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", "3001")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "restaurant.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "30s")
	v.SetDefault("DB_CONN_TIMEOUT", "2s")
	v.SetDefault("DB_SEED", true)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("JWT_ISSUER", "table-ordering")

	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("SESSION_SWEEP_INTERVAL", "60s")
	v.SetDefault("SESSION_INACTIVITY_TIMEOUT", "30m")
	v.SetDefault("SESSION_PAYMENT_GRACE", "10m")

	v.SetDefault("RATE_LIMIT_API_RPS", 20)
	v.SetDefault("RATE_LIMIT_API_BURST", 100)
	v.SetDefault("RATE_LIMIT_ORDER_RPS", 1)
	v.SetDefault("RATE_LIMIT_ORDER_BURST", 10)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 0.2)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)
	v.SetDefault("RATE_LIMIT_SESSION_RPS", 0.5)
	v.SetDefault("RATE_LIMIT_SESSION_BURST", 10)

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "restaurant.events")
}

// Load reads .env (when present), an optional YAML file named by CONFIG_FILE and
// the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s -> %w", file, err)
		}
	}

	cfg := &Config{
		Env:       strings.ToLower(v.GetString("APP_ENV")),
		Port:      v.GetString("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		DB: DBConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			ConnTimeout:     v.GetDuration("DB_CONN_TIMEOUT"),
			Seed:            v.GetBool("DB_SEED"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Session: SessionConfig{
			SweepInterval:     v.GetDuration("SESSION_SWEEP_INTERVAL"),
			InactivityTimeout: v.GetDuration("SESSION_INACTIVITY_TIMEOUT"),
			PaymentGrace:      v.GetDuration("SESSION_PAYMENT_GRACE"),
		},
		Rate: RateConfig{
			APIRPS:       v.GetFloat64("RATE_LIMIT_API_RPS"),
			APIBurst:     v.GetInt("RATE_LIMIT_API_BURST"),
			OrderRPS:     v.GetFloat64("RATE_LIMIT_ORDER_RPS"),
			OrderBurst:   v.GetInt("RATE_LIMIT_ORDER_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
			SessionRPS:   v.GetFloat64("RATE_LIMIT_SESSION_RPS"),
			SessionBurst: v.GetInt("RATE_LIMIT_SESSION_BURST"),
		},
		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that are unsafe in production and fills development
// fallbacks.
func (c *Config) Validate() error {
	var problems []string

	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		problems = append(problems, fmt.Sprintf("APP_ENV must be development, production or test, got %q", c.Env))
	}

	switch c.DB.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be sqlite, mysql or postgres, got %q", c.DB.Driver))
	}

	if c.IsProduction() {
		if c.DB.URL == "" {
			problems = append(problems, "DATABASE_URL is required")
		}
		if len(c.JWT.Secret) < minSecretLength {
			problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d characters", minSecretLength))
		}
		if len(c.CORS.Origins) == 0 {
			problems = append(problems, "CORS_ORIGINS is required")
		}
	} else if c.JWT.Secret == "" {
		c.JWT.Secret = devJWTSecret
	}

	if c.JWT.TTL <= 0 {
		problems = append(problems, "JWT_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		problems = append(problems, "SESSION_SWEEP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// UsesDevSecret reports whether the JWT secret is the built-in development value.
func (c *Config) UsesDevSecret() bool {
	return c.JWT.Secret == devJWTSecret
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
