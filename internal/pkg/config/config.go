package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS"`

	Store    StoreConfig
	Session  SessionConfig
	Auth     AuthConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	Recorder RecorderConfig
}

type StoreConfig struct {
	Path string `env:"DB_PATH, default=newsproof.db"`
}

type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL,            default=168h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME,    default=sid"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE,  default=true"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=10m"`
}

type AuthConfig struct {
	BcryptCost       int           `env:"BCRYPT_COST,        default=10"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type GatewayConfig struct {
	URL     string        `env:"GATEWAY_URL,     default=http://localhost:5001/analyze"`
	Timeout time.Duration `env:"GATEWAY_TIMEOUT, default=15s"`
	Retries int           `env:"GATEWAY_RETRIES, default=2"`
}

// RedisConfig selects the login throttle backend. An empty Addr keeps
// throttling in process.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RecorderConfig struct {
	Workers int `env:"RECORDER_WORKERS, default=4"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if strings.TrimSpace(c.Gateway.URL) == "" {
		errs = append(errs, errors.New("GATEWAY_URL must not be empty"))
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads and validates configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
