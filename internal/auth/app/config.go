package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`        // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"` // Log level (debug, info, warn, error)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	SigningKey   string `env:"AUTH_SIGNING_KEY,required"` // HMAC secret for token signing
	BaseURL      string `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080"`

	AccessTTL  time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"168h"`
	ConfirmTTL time.Duration `env:"AUTH_CONFIRM_TTL" envDefault:"1h"`
	ResetTTL   time.Duration `env:"AUTH_RESET_TTL" envDefault:"1h"`

	SweepInterval    time.Duration `env:"AUTH_SWEEP_INTERVAL" envDefault:"30m"`
	SweepGracePeriod time.Duration `env:"AUTH_SWEEP_GRACE_PERIOD" envDefault:"1h"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
