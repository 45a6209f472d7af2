package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	AdminAPIKey           string `env:"ADMIN_API_KEY"`
	SessionWindowMinutes  int    `env:"SESSION_WINDOW_MINUTES" envDefault:"10"`
	CheckInRateLimitPerIP int    `env:"CHECKIN_RATE_LIMIT_PER_IP" envDefault:"30"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

// SessionWindow is the fixed duration after which a session stops
// accepting check-ins.
func (c *Config) SessionWindow() time.Duration {
	return time.Duration(c.SessionWindowMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.SessionWindowMinutes <= 0 {
		return fmt.Errorf("SESSION_WINDOW_MINUTES must be positive")
	}

	if isProduction {
		if err := validateSecret("ADMIN_API_KEY", c.AdminAPIKey); err != nil {
			return err
		}
		if c.CheckInRateLimitPerIP <= 0 {
			log.Warn().Msg("CHECKIN_RATE_LIMIT_PER_IP is disabled in production: public check-in endpoint is unthrottled")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -hex 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
