package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs access tokens; ConfirmationSecret keys the HMAC
	// behind confirmation codes. Keeping them separate means rotating one
	// credential class does not invalidate the other.
	JWTSecret          string        `env:"JWT_SECRET"`
	ConfirmationSecret string        `env:"CONFIRMATION_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL, default=24h"`

	ScoreMin int `env:"SCORE_MIN, default=1"`
	ScoreMax int `env:"SCORE_MAX, default=10"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=reviewdeck"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	// Addr empty selects the log transport instead of a relay.
	Addr string `env:"SMTP_ADDR"`
	From string `env:"SMTP_FROM, default=noreply@reviewdeck.local"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" || cfg.ConfirmationSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET and CONFIRMATION_SECRET are required")
	}
	if cfg.ScoreMin >= cfg.ScoreMax {
		return nil, fmt.Errorf("config: SCORE_MIN must be below SCORE_MAX")
	}
	return &cfg, nil
}
