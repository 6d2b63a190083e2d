package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the wish server settings, read from WISH_* variables.
type Server struct {
	HTTPAddr   string        `env:"WISH_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr   string        `env:"WISH_GRPC_ADDR" envDefault:":8081"`
	CatalogDir string        `env:"WISH_CATALOG_DIR"` // empty: bundled catalog, no hot reload
	DBPath     string        `env:"WISH_DB_PATH" envDefault:"data/wishes.db"`
	RateLimit  float64       `env:"WISH_RATE_LIMIT" envDefault:"50"` // pull requests per second
	RateBurst  int           `env:"WISH_RATE_BURST" envDefault:"100"`
	Seed       *uint64       `env:"WISH_SEED"` // fixed seed for every new session, for replays
	Reload     time.Duration `env:"WISH_RELOAD_DEBOUNCE" envDefault:"200ms"`
	LogLevel   slog.Level    `env:"WISH_LOG_LEVEL" envDefault:"INFO"`
	MaxTrials  int           `env:"WISH_MAX_TRIALS" envDefault:"20000"`

	MaxSessions int           `env:"WISH_MAX_SESSIONS" envDefault:"10000"`
	SessionTTL  time.Duration `env:"WISH_SESSION_TTL" envDefault:"30m"` // 0 keeps idle sessions until evicted
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer reads and validates the server settings.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit <= 0 {
		return Server{}, fmt.Errorf("WISH_RATE_LIMIT must be > 0")
	}
	if cfg.RateBurst <= 0 {
		return Server{}, fmt.Errorf("WISH_RATE_BURST must be > 0")
	}
	if cfg.MaxTrials <= 0 {
		return Server{}, fmt.Errorf("WISH_MAX_TRIALS must be > 0")
	}
	if cfg.MaxSessions <= 0 {
		return Server{}, fmt.Errorf("WISH_MAX_SESSIONS must be > 0")
	}
	if cfg.SessionTTL < 0 {
		return Server{}, fmt.Errorf("WISH_SESSION_TTL must be >= 0")
	}
	return cfg, nil
}
