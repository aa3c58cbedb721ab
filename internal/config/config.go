// internal/config/config.go
//
// Process configuration read from the environment.
// Responsibilities:
//   - Declare every tunable with its env var name and default.
//   - Parse with caarlos0/env after main has loaded an optional .env.
//   - Derive small values the server needs (listen address, cookie security).

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full set of server settings.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	NodeEnv  string `env:"NODE_ENV" envDefault:"development"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/settlers.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"settlers_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	// Empty paths select the embedded assets.
	BoardLayoutFile string `env:"BOARD_LAYOUT_FILE"`
	BuildCostFile   string `env:"BUILD_COST_FILE"`

	// Empty salt draws a random one at startup.
	SeedSalt string `env:"SEED_SALT"`

	WSMessagesPerSecond float64 `env:"WS_MESSAGES_PER_SECOND" envDefault:"10"`
	WSBurst             int     `env:"WS_BURST" envDefault:"20"`
	WSSendBuffer        int     `env:"WS_SEND_BUFFER" envDefault:"32"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: PORT is empty")
	}
	if c.JWTExpiresDays <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_DAYS must be positive, got %d", c.JWTExpiresDays)
	}
	if c.WSMessagesPerSecond <= 0 || c.WSBurst <= 0 {
		return fmt.Errorf("config: websocket rate limit must be positive")
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("config: WS_SEND_BUFFER must be positive, got %d", c.WSSendBuffer)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// Production reports whether cookies must be Secure.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// TokenTTL is the lifetime of issued auth tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
