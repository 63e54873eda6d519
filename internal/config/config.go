// Package config loads farmos-mcp configuration from environment
// variables, optionally seeded from a local .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for farmos-mcp.
type Config struct {
	// Base URL of the farmOS instance, e.g. https://farm.example.com.
	URL string `env:"FARMOS_URL"`

	// OAuth2 client credentials. farmOS ships a default "farm" client.
	ClientID     string `env:"FARMOS_CLIENT_ID" envDefault:"farm"`
	ClientSecret string `env:"FARMOS_CLIENT_SECRET" envDefault:""`

	// Optional user credentials. When both are set the client uses the
	// password grant; otherwise client_credentials.
	Username string `env:"FARMOS_USERNAME"`
	Password string `env:"FARMOS_PASSWORD"`

	// ReadOnly controls whether mutating tools (create_log, update_asset,
	// ...) are registered at all. Defaults to true.
	ReadOnly bool `env:"FARMOS_READ_ONLY" envDefault:"true"`

	// Log level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.URL = strings.TrimRight(cfg.URL, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("FARMOS_URL is required")
	}

	if c.ClientID == "" {
		return fmt.Errorf("FARMOS_CLIENT_ID must not be empty")
	}

	// A password without a username (or vice versa) is almost certainly a
	// misconfiguration; silently falling back to client_credentials would
	// hide it.
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("FARMOS_USERNAME and FARMOS_PASSWORD must be set together")
	}

	return nil
}

// PasswordGrant reports whether user credentials are configured, selecting
// the OAuth2 password grant over client_credentials. The grant mode is
// decided once at startup and never changes during the process lifetime.
func (c *Config) PasswordGrant() bool {
	return c.Username != "" && c.Password != ""
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
