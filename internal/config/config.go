// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration. Every field can be set from the
// environment; cmd/catalog lets flags override a few of them.
type Config struct {
	Addr              string        `env:"CATALOG_ADDR,default=:8000"`
	DatabasePath      string        `env:"DATABASE_PATH,default=catalog.sqlite3"`
	UploadFolder      string        `env:"UPLOAD_FOLDER,default=uploads"`
	AllowedExtensions []string      `env:"ALLOWED_EXTENSIONS,default=png;jpg;jpeg;gif"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES,default=5242880"`
	SecretKey         string        `env:"SECRET_KEY"`
	GoogleClientID    string        `env:"GOOGLE_CLIENT_ID"`
	BaseURL           string        `env:"BASE_URL,default=http://localhost:8000"`
	VerifyTimeout     time.Duration `env:"IDENTITY_VERIFY_TIMEOUT,default=10s"`
	LogPath           string        `env:"CATALOG_LOG"`
	Seed              bool          `env:"CATALOG_SEED,default=false"`
}

// Load reads envFiles (a missing file is skipped) into the process
// environment without overriding variables that are already set, then
// decodes the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that envdecode cannot.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.UploadFolder == "" {
		return fmt.Errorf("UPLOAD_FOLDER is empty")
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS is empty")
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("IDENTITY_VERIFY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) normalize() {
	exts := c.AllowedExtensions[:0]
	for _, e := range c.AllowedExtensions {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			exts = append(exts, e)
		}
	}
	c.AllowedExtensions = exts
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}
