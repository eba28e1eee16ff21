// Package config loads accessmatic CLI settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/session"
)

// Session backend names accepted by ACCESSMATIC_SESSION_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the CLI's runtime settings.
type Config struct {
	APIURL         string        `env:"ACCESSMATIC_API_URL" envDefault:"https://accessmatic-backend-production.up.railway.app"`
	SessionBackend string        `env:"ACCESSMATIC_SESSION_BACKEND" envDefault:"file"`
	SessionDir     string        `env:"ACCESSMATIC_SESSION_DIR"`
	LogLevel       string        `env:"ACCESSMATIC_LOG_LEVEL" envDefault:"warn"`
	Timeout        time.Duration `env:"ACCESSMATIC_TIMEOUT" envDefault:"30s"`
}

// Load reads any of envFiles that exist into the process environment
// (without overriding variables already set) and parses Config from it.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills defaults and validates the settings.
func (c *Config) Normalize() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = sdk.DefaultBaseURL
	}
	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))
	if c.SessionBackend == "" {
		c.SessionBackend = BackendFile
	}
	switch c.SessionBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown session backend %q (want file, sqlite or memory)", c.SessionBackend)
	}
	if strings.TrimSpace(c.SessionDir) == "" && c.SessionBackend != BackendMemory {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve session dir: %w", err)
		}
		c.SessionDir = filepath.Join(dir, "accessmatic")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSession opens the configured credential store. The returned closer
// releases backend resources and must be called when done.
func (c Config) OpenSession(ctx context.Context) (*session.Store, io.Closer, error) {
	switch c.SessionBackend {
	case BackendMemory:
		return session.NewMemoryStore(), nopCloser{}, nil
	case BackendSQLite:
		if err := os.MkdirAll(c.SessionDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create session dir: %w", err)
		}
		backend, err := session.OpenSQLite(filepath.Join(c.SessionDir, "session.db"))
		if err != nil {
			return nil, nil, err
		}
		store, err := session.Open(ctx, backend)
		if err != nil {
			_ = backend.Close()
			return nil, nil, err
		}
		return store, backend, nil
	default:
		backend, err := session.NewFileBackend(c.SessionDir)
		if err != nil {
			return nil, nil, err
		}
		store, err := session.Open(ctx, backend)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}
}
