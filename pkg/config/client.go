package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ClientConfig configures the datadrift CLI.
// It is read from $XDG_CONFIG_HOME/datadrift/client.yaml when present, with
// DATADRIFT_* environment variables taking precedence.
type ClientConfig struct {
	// APIURL is the base URL of the DataDrift server.
	APIURL string `yaml:"api_url" env:"DATADRIFT_API_URL" env-default:"http://localhost:8080"`

	// LogLevel is quieter than the server's so command output stays clean.
	LogLevel string `yaml:"log_level" env:"DATADRIFT_LOG_LEVEL" env-default:"warn"`

	Session SessionConfig `yaml:"session"`

	// MockAuth signs in locally without calling the server. Development only.
	MockAuth bool `yaml:"mock_auth" env:"DATADRIFT_MOCK_AUTH" env-default:"false"`
}

// SessionConfig selects where the CLI keeps the signed-in session.
type SessionConfig struct {
	// Backend is "file", "redis" or "memory".
	Backend string `yaml:"backend" env:"DATADRIFT_SESSION_BACKEND" env-default:"file"`
	// Path of the file backend. Defaults to storage.json next to client.yaml.
	Path  string      `yaml:"path" env:"DATADRIFT_SESSION_PATH" env-default:""`
	Redis RedisConfig `yaml:"redis"`

	// TTL expires the redis record; zero keeps it until logout.
	TTL time.Duration `yaml:"ttl" env:"DATADRIFT_SESSION_TTL" env-default:"0s"`
}

// DefaultClientDir returns the directory holding client.yaml and the session file.
func DefaultClientDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "datadrift"), nil
}

// LoadClient reads the CLI configuration. An empty path means the default location.
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		dir, err := DefaultClientDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "client.yaml")
	}

	cfg := &ClientConfig{}
	if err := readConfig(path, cfg); err != nil {
		return nil, err
	}

	switch cfg.Session.Backend {
	case "file":
		if cfg.Session.Path == "" {
			cfg.Session.Path = filepath.Join(filepath.Dir(path), "storage.json")
		}
	case "redis":
		if cfg.Session.Redis.Host == "" {
			return nil, fmt.Errorf("session.redis.host is required for the redis session backend")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("session.backend must be file, redis or memory, got %q", cfg.Session.Backend)
	}

	return cfg, nil
}
