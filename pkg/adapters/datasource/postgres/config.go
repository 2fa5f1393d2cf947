package postgres

import (
	"errors"

	"github.com/datadrift/datadrift/pkg/jsonutil"
)

// Config holds the PostgreSQL settings read from a DATABASE data source.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	// SSLMode is one of disable, prefer, require, verify-ca or verify-full.
	SSLMode string
}

func DefaultPort() int { return 5432 }

func DefaultSSLMode() string { return "prefer" }

// FromMap reads a decrypted data source config. "user" is accepted as an
// older spelling of "username".
func FromMap(raw map[string]any) (*Config, error) {
	cfg := &Config{
		Host:     stringOf(raw, "host"),
		Port:     DefaultPort(),
		User:     stringOf(raw, "username", "user"),
		Password: stringOf(raw, "password"),
		Database: stringOf(raw, "database"),
		SSLMode:  DefaultSSLMode(),
	}

	switch {
	case cfg.Host == "":
		return nil, errors.New("host is required")
	case cfg.User == "":
		return nil, errors.New("username is required")
	case cfg.Database == "":
		return nil, errors.New("database is required")
	}

	if v, present := raw["port"]; present && v != nil {
		port, ok := jsonutil.IntValue(v)
		if !ok || port <= 0 {
			return nil, errors.New("port must be a positive integer")
		}
		cfg.Port = port
	}

	if mode := stringOf(raw, "sslMode"); mode != "" {
		cfg.SSLMode = mode
	}
	return cfg, nil
}

// stringOf returns the first non-empty string among keys.
func stringOf(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
