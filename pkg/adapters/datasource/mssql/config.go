package mssql

import (
	"errors"
	"strings"

	"github.com/datadrift/datadrift/pkg/jsonutil"
)

// Config holds the SQL Server settings of a DATABASE data source with
// driver "sqlserver". Only SQL authentication is supported.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	Encrypt                bool
	TrustServerCertificate bool
	// ConnectionTimeout is in seconds.
	ConnectionTimeout int
}

func DefaultPort() int { return 1433 }

func DefaultConnectionTimeout() int { return 30 }

// FromMap reads a decrypted data source config.
func FromMap(raw map[string]any) (*Config, error) {
	cfg := &Config{
		Host:              stringOf(raw, "host"),
		Port:              DefaultPort(),
		Database:          stringOf(raw, "database"),
		Username:          stringOf(raw, "username"),
		Password:          stringOf(raw, "password"),
		Encrypt:           true,
		ConnectionTimeout: DefaultConnectionTimeout(),
	}

	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if v, present := raw["port"]; present && v != nil {
		port, ok := jsonutil.IntValue(v)
		if !ok || port <= 0 {
			return nil, errors.New("port must be a positive integer")
		}
		cfg.Port = port
	}
	if cfg.Database == "" {
		return nil, errors.New("database is required")
	}

	// encrypt may be a boolean or the driver's "true"/"false"/"strict".
	switch v := raw["encrypt"].(type) {
	case bool:
		cfg.Encrypt = v
	case string:
		v = strings.ToLower(v)
		cfg.Encrypt = v == "true" || v == "strict"
	}
	if trust, ok := raw["trustServerCertificate"].(bool); ok {
		cfg.TrustServerCertificate = trust
	}
	if timeout, ok := jsonutil.IntValue(raw["connectionTimeout"]); ok && timeout > 0 {
		cfg.ConnectionTimeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate requires SQL authentication credentials.
func (c *Config) Validate() error {
	switch {
	case c.Username == "":
		return errors.New("username is required")
	case c.Password == "":
		return errors.New("password is required")
	}
	return nil
}

func stringOf(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
