package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the DataDrift server.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	Log LogConfig `yaml:"log"`

	Auth AuthConfig `yaml:"auth"`

	// CookieDomain is the domain for the session cookie (optional).
	// If empty, it will be auto-derived from BaseURL.
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN" env-default:""`

	// Storage selects the data source repository: "postgres" or "memory".
	Storage string `yaml:"storage" env:"DATADRIFT_STORAGE" env-default:"postgres"`

	Database DatabaseConfig `yaml:"database"`

	Datasource DatasourceConfig `yaml:"datasource"`

	// Credential encryption key for data source secrets.
	// A base64-encoded 32-byte key (openssl rand -base64 32) or any passphrase.
	// Server will fail to start if this is not set.
	CredentialsKey string `yaml:"-" env:"DATADRIFT_CREDENTIALS_KEY"` // Secret - not in YAML
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"` // console or json
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// UsersFile is a YAML list of console users with bcrypt password hashes.
	UsersFile string `yaml:"users_file" env:"DATADRIFT_USERS_FILE" env-default:"users.yaml"`

	// DevLogin accepts any password and infers the role from the email.
	// Development only.
	DevLogin bool `yaml:"dev_login" env:"DATADRIFT_DEV_LOGIN" env-default:"false"`

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration `yaml:"token_ttl" env:"DATADRIFT_TOKEN_TTL" env-default:"12h"`

	JWTSecret     string `yaml:"-" env:"DATADRIFT_JWT_SECRET"`     // Secret - not in YAML
	SessionSecret string `yaml:"-" env:"DATADRIFT_SESSION_SECRET"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"datadrift"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"datadrift"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// DatasourceConfig holds connection test settings.
type DatasourceConfig struct {
	// TestTimeout bounds a single connection test.
	TestTimeout time.Duration `yaml:"test_timeout" env:"DATASOURCE_TEST_TIMEOUT" env-default:"15s"`
}

// RedisConfig addresses a Redis server.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// A missing config.yaml is not an error; environment variables and defaults apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := readConfig("config.yaml", cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// readConfig loads path when it exists, otherwise environment variables only.
func readConfig(path string, cfg any) error {
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		return nil
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage must be postgres or memory, got %q", c.Storage)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// ConnectionString returns a PostgreSQL URL for the pgx pool.
func (c *DatabaseConfig) ConnectionString() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Host), c.Port)
}
