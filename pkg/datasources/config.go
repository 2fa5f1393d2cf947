// Package datasources converts between typed data source form state and the
// JSON config documents the API stores, validates forms, and runs the form
// and list actions of the data source screens.
package datasources

import (
	"github.com/datadrift/datadrift/pkg/models"
)

// MaskedValue is the placeholder the API returns, and accepts, for an unchanged secret.
const MaskedValue = models.MaskedValue

// Driver names for DATABASE sources.
const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
)

// Config is the typed form state for one data source type.
type Config interface {
	Type() models.DataSourceType
}

// FileConfig is the form state of CSV and JSON sources. Path holds either a
// filesystem path or an http(s) URL.
type FileConfig struct {
	Kind     models.DataSourceType
	Path     string
	Encoding string
}

func (c *FileConfig) Type() models.DataSourceType { return c.Kind }

// DatabaseConfig is the form state of a DATABASE source. Password is write-only.
type DatabaseConfig struct {
	Host     string
	Port     *int
	Database string
	Username string
	Password string
	Driver   string
}

func (*DatabaseConfig) Type() models.DataSourceType { return models.DataSourceDatabase }

// RESTConfig is the form state of a REST source. APIKey and Token are write-only.
type RESTConfig struct {
	URL     string
	APIKey  string
	Token   string
	Headers map[string]string
}

func (*RESTConfig) Type() models.DataSourceType { return models.DataSourceREST }

// EmptyConfig returns blank form state for t, or nil for an unknown type.
func EmptyConfig(t models.DataSourceType) Config {
	switch t {
	case models.DataSourceCSV, models.DataSourceJSON:
		return &FileConfig{Kind: t}
	case models.DataSourceDatabase:
		return &DatabaseConfig{}
	case models.DataSourceREST:
		return &RESTConfig{}
	default:
		return nil
	}
}

// SecretFields lists the write-only keys of t.
func SecretFields(t models.DataSourceType) []string {
	switch t {
	case models.DataSourceDatabase:
		return []string{"password"}
	case models.DataSourceREST:
		return []string{"apiKey", "token"}
	default:
		return nil
	}
}

// KeySet is a set of config keys, used for the secrets the user chose to replace.
type KeySet map[string]struct{}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set is empty.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// isMasked treats the sentinel and the empty string alike: neither is a value.
func isMasked(v string) bool {
	return v == "" || v == MaskedValue
}

// configFor returns cfg when it matches t, otherwise blank state for t.
func configFor(t models.DataSourceType, cfg Config) Config {
	if cfg != nil && cfg.Type() == t {
		return cfg
	}
	return EmptyConfig(t)
}
