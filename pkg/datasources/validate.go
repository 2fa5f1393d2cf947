package datasources

import (
	"strings"

	"github.com/datadrift/datadrift/pkg/models"
)

// Validate returns field-level messages for cfg, keyed by field name.
// An empty map means the config is acceptable.
func Validate(t models.DataSourceType, cfg Config) map[string]string {
	errs := map[string]string{}

	switch c := configFor(t, cfg).(type) {
	case *DatabaseConfig:
		if blank(c.Host) {
			errs["host"] = "Host is required."
		}
		if blank(c.Database) {
			errs["database"] = "Database is required."
		}
		if blank(c.Username) {
			errs["username"] = "Username is required."
		}
		if c.Driver != "" && c.Driver != DriverPostgres && c.Driver != DriverSQLServer {
			errs["driver"] = "Driver must be postgres or sqlserver."
		}
		if c.Port != nil && (*c.Port <= 0 || *c.Port > 65535) {
			errs["port"] = "Port must be between 1 and 65535."
		}
		reserved(errs, "password", c.Password)
	case *RESTConfig:
		if blank(c.URL) {
			errs["url"] = "URL is required."
		}
		reserved(errs, "apiKey", c.APIKey)
		reserved(errs, "token", c.Token)
	case *FileConfig:
		if blank(c.Path) {
			errs["path"] = "Path or URL is required."
		}
	default:
		errs["type"] = "Unsupported data source type."
	}

	return errs
}

// ValidateForm adds the name check to Validate.
func ValidateForm(name string, t models.DataSourceType, cfg Config) map[string]string {
	errs := Validate(t, cfg)
	if blank(name) {
		errs["name"] = "Name is required."
	}
	return errs
}

// reserved rejects a secret typed as the masked placeholder, which the server
// would read as "keep the stored value".
func reserved(errs map[string]string, key, value string) {
	if value == MaskedValue {
		errs[key] = "This value is reserved. Enter the actual secret."
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
