package datasources

import (
	"encoding/json"
	"strings"

	"github.com/datadrift/datadrift/pkg/jsonutil"
	"github.com/datadrift/datadrift/pkg/models"
)

// Parse decodes a masked config document into form state for t. Secrets are
// never read back; masked and empty values are skipped. Invalid JSON yields
// blank state. Unknown types yield nil.
func Parse(wire string, t models.DataSourceType) Config {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(wire), &raw); err != nil {
		return EmptyConfig(t)
	}

	switch t {
	case models.DataSourceCSV, models.DataSourceJSON:
		pathOrURL, ok := raw["path"]
		if !ok || string(pathOrURL) == "null" {
			pathOrURL = raw["url"]
		}
		return &FileConfig{
			Kind:     t,
			Path:     stringField(pathOrURL),
			Encoding: stringField(raw["encoding"]),
		}

	case models.DataSourceDatabase:
		cfg := &DatabaseConfig{
			Host:     stringField(raw["host"]),
			Database: stringField(raw["database"]),
			Username: stringField(raw["username"]),
			Driver:   stringField(raw["driver"]),
		}
		if port, ok := jsonutil.FlexibleIntValue(raw["port"]); ok {
			cfg.Port = &port
		}
		return cfg

	case models.DataSourceREST:
		cfg := &RESTConfig{URL: stringField(raw["url"])}
		var headers map[string]any
		if err := json.Unmarshal(raw["headers"], &headers); err == nil {
			for k, v := range headers {
				if s, ok := v.(string); ok && !isMasked(s) {
					if cfg.Headers == nil {
						cfg.Headers = make(map[string]string)
					}
					cfg.Headers[k] = s
				}
			}
		}
		return cfg
	}

	return nil
}

// stringField returns raw as a string when it is a JSON string that is
// neither empty nor masked.
func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isMasked(s) {
		return ""
	}
	return s
}

// Build encodes form state for t into a config document. In edit mode every
// secret not listed in updateSecrets is sent as MaskedValue so the server
// keeps the stored value; otherwise a secret is sent only when non-empty.
func Build(t models.DataSourceType, cfg Config, isEdit bool, updateSecrets KeySet) string {
	doc := map[string]any{}

	secret := func(key, value string) {
		switch {
		case isEdit && !updateSecrets.Has(key):
			doc[key] = MaskedValue
		case value != "":
			doc[key] = value
		}
	}

	switch c := configFor(t, cfg).(type) {
	case *FileConfig:
		if isURL(c.Path) {
			doc["url"] = c.Path
		} else {
			doc["path"] = c.Path
		}
		if c.Encoding != "" {
			doc["encoding"] = c.Encoding
		}

	case *DatabaseConfig:
		doc["host"] = c.Host
		doc["database"] = c.Database
		doc["username"] = c.Username
		if c.Port != nil {
			doc["port"] = *c.Port
		}
		if c.Driver != "" {
			doc["driver"] = c.Driver
		}
		secret("password", c.Password)

	case *RESTConfig:
		doc["url"] = c.URL
		if len(c.Headers) > 0 {
			doc["headers"] = c.Headers
		}
		secret("apiKey", c.APIKey)
		secret("token", c.Token)

	default:
		return "{}"
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(out)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
