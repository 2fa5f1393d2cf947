package file

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/datadrift/datadrift/pkg/models"
)

// Config locates a CSV or JSON file, on disk or behind an http(s) URL.
type Config struct {
	Format   models.DataSourceType // CSV or JSON
	Location string
	Encoding string
}

// Remote reports whether Location is an http(s) URL.
func (c *Config) Remote() bool {
	u, err := url.Parse(c.Location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FromMap creates a Config from a decoded data source config. "path" wins
// over "url" when both are present.
func FromMap(format models.DataSourceType, config map[string]any) (*Config, error) {
	cfg := &Config{Format: format}

	location, _ := config["path"].(string)
	if strings.TrimSpace(location) == "" {
		location, _ = config["url"].(string)
	}
	cfg.Location = strings.TrimSpace(location)
	if cfg.Location == "" {
		return nil, fmt.Errorf("path or url is required")
	}

	if enc, ok := config["encoding"].(string); ok {
		cfg.Encoding = strings.TrimSpace(enc)
	}
	switch strings.ToLower(cfg.Encoding) {
	case "", "utf-8", "utf8":
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", cfg.Encoding)
	}

	return cfg, nil
}
