package rest

import (
	"fmt"
	"net/url"
	"strings"
)

// Config contains REST endpoint options.
type Config struct {
	URL     string
	APIKey  string
	Token   string
	Headers map[string]string
}

// FromMap creates a Config from a decoded data source config.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{Headers: map[string]string{}}

	rawURL, _ := config["url"].(string)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("url must be an absolute http(s) URL")
	}
	cfg.URL = rawURL

	if v, ok := config["apiKey"].(string); ok {
		cfg.APIKey = v
	} else if v, ok := config["api_key"].(string); ok {
		cfg.APIKey = v
	}
	if v, ok := config["token"].(string); ok {
		cfg.Token = v
	} else if v, ok := config["access_token"].(string); ok {
		cfg.Token = v
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				cfg.Headers[k] = s
			}
		}
	}

	return cfg, nil
}
