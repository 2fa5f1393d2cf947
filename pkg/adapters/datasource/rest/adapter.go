package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
)

// Adapter checks that a REST endpoint answers a GET.
type Adapter struct {
	config *Config
	client *resty.Client
}

// NewAdapter creates a REST adapter.
func NewAdapter(cfg *Config) *Adapter {
	return &Adapter{
		config: cfg,
		client: resty.New().SetRetryCount(0),
	}
}

// TestConnection issues a GET with the configured credentials. Any status
// below 400 counts as reachable.
func (a *Adapter) TestConnection(ctx context.Context) error {
	req := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(a.config.Headers)
	if a.config.APIKey != "" {
		req.SetHeader("X-API-Key", a.config.APIKey)
	}
	if a.config.Token != "" {
		req.SetAuthToken(a.config.Token)
	}

	resp, err := req.Get(a.config.URL)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("endpoint returned %s", resp.Status())
	}
	return nil
}

// Close is a no-op; resty holds no per-adapter connections worth releasing.
func (a *Adapter) Close() error {
	return nil
}

// Ensure Adapter implements ConnectionTester at compile time.
var _ datasource.ConnectionTester = (*Adapter)(nil)
