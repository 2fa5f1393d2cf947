package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/datadrift/datadrift/pkg/models"
)

// Health reports server status.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	resp, err := c.http.Request(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &Error{Status: resp.StatusCode(), Message: fmt.Sprintf("Health check failed: %d", resp.StatusCode())}
	}

	var health models.HealthResponse
	if err := decode(resp, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
