// Package apiclient is the typed client for the DataDrift REST API.
package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/datadrift/datadrift/pkg/httpclient"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client calls the API through the shared HTTP wrapper.
type Client struct {
	http *httpclient.Client
}

// New returns a Client using hc for transport.
func New(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// newError builds an Error from resp, preferring the body's "message", then
// "error", then the raw body text, then fallback.
func newError(resp *resty.Response, fallback string) *Error {
	return &Error{Status: resp.StatusCode(), Message: errorMessage(resp.Body(), fallback)}
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}

func requestFailed(status int) string {
	return fmt.Sprintf("Request failed: %d", status)
}

func decode(resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", resp.Request.URL, err)
	}
	return nil
}
