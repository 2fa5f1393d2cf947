// Package httpclient sends console API requests with the standard headers and
// the signed-in user's bearer token.
package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenStore supplies the bearer token and forgets it when the server rejects it.
// *session.Store satisfies it.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	Clear(ctx context.Context)
}

// Options tune a single request.
type Options struct {
	// AuthProtected clears the session when the response is 401 or 403.
	AuthProtected bool
	// Headers are merged over the defaults. An empty Accept keeps the default.
	Headers map[string]string
	// Body is JSON encoded when non-nil.
	Body any
}

// Client wraps resty with one attempt per call and no timeout.
type Client struct {
	rc     *resty.Client
	tokens TokenStore
	logger *zap.Logger
}

// New creates a Client for the API at baseURL.
func New(baseURL string, tokens TokenStore, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0)
	return &Client{
		rc:     rc,
		tokens: tokens,
		logger: logger.Named("http"),
	}
}

// Request performs one HTTP exchange and returns the raw response. Non-2xx
// statuses are not errors here; only transport failures are.
func (c *Client) Request(ctx context.Context, method, target string, opts *Options) (*resty.Response, error) {
	if opts == nil {
		opts = &Options{}
	}

	req := c.rc.R().
		SetContext(ctx).
		SetHeaders(c.headers(ctx, opts))
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		c.logger.Debug("HTTP request failed",
			zap.String("method", method),
			zap.String("target", target),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}

	c.logger.Debug("HTTP request",
		zap.String("method", method),
		zap.String("target", target),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()))

	if opts.AuthProtected && isAuthRejection(resp.StatusCode()) {
		c.logger.Info("Session rejected by server, signing out", zap.Int("status", resp.StatusCode()))
		c.tokens.Clear(ctx)
	}

	return resp, nil
}

func (c *Client) headers(ctx context.Context, opts *Options) map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if token := c.tokens.AccessToken(ctx); token != "" {
		h["Authorization"] = "Bearer " + token
	}
	if opts.Body != nil {
		h["Content-Type"] = "application/json"
	}
	for k, v := range opts.Headers {
		if http.CanonicalHeaderKey(k) == "Accept" && v == "" {
			continue
		}
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
