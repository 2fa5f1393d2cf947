package apiclient

import (
	"context"
	"net/http"

	"github.com/datadrift/datadrift/pkg/httpclient"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/session"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := c.http.Request(ctx, http.MethodPost, "/api/login", &httpclient.Options{
		Body: models.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newError(resp, requestFailed(resp.StatusCode()))
	}

	var sess models.Session
	if err := decode(resp, &sess); err != nil || !sess.Valid() {
		return nil, session.ErrInvalidLoginResponse
	}
	return &sess, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.Request(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newError(resp, requestFailed(resp.StatusCode()))
	}
	return nil
}

// CurrentSession returns the server-side session, or nil when there is none.
func (c *Client) CurrentSession(ctx context.Context) (*models.Session, error) {
	resp, err := c.http.Request(ctx, http.MethodGet, "/api/session", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, newError(resp, requestFailed(resp.StatusCode()))
	}

	var sess models.Session
	if err := decode(resp, &sess); err != nil {
		return nil, err
	}
	if !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

var (
	_ session.Authenticator  = (*Client)(nil)
	_ session.SessionFetcher = (*Client)(nil)
)
