package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/datadrift/datadrift/pkg/httpclient"
	"github.com/datadrift/datadrift/pkg/models"
)

const dataSourcesPath = "/api/data-sources"

func dataSourcePath(id string) string {
	return dataSourcesPath + "/" + url.PathEscape(id)
}

// ListDataSources returns every data source with secrets masked.
func (c *Client) ListDataSources(ctx context.Context) ([]models.DataSource, error) {
	resp, err := c.http.Request(ctx, http.MethodGet, dataSourcesPath, &httpclient.Options{AuthProtected: true})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newError(resp, requestFailed(resp.StatusCode()))
	}

	var out []models.DataSource
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDataSource fetches one data source.
func (c *Client) GetDataSource(ctx context.Context, id string) (*models.DataSource, error) {
	return c.dataSourceCall(ctx, http.MethodGet, dataSourcePath(id), nil)
}

// CreateDataSource creates a data source.
func (c *Client) CreateDataSource(ctx context.Context, req models.DataSourceRequest) (*models.DataSource, error) {
	return c.dataSourceCall(ctx, http.MethodPost, dataSourcesPath, &req)
}

// UpdateDataSource replaces a data source. Masked secrets keep their stored values.
func (c *Client) UpdateDataSource(ctx context.Context, id string, req models.DataSourceRequest) (*models.DataSource, error) {
	return c.dataSourceCall(ctx, http.MethodPut, dataSourcePath(id), &req)
}

func (c *Client) dataSourceCall(ctx context.Context, method, target string, body *models.DataSourceRequest) (*models.DataSource, error) {
	opts := &httpclient.Options{AuthProtected: true}
	if body != nil {
		opts.Body = body
	}
	resp, err := c.http.Request(ctx, method, target, opts)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newError(resp, requestFailed(resp.StatusCode()))
	}

	var ds models.DataSource
	if err := decode(resp, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// DeleteDataSource removes a data source.
func (c *Client) DeleteDataSource(ctx context.Context, id string) error {
	resp, err := c.http.Request(ctx, http.MethodDelete, dataSourcePath(id), &httpclient.Options{AuthProtected: true})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newError(resp, fmt.Sprintf("Delete failed: %d", resp.StatusCode()))
	}
	return nil
}

// TestConnection tests an unsaved configuration.
func (c *Client) TestConnection(ctx context.Context, req models.DataSourceRequest) (*models.TestConnectionResponse, error) {
	return c.testCall(ctx, dataSourcesPath+"/test", &req)
}

// TestDataSource tests a saved data source using its stored secrets.
func (c *Client) TestDataSource(ctx context.Context, id string) (*models.TestConnectionResponse, error) {
	return c.testCall(ctx, dataSourcePath(id)+"/test", nil)
}

func (c *Client) testCall(ctx context.Context, target string, body *models.DataSourceRequest) (*models.TestConnectionResponse, error) {
	opts := &httpclient.Options{AuthProtected: true}
	if body != nil {
		opts.Body = body
	}
	resp, err := c.http.Request(ctx, http.MethodPost, target, opts)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newError(resp, requestFailed(resp.StatusCode()))
	}

	var out models.TestConnectionResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
