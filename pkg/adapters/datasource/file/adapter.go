// Package file tests CSV and JSON data sources by reading them.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/models"
)

// maxRemoteBytes caps how much of a remote file is downloaded for a test.
const maxRemoteBytes = 10 << 20

// Adapter checks that a file is readable and well formed.
type Adapter struct {
	config *Config
	client *resty.Client
}

// NewAdapter creates a file adapter.
func NewAdapter(cfg *Config) *Adapter {
	return &Adapter{
		config: cfg,
		client: resty.New().SetRetryCount(0),
	}
}

// TestConnection opens the file and checks the CSV header or the JSON value.
func (a *Adapter) TestConnection(ctx context.Context) error {
	r, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	switch a.config.Format {
	case models.DataSourceCSV:
		return checkCSV(r)
	case models.DataSourceJSON:
		return checkJSON(r)
	default:
		return fmt.Errorf("unsupported file format: %s", a.config.Format)
	}
}

// Close is a no-op; files are opened per test.
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) open(ctx context.Context) (io.ReadCloser, error) {
	if !a.config.Remote() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(a.config.Location)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("file not found: %s", a.config.Location)
			}
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(a.config.Location)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body := resp.RawBody()
	if resp.StatusCode() >= http.StatusBadRequest {
		body.Close()
		return nil, fmt.Errorf("download returned %s", resp.Status())
	}
	return readCloser{Reader: io.LimitReader(body, maxRemoteBytes), Closer: body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func checkCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return fmt.Errorf("invalid CSV header: %w", err)
	}
	for _, col := range header {
		if strings.TrimSpace(col) != "" {
			return nil
		}
	}
	return fmt.Errorf("CSV header has no column names")
}

func checkJSON(r io.Reader) error {
	dec := json.NewDecoder(r)
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("JSON file is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}
	return nil
}

// Ensure Adapter implements ConnectionTester at compile time.
var _ datasource.ConnectionTester = (*Adapter)(nil)
