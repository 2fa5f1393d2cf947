package file

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(models.DataSourceCSV, map[string]any{"path": " /data/in.csv ", "encoding": "UTF-8"})
	require.NoError(t, err)
	assert.Equal(t, "/data/in.csv", cfg.Location)
	assert.False(t, cfg.Remote())

	cfg, err = FromMap(models.DataSourceJSON, map[string]any{"url": "https://example.com/data.json"})
	require.NoError(t, err)
	assert.True(t, cfg.Remote())

	_, err = FromMap(models.DataSourceCSV, map[string]any{})
	assert.EqualError(t, err, "path or url is required")

	_, err = FromMap(models.DataSourceCSV, map[string]any{"path": "x.csv", "encoding": "latin1"})
	assert.EqualError(t, err, "unsupported encoding: latin1")
}

func TestTestConnection_LocalFiles(t *testing.T) {
	tests := []struct {
		name    string
		format  models.DataSourceType
		content string
		wantErr string
	}{
		{"csv ok", models.DataSourceCSV, "id,name\n1,a\n", ""},
		{"csv header only", models.DataSourceCSV, "id,name", ""},
		{"csv empty", models.DataSourceCSV, "", "CSV file is empty"},
		{"csv blank header", models.DataSourceCSV, " , \n1,2\n", "CSV header has no column names"},
		{"csv unterminated quote", models.DataSourceCSV, "\"id,name\n", "invalid CSV header"},
		{"json object", models.DataSourceJSON, `{"rows":[1,2]}`, ""},
		{"json array with trailing newline", models.DataSourceJSON, "[1,2]\n", ""},
		{"json empty", models.DataSourceJSON, "", "JSON file is empty"},
		{"json truncated", models.DataSourceJSON, `{"rows":`, "invalid JSON"},
		{"json two values", models.DataSourceJSON, `{} {}`, "unexpected data after top-level value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "data", tt.content)
			err := NewAdapter(&Config{Format: tt.format, Location: path}).TestConnection(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTestConnection_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	err := NewAdapter(&Config{Format: models.DataSourceCSV, Location: path}).TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestTestConnection_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			_, _ = w.Write([]byte(`[{"a":1}]`))
		case "/bad.json":
			_, _ = w.Write([]byte(`[{"a":`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ok := NewAdapter(&Config{Format: models.DataSourceJSON, Location: srv.URL + "/ok.json"})
	assert.NoError(t, ok.TestConnection(context.Background()))

	bad := NewAdapter(&Config{Format: models.DataSourceJSON, Location: srv.URL + "/bad.json"})
	assert.ErrorContains(t, bad.TestConnection(context.Background()), "invalid JSON")

	missing := NewAdapter(&Config{Format: models.DataSourceJSON, Location: srv.URL + "/nope.json"})
	assert.ErrorContains(t, missing.TestConnection(context.Background()), "404")
}

func TestRegistered(t *testing.T) {
	assert.True(t, datasource.IsRegistered(datasource.TypeCSV))
	assert.True(t, datasource.IsRegistered(datasource.TypeJSON))
}
