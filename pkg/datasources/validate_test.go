package datasources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datadrift/datadrift/pkg/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		typ  models.DataSourceType
		cfg  Config
		want map[string]string
	}{
		{
			name: "database missing host",
			typ:  models.DataSourceDatabase,
			cfg:  &DatabaseConfig{Host: "", Database: "d", Username: "u"},
			want: map[string]string{"host": "Host is required."},
		},
		{
			name: "database whitespace counts as blank",
			typ:  models.DataSourceDatabase,
			cfg:  &DatabaseConfig{Host: "  ", Database: "\t", Username: " "},
			want: map[string]string{
				"host":     "Host is required.",
				"database": "Database is required.",
				"username": "Username is required.",
			},
		},
		{
			name: "database complete",
			typ:  models.DataSourceDatabase,
			cfg:  &DatabaseConfig{Host: "h", Database: "d", Username: "u", Port: intPtr(5432)},
			want: map[string]string{},
		},
		{
			name: "database bad port and driver",
			typ:  models.DataSourceDatabase,
			cfg:  &DatabaseConfig{Host: "h", Database: "d", Username: "u", Port: intPtr(70000), Driver: "oracle"},
			want: map[string]string{
				"port":   "Port must be between 1 and 65535.",
				"driver": "Driver must be postgres or sqlserver.",
			},
		},
		{
			name: "rest valid",
			typ:  models.DataSourceREST,
			cfg:  &RESTConfig{URL: "https://x"},
			want: map[string]string{},
		},
		{
			name: "rest missing url",
			typ:  models.DataSourceREST,
			cfg:  &RESTConfig{},
			want: map[string]string{"url": "URL is required."},
		},
		{
			name: "csv missing path",
			typ:  models.DataSourceCSV,
			cfg:  &FileConfig{Kind: models.DataSourceCSV},
			want: map[string]string{"path": "Path or URL is required."},
		},
		{
			name: "json with url",
			typ:  models.DataSourceJSON,
			cfg:  &FileConfig{Kind: models.DataSourceJSON, Path: "https://x/a.json"},
			want: map[string]string{},
		},
		{
			name: "nil state validates as blank",
			typ:  models.DataSourceREST,
			cfg:  nil,
			want: map[string]string{"url": "URL is required."},
		},
		{
			name: "unknown type",
			typ:  "XML",
			cfg:  nil,
			want: map[string]string{"type": "Unsupported data source type."},
		},
		{
			name: "masked placeholder is not a secret",
			typ:  models.DataSourceREST,
			cfg:  &RESTConfig{URL: "https://x", Token: MaskedValue},
			want: map[string]string{"token": "This value is reserved. Enter the actual secret."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.typ, tt.cfg))
		})
	}
}

func TestValidateForm(t *testing.T) {
	errs := ValidateForm("  ", models.DataSourceREST, &RESTConfig{URL: "https://x"})
	assert.Equal(t, map[string]string{"name": "Name is required."}, errs)

	errs = ValidateForm("orders api", models.DataSourceREST, &RESTConfig{URL: "https://x"})
	assert.Empty(t, errs)
}
