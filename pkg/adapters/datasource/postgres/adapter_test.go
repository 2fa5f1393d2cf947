package postgres

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
)

func TestFromMap_ValidConfig(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":     "db.internal",
		"port":     float64(5433), // JSON numbers are float64
		"username": "reporter",
		"password": "s3cret",
		"database": "analytics",
		"sslMode":  "disable",
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "reporter", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "analytics", cfg.Database)
	assert.Equal(t, "disable", cfg.SSLMode)
}

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":     "localhost",
		"user":     "legacy",
		"database": "db",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort(), cfg.Port)
	assert.Equal(t, DefaultSSLMode(), cfg.SSLMode)
	assert.Equal(t, "legacy", cfg.User)
}

func TestFromMap_StringPort(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host": "h", "port": "6543", "username": "u", "database": "d",
	})
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   string
	}{
		{"missing host", map[string]any{"username": "u", "database": "d"}, "host is required"},
		{"missing user", map[string]any{"host": "h", "database": "d"}, "username is required"},
		{"missing database", map[string]any{"host": "h", "username": "u"}, "database is required"},
		{"bad port", map[string]any{"host": "h", "username": "u", "database": "d", "port": "abc"}, "port must be a positive integer"},
		{"negative port", map[string]any{"host": "h", "username": "u", "database": "d", "port": -1}, "port must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.config)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestBuildConnectionString_EscapesCredentials(t *testing.T) {
	cfg := &Config{
		Host:     "db.example.com",
		Port:     5432,
		User:     "user@corp",
		Password: "p@ss/w#rd?",
		Database: "sales",
	}

	connStr := buildConnectionString(cfg)

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "user@corp", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/w#rd?", pw)
	assert.Equal(t, "/sales", u.Path)
	assert.Equal(t, "prefer", u.Query().Get("sslmode"))
	assert.Equal(t, applicationName, u.Query().Get("application_name"))
}

func TestRegistered(t *testing.T) {
	assert.True(t, datasource.IsRegistered(datasource.TypePostgres))
}

func TestTestConnection_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	adapter, err := NewAdapter(context.Background(), &Config{
		Host: "127.0.0.1", Port: 1, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	})
	require.NoError(t, err)
	defer adapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = adapter.TestConnection(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect failed")
	assert.NoError(t, adapter.Close())
}
