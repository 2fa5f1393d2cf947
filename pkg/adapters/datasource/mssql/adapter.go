package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/config"
)

// Adapter tests SQL Server connectivity.
type Adapter struct {
	config *Config
	db     *sql.DB
}

// buildConnectionString builds a sqlserver:// URL for SQL authentication.
func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("encrypt", strconv.FormatBool(cfg.Encrypt))
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", strconv.Itoa(cfg.ConnectionTimeout))
	}

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", config.ResolveHostForDocker(cfg.Host), cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// NewAdapter opens a SQL Server handle. The driver connects lazily.
func NewAdapter(_ context.Context, cfg *Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open("sqlserver", buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open SQL auth connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Adapter{
		config: cfg,
		db:     db,
	}, nil
}

// TestConnection pings the server, runs SELECT 1 and checks the database name.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	var result int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	var currentDB string
	if err := a.db.QueryRowContext(ctx, "SELECT DB_NAME()").Scan(&currentDB); err != nil {
		return fmt.Errorf("failed to get current database name: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}

	return nil
}

// Close releases the database handle.
func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ensure Adapter implements ConnectionTester at compile time.
var _ datasource.ConnectionTester = (*Adapter)(nil)
