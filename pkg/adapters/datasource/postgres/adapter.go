package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/config"
)

const applicationName = "datadrift-connection-test"

// Adapter tests PostgreSQL connectivity with one short-lived connection.
type Adapter struct {
	config   *Config
	connConf *pgx.ConnConfig
	conn     *pgx.Conn
}

// buildConnectionString escapes every user-supplied part, so passwords with
// @, /, # or ? survive. Loopback hosts are rewritten inside Docker.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   config.ResolveHostForDocker(cfg.Host) + ":" + strconv.Itoa(cfg.Port),
		Path:   "/" + cfg.Database,
		RawQuery: url.Values{
			"sslmode":          {sslMode},
			"application_name": {applicationName},
		}.Encode(),
	}
	return u.String()
}

// NewAdapter validates the connection settings. Nothing is dialled until
// TestConnection.
func NewAdapter(_ context.Context, cfg *Config) (*Adapter, error) {
	connConf, err := pgx.ParseConfig(buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres settings: %w", err)
	}
	return &Adapter{config: cfg, connConf: connConf}, nil
}

// TestConnection connects, runs SELECT 1 and checks that the server put us
// in the requested database rather than a default one.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if a.conn == nil {
		conn, err := pgx.ConnectConfig(ctx, a.connConf)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		a.conn = conn
	}

	if err := a.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var one int
	if err := a.conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	var currentDB string
	if err := a.conn.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return fmt.Errorf("failed to read current database: %w", err)
	}
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to database %q, expected %q", currentDB, a.config.Database)
	}
	return nil
}

// Close ends the connection if one was opened.
func (a *Adapter) Close() error {
	if a.conn == nil {
		return nil
	}
	// The test context may already be done; closing still needs a moment.
	err := a.conn.Close(context.Background())
	a.conn = nil
	return err
}

var _ datasource.ConnectionTester = (*Adapter)(nil)
