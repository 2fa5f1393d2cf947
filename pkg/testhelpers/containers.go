package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/database"
	"github.com/datadrift/datadrift/pkg/retry"
)

// PostgresImage is the image used for repository integration tests.
const PostgresImage = "postgres:17-alpine"

// TestDB holds a shared test database container and a migrated connection pool.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container with migrations applied.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

// Truncate empties the data source table between tests.
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()
	if _, err := tdb.DB.Exec(context.Background(), "TRUNCATE data_sources"); err != nil {
		t.Fatalf("failed to truncate data_sources: %v", err)
	}
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "datadrift_test",
			"POSTGRES_USER":     "datadrift",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://datadrift:test_password@%s:%s/datadrift_test?sslmode=disable",
		host, port.Port())

	// The log line can appear a moment before the mapped port accepts.
	db, err := retry.DoWithResult(ctx, &retry.Config{
		MaxRetries:   10,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
	}, nil, func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{URL: connStr, MaxConnections: 5})
	})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}
