package datasource

import "context"

// ConnectionTester checks that a configured data source is reachable.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the source is reachable with valid credentials.
	// Returns nil if the connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the connection.
	Close() error
}
