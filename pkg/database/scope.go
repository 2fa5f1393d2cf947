package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope pins one pooled connection to a request so every repository call the
// handler makes runs on it.
type Scope struct {
	Conn *pgxpool.Conn
}

type scopeKey struct{}

// WithScope acquires the connection. Callers must Close the scope.
func (db *DB) WithScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Scope{Conn: conn}, nil
}

// Close returns the connection to the pool. Calling it twice is a no-op.
func (s *Scope) Close() {
	if s.Conn == nil {
		return
	}
	s.Conn.Release()
	s.Conn = nil
}

// SetScope stores scope in ctx.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns the scope stored by SetScope.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*Scope)
	return scope, ok
}
