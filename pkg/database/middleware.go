package database

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// WithScopeContext wraps data source handlers so the request holds a single
// connection until the handler returns. When the pool is exhausted or the
// database is down the request fails fast with 503.
func WithScopeContext(db *DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			scope, err := db.WithScope(r.Context())
			if err != nil {
				logger.Error("Failed to acquire database connection",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(struct {
					Error   string `json:"error"`
					Message string `json:"message"`
				}{"database_error", "Database connection error"})
				return
			}
			defer scope.Close()

			next(w, r.WithContext(SetScope(r.Context(), scope)))
		}
	}
}
