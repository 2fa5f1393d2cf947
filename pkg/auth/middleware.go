package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/models"
)

// Middleware guards data source routes with the bearer token (or, failing
// that, the session cookie) checked by AuthService.
type Middleware struct {
	authService AuthService
	logger      *zap.Logger
}

func NewMiddleware(authService AuthService, logger *zap.Logger) *Middleware {
	return &Middleware{authService: authService, logger: logger}
}

// RequireAuth answers 401 unless the request carries a valid token. The
// claims and raw token are put on the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.authService.ValidateRequest(r)
		if err != nil {
			m.logger.Debug("Rejected unauthenticated request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			reject(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims, token)))
	}
}

// RequireRole answers 403 when the caller's role is not in roles. It runs
// inside RequireAuth; a request without claims gets 401.
func RequireRole(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, authenticated := GetClaims(r.Context())
			switch {
			case !authenticated:
				reject(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			case !HasRole(r.Context(), roles...):
				reject(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action")
			default:
				next(w, r)
			}
		}
	}
}

// reject writes the same {error, message} body the handlers use. It cannot
// import them without a cycle.
func reject(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{code, message})
}
