package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/models"
)

// mockAuthService is a mock implementation of AuthService for testing.
type mockAuthService struct {
	claims      *Claims
	token       string
	validateErr error
}

func (m *mockAuthService) ValidateRequest(*http.Request) (*Claims, string, error) {
	if m.validateErr != nil {
		return nil, "", m.validateErr
	}
	return m.claims, m.token, nil
}

func (m *mockAuthService) Login(context.Context, string, string) (*models.Session, error) {
	return nil, nil
}

func claimsFor(role models.Role) *Claims {
	return &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}, Role: role}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMiddleware_RequireAuth_Success(t *testing.T) {
	authService := &mockAuthService{claims: claimsFor(models.RoleUser), token: "test-token"}
	middleware := NewMiddleware(authService, zap.NewNop())

	var ctxClaims *Claims
	var ctxToken string
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		ctxClaims, _ = GetClaims(r.Context())
		ctxToken, _ = GetToken(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/data-sources", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ctxClaims)
	assert.Equal(t, "u-1", ctxClaims.Subject)
	assert.Equal(t, "test-token", ctxToken)
}

func TestMiddleware_RequireAuth_Unauthorized(t *testing.T) {
	middleware := NewMiddleware(&mockAuthService{validateErr: ErrMissingAuthorization}, zap.NewNop())

	called := false
	handler := middleware.RequireAuth(func(http.ResponseWriter, *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/data-sources", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec)["error"])
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		roles  []models.Role
		want   int
	}{
		{"admin allowed", claimsFor(models.RoleAdmin), []models.Role{models.RoleAdmin}, http.StatusOK},
		{"manager in list", claimsFor(models.RoleManager), []models.Role{models.RoleAdmin, models.RoleManager}, http.StatusOK},
		{"user forbidden", claimsFor(models.RoleUser), []models.Role{models.RoleAdmin}, http.StatusForbidden},
		{"no roles means any", claimsFor(models.RoleUser), nil, http.StatusOK},
		{"no claims", nil, []models.Role{models.RoleAdmin}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.roles...)(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/data-sources/x", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims, "tok"))
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "forbidden", decodeError(t, rec)["error"])
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserIDFromContext(ctx))
	assert.Equal(t, models.Role(""), GetRoleFromContext(ctx))
	assert.False(t, HasRole(ctx))
	_, err := RequireUserIDFromContext(ctx)
	assert.Error(t, err)

	ctx = WithClaims(ctx, claimsFor(models.RoleManager), "tok")
	assert.Equal(t, "u-1", GetUserIDFromContext(ctx))
	assert.Equal(t, models.RoleManager, GetRoleFromContext(ctx))
	assert.True(t, HasRole(ctx))
	assert.True(t, HasRole(ctx, models.RoleAdmin, models.RoleManager))
	assert.False(t, HasRole(ctx, models.RoleAdmin))
}
