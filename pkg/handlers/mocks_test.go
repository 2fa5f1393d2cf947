package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/audit"
	"github.com/datadrift/datadrift/pkg/auth"
	"github.com/datadrift/datadrift/pkg/crypto"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/repositories"
	"github.com/datadrift/datadrift/pkg/services"
)

// stubTester succeeds unless err is set.
type stubTester struct{ err error }

func (s stubTester) TestConnection(context.Context) error { return s.err }
func (stubTester) Close() error                         { return nil }

// stubFactory fails configs without a host.
type stubFactory struct{}

func (stubFactory) NewConnectionTester(_ context.Context, _ models.DataSourceType, config map[string]any) (datasource.ConnectionTester, error) {
	if _, ok := config["host"]; !ok {
		return stubTester{err: errors.New("dial tcp: connection refused")}, nil
	}
	return stubTester{}, nil
}

func (stubFactory) ListTypes() []datasource.AdapterInfo {
	return []datasource.AdapterInfo{{Type: datasource.TypePostgres, SourceType: models.DataSourceDatabase}}
}

// testServer wires handlers the way the server does, on memory storage.
type testServer struct {
	mux    *http.ServeMux
	tokens *auth.TokenManager
	audit  *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	enc, err := crypto.NewCredentialEncryptor("handler-test-key")
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager("jwt-secret", time.Hour)
	require.NoError(t, err)
	sessions := auth.NewSessionStore("cookie-secret", auth.CookieSettings{}, time.Hour)
	authService := auth.NewAuthService(auth.DevDirectory{}, tokens, sessions, logger)

	svc := services.NewDataSourceService(repositories.NewMemoryDataSourceRepository(), enc, stubFactory{}, time.Second, logger)

	core, auditLogs := observer.New(zap.InfoLevel)
	auditor := audit.NewSecurityAuditor(zap.New(core))

	mux := http.NewServeMux()
	NewAuthHandler(authService, sessions, tokens, logger).WithAuditor(auditor).RegisterRoutes(mux)
	NewDataSourcesHandler(svc, logger).WithAuditor(auditor).RegisterRoutes(mux, auth.NewMiddleware(authService, logger), NoScope)
	NewRulesHandler(logger).RegisterRoutes(mux)

	return &testServer{mux: mux, tokens: tokens, audit: auditLogs}
}

func (s *testServer) tokenFor(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := s.tokens.Issue(&models.User{ID: "u-" + string(role), Email: string(role) + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

// do sends a request; token may be empty.
func (s *testServer) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}
