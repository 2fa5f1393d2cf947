package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datadrift/datadrift/pkg/auth"
	"github.com/datadrift/datadrift/pkg/models"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestAuditor returns an auditor with a fixed clock and its captured logs.
func setupTestAuditor(t *testing.T) (*SecurityAuditor, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	a := NewSecurityAuditor(zap.New(core))
	a.now = func() time.Time { return fixedNow }
	return a, recorded
}

func adminContext() context.Context {
	claims := &auth.Claims{Role: models.RoleAdmin}
	claims.RegisteredClaims = jwt.RegisteredClaims{Subject: "user-123"}
	return auth.WithClaims(context.Background(), claims, "token")
}

func decodeEvent(t *testing.T, entry observer.LoggedEntry) SecurityEvent {
	t.Helper()
	raw, ok := entry.ContextMap()["event_json"].(string)
	require.True(t, ok, "event_json field missing")

	var event SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	return event
}

func TestLogLogin(t *testing.T) {
	tests := []struct {
		name      string
		success   bool
		wantType  SecurityEventType
		wantLevel zapcore.Level
		wantSev   string
	}{
		{"success", true, EventLoginSucceeded, zapcore.InfoLevel, "info"},
		{"failure", false, EventLoginFailed, zapcore.WarnLevel, "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, recorded := setupTestAuditor(t)
			a.LogLogin(context.Background(), "  Admin@Example.com ", "u-1", tt.success, "10.0.0.7")

			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, "security_audit", entry.LoggerName)

			event := decodeEvent(t, entry)
			assert.Equal(t, tt.wantType, event.EventType)
			assert.Equal(t, tt.wantSev, event.Severity)
			assert.Equal(t, "u-1", event.UserID)
			assert.Equal(t, "10.0.0.7", event.ClientIP)
			assert.True(t, fixedNow.Equal(event.Timestamp))
			assert.Equal(t, map[string]any{"email": "admin@example.com"}, event.Details)
		})
	}
}

func TestLogDataSourceChange_TakesCallerFromContext(t *testing.T) {
	a, recorded := setupTestAuditor(t)

	a.LogDataSourceChange(adminContext(), DataSourceDetails{
		Action:       ActionUpdate,
		DataSourceID: "ds-1",
		Name:         "orders",
		Type:         "REST",
	}, "10.0.0.8")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, "Data source changed", entry.Message)
	assert.Equal(t, "user-123", entry.ContextMap()["user_id"])

	event := decodeEvent(t, entry)
	assert.Equal(t, EventDataSourceChanged, event.EventType)
	assert.Equal(t, "user-123", event.UserID)
	assert.Equal(t, "admin", event.Role)
	assert.Equal(t, map[string]any{
		"action":         "update",
		"data_source_id": "ds-1",
		"name":           "orders",
		"type":           "REST",
	}, event.Details)
}

func TestLogCredentialsUsed(t *testing.T) {
	a, recorded := setupTestAuditor(t)

	a.LogCredentialsUsed(adminContext(), "ds-9", "")

	event := decodeEvent(t, recorded.All()[0])
	assert.Equal(t, EventCredentialsUsed, event.EventType)
	assert.Equal(t, map[string]any{"data_source_id": "ds-9"}, event.Details)
	assert.Empty(t, event.ClientIP)
}

func TestNilAuditorDiscards(t *testing.T) {
	var a *SecurityAuditor
	assert.NotPanics(t, func() {
		a.LogLogin(context.Background(), "x@example.com", "", false, "")
		a.LogDataSourceChange(context.Background(), DataSourceDetails{}, "")
		a.LogCredentialsUsed(context.Background(), "ds", "")
	})
}
