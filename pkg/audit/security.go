// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/datadrift/datadrift/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventLoginSucceeded is logged when credentials are accepted.
	EventLoginSucceeded SecurityEventType = "login_succeeded"
	// EventLoginFailed is logged when credentials are rejected.
	EventLoginFailed SecurityEventType = "login_failed"
	// EventDataSourceChanged is logged when a data source is created, updated or deleted.
	EventDataSourceChanged SecurityEventType = "data_source_changed"
	// EventCredentialsUsed is logged when stored credentials are decrypted for a connection test.
	EventCredentialsUsed SecurityEventType = "credentials_used"
)

// Data source change actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Role      string            `json:"role,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// LoginDetails describes a login attempt. The password is never recorded.
type LoginDetails struct {
	Email string `json:"email"`
}

// DataSourceDetails identifies the data source an event concerns.
type DataSourceDetails struct {
	Action       string `json:"action,omitempty"`
	DataSourceID string `json:"data_source_id"`
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
}

// SecurityAuditor logs security events for SIEM consumption.
// A nil *SecurityAuditor discards events.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
// The "security_audit" name makes the events easy to filter.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit"), now: time.Now}
}

// LogLogin records a login attempt. Failures log at WARN with "warning" severity.
func (a *SecurityAuditor) LogLogin(ctx context.Context, email, userID string, success bool, clientIP string) {
	if a == nil {
		return
	}

	eventType, severity, level, msg := EventLoginSucceeded, "info", zapcore.InfoLevel, "Login succeeded"
	if !success {
		eventType, severity, level, msg = EventLoginFailed, "warning", zapcore.WarnLevel, "Login failed"
	}

	a.log(ctx, level, msg, SecurityEvent{
		EventType: eventType,
		UserID:    userID,
		ClientIP:  clientIP,
		Details:   LoginDetails{Email: strings.ToLower(strings.TrimSpace(email))},
		Severity:  severity,
	})
}

// LogDataSourceChange records a create, update or delete by the caller in ctx.
func (a *SecurityAuditor) LogDataSourceChange(ctx context.Context, details DataSourceDetails, clientIP string) {
	if a == nil {
		return
	}
	a.log(ctx, zapcore.InfoLevel, "Data source changed", SecurityEvent{
		EventType: EventDataSourceChanged,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "info",
	})
}

// LogCredentialsUsed records that a stored data source's secrets were
// decrypted to test its connection.
func (a *SecurityAuditor) LogCredentialsUsed(ctx context.Context, dataSourceID, clientIP string) {
	if a == nil {
		return
	}
	a.log(ctx, zapcore.InfoLevel, "Stored credentials used", SecurityEvent{
		EventType: EventCredentialsUsed,
		ClientIP:  clientIP,
		Details:   DataSourceDetails{DataSourceID: dataSourceID},
		Severity:  "info",
	})
}

// log fills the caller and timestamp, then writes event both as one JSON
// field and as flat fields.
func (a *SecurityAuditor) log(ctx context.Context, level zapcore.Level, msg string, event SecurityEvent) {
	event.Timestamp = a.now().UTC()
	if event.UserID == "" {
		event.UserID = auth.GetUserIDFromContext(ctx)
	}
	if role := auth.GetRoleFromContext(ctx); role != "" {
		event.Role = string(role)
	}

	// Marshaling these known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	a.logger.Log(level, msg,
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("user_id", event.UserID),
		zap.String("client_ip", event.ClientIP),
		zap.String("severity", event.Severity),
	)
}
