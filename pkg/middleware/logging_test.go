package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data-sources", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}

	entry := logs.All()[0]
	if entry.Message != "HTTP request" {
		t.Errorf("expected message 'HTTP request', got '%s'", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["bytes"] != int64(2) {
		t.Errorf("expected bytes=2, got %v", fields["bytes"])
	}
	if fields["request_id"] == "" || rec.Header().Get(RequestIDHeader) != fields["request_id"] {
		t.Errorf("expected request ID echoed in header, got %q / %v", rec.Header().Get(RequestIDHeader), fields["request_id"])
	}
}

func TestRequestLogger_KeepsClientRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := logs.All()[0].ContextMap()["request_id"]; got != "abc-123" {
		t.Errorf("expected request_id abc-123, got %v", got)
	}
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("expected header echoed, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestLogger_NilLogger_PassesThrough(t *testing.T) {
	called := false
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   zapcore.Level
	}{
		{"/api/data-sources", http.StatusOK, zapcore.DebugLevel},
		{"/api/data-sources", http.StatusNotFound, zapcore.InfoLevel},
		{"/ping", http.StatusNotFound, zapcore.DebugLevel},
		{"/api/data-sources", http.StatusInternalServerError, zapcore.WarnLevel},
		{"/api/health", http.StatusServiceUnavailable, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		core, logs := observer.New(zap.DebugLevel)
		handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

		entry := logs.All()[0]
		if entry.Level != tt.want {
			t.Errorf("%s %d: expected level %v, got %v", tt.path, tt.status, tt.want, entry.Level)
		}
		if entry.ContextMap()["status"] != int64(tt.status) {
			t.Errorf("expected status %d, got %v", tt.status, entry.ContextMap()["status"])
		}
	}
}

func TestResponseWriter_PreventsDuplicateWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusCreated {
		t.Errorf("expected status to remain %d, got %d", http.StatusCreated, rw.statusCode)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected recorded status %d, got %d", http.StatusCreated, rec.Code)
	}
}

func TestResponseWriter_WriteTriggersWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rw.headerWritten {
		t.Error("expected headerWritten to be true")
	}
	if rw.bytes != 5 {
		t.Errorf("expected 5 bytes, got %d", rw.bytes)
	}
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := Recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data-sources", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if logs.FilterMessage("Handler panic").Len() != 1 {
		t.Error("expected panic to be logged")
	}
}
