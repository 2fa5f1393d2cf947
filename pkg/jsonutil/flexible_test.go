package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{name: "string value", input: json.RawMessage(`"db.internal"`), want: "db.internal"},
		{name: "integer value", input: json.RawMessage(`5432`), want: "5432"},
		{name: "float value", input: json.RawMessage(`3.14`), want: "3.14"},
		{name: "boolean", input: json.RawMessage(`true`), want: "true"},
		{name: "null value", input: json.RawMessage(`null`), want: ""},
		{name: "empty raw message", input: json.RawMessage{}, want: ""},
		{name: "nil raw message", input: nil, want: ""},
		{name: "object falls back to raw", input: json.RawMessage(`{"a":1}`), want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlexibleStringValue(tt.input); got != tt.want {
				t.Errorf("FlexibleStringValue(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleIntValue(t *testing.T) {
	tests := []struct {
		name   string
		input  json.RawMessage
		want   int
		wantOK bool
	}{
		{name: "number", input: json.RawMessage(`5432`), want: 5432, wantOK: true},
		{name: "numeric string", input: json.RawMessage(`"1433"`), want: 1433, wantOK: true},
		{name: "padded numeric string", input: json.RawMessage(`" 80 "`), want: 80, wantOK: true},
		{name: "fraction", input: json.RawMessage(`54.5`), wantOK: false},
		{name: "word", input: json.RawMessage(`"postgres"`), wantOK: false},
		{name: "null", input: json.RawMessage(`null`), wantOK: false},
		{name: "missing", input: nil, wantOK: false},
		{name: "bool", input: json.RawMessage(`true`), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlexibleIntValue(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FlexibleIntValue(%s) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FlexibleIntValue(%s) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestIntValue(t *testing.T) {
	if got, ok := IntValue(float64(5432)); !ok || got != 5432 {
		t.Errorf("IntValue(float64) = %d, %v", got, ok)
	}
	if got, ok := IntValue(1433); !ok || got != 1433 {
		t.Errorf("IntValue(int) = %d, %v", got, ok)
	}
	if got, ok := IntValue(json.Number("80")); !ok || got != 80 {
		t.Errorf("IntValue(json.Number) = %d, %v", got, ok)
	}
	if _, ok := IntValue(nil); ok {
		t.Error("IntValue(nil) should not be ok")
	}
}
