// Package jsonutil holds lenient accessors for loosely typed JSON config values.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, accepting numbers
// and booleans where a string was expected. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleIntValue reads a whole number written either as a JSON number or as
// a numeric string ("5432"). ok is false for anything else.
func FlexibleIntValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return IntValue(v)
}

// IntValue is FlexibleIntValue for values already decoded into interface{}.
// Decoded JSON numbers arrive as float64; Go callers may pass int.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
