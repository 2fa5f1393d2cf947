package models

import (
	"time"

	"github.com/google/uuid"
)

// MaskedValue stands in for a secret that must not be shown or overwritten.
const MaskedValue = "******"

// DataSourceType identifies the kind of external connection.
type DataSourceType string

const (
	DataSourceCSV      DataSourceType = "CSV"
	DataSourceJSON     DataSourceType = "JSON"
	DataSourceDatabase DataSourceType = "DATABASE"
	DataSourceREST     DataSourceType = "REST"
)

// DataSourceTypes lists the supported types in display order.
var DataSourceTypes = []DataSourceType{DataSourceCSV, DataSourceJSON, DataSourceDatabase, DataSourceREST}

// ParseDataSourceType returns the type named by s, if supported.
func ParseDataSourceType(s string) (DataSourceType, bool) {
	for _, t := range DataSourceTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// DataSource is a named, typed connection configuration.
// On the read path Config is a JSON object string with secrets masked.
type DataSource struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Type      DataSourceType `json:"type"`
	Config    string         `json:"config"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// DataSourceRequest is the body of create, update and unsaved test calls.
type DataSourceRequest struct {
	Name   string         `json:"name" validate:"required"`
	Type   DataSourceType `json:"type" validate:"required,oneof=CSV JSON DATABASE REST"`
	Config string         `json:"config" validate:"required"`
}

// TestConnectionResponse reports the outcome of a connection test.
type TestConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
