// Package datasource holds the registry of connection testers, one per data
// source kind. Adapter packages register themselves from init().
package datasource

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/datadrift/datadrift/pkg/models"
)

// Adapter type keys.
const (
	TypePostgres  = "postgres"
	TypeSQLServer = "sqlserver"
	TypeREST      = "rest"
	TypeCSV       = "csv"
	TypeJSON      = "json"
)

// AdapterInfo describes a registered adapter.
type AdapterInfo struct {
	Type        string                `json:"type"`         // "postgres", "rest"
	SourceType  models.DataSourceType `json:"source_type"`  // DATABASE, REST, CSV, JSON
	DisplayName string                `json:"display_name"` // "PostgreSQL"
	Description string                `json:"description"`  // "Connect to PostgreSQL 12+"
}

// TesterFactory builds a ConnectionTester from a decrypted config document.
type TesterFactory func(ctx context.Context, config map[string]any) (ConnectionTester, error)

// AdapterRegistration contains info + factory for an adapter.
type AdapterRegistration struct {
	Info    AdapterInfo
	Factory TesterFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterRegistration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the factory for an adapter type, or nil.
func GetFactory(adapterType string) TesterFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[adapterType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(adapterType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[adapterType]
	return ok
}

// AdapterType picks the adapter for a data source. DATABASE sources are
// dispatched on their "driver" field, defaulting to postgres.
func AdapterType(t models.DataSourceType, config map[string]any) string {
	switch t {
	case models.DataSourceDatabase:
		driver, _ := config["driver"].(string)
		driver = strings.ToLower(strings.TrimSpace(driver))
		switch driver {
		case "":
			return TypePostgres
		case "mssql":
			return TypeSQLServer
		default:
			return driver
		}
	case models.DataSourceREST:
		return TypeREST
	case models.DataSourceCSV:
		return TypeCSV
	case models.DataSourceJSON:
		return TypeJSON
	default:
		return strings.ToLower(string(t))
	}
}
