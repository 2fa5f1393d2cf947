package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/models"
)

type stubTester struct {
	config map[string]any
	closed bool
}

func (s *stubTester) TestConnection(context.Context) error { return nil }
func (s *stubTester) Close() error                         { s.closed = true; return nil }

func TestAdapterType(t *testing.T) {
	tests := []struct {
		name   string
		dsType models.DataSourceType
		config map[string]any
		want   string
	}{
		{"database default", models.DataSourceDatabase, map[string]any{}, TypePostgres},
		{"database postgres", models.DataSourceDatabase, map[string]any{"driver": "postgres"}, TypePostgres},
		{"database sqlserver", models.DataSourceDatabase, map[string]any{"driver": " SQLServer "}, TypeSQLServer},
		{"database mssql alias", models.DataSourceDatabase, map[string]any{"driver": "mssql"}, TypeSQLServer},
		{"database non-string driver", models.DataSourceDatabase, map[string]any{"driver": 5}, TypePostgres},
		{"rest", models.DataSourceREST, nil, TypeREST},
		{"csv", models.DataSourceCSV, nil, TypeCSV},
		{"json", models.DataSourceJSON, nil, TypeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdapterType(tt.dsType, tt.config))
		})
	}
}

func TestRegistryFactory(t *testing.T) {
	const testType = "factory-test"

	Register(AdapterRegistration{
		Info: AdapterInfo{Type: testType, SourceType: models.DataSourceDatabase, DisplayName: "Test"},
		Factory: func(_ context.Context, config map[string]any) (ConnectionTester, error) {
			if config["fail"] == true {
				return nil, errors.New("bad config")
			}
			return &stubTester{config: config}, nil
		},
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, testType)
		registryMu.Unlock()
	})

	f := NewAdapterFactory()
	assert.True(t, IsRegistered(testType))

	tester, err := f.NewConnectionTester(context.Background(), models.DataSourceDatabase, map[string]any{"driver": testType, "host": "h"})
	require.NoError(t, err)
	assert.Equal(t, "h", tester.(*stubTester).config["host"])

	_, err = f.NewConnectionTester(context.Background(), models.DataSourceDatabase, map[string]any{"driver": testType, "fail": true})
	assert.EqualError(t, err, "bad config")

	var found bool
	for _, info := range f.ListTypes() {
		if info.Type == testType {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRegistryFactory_Unregistered(t *testing.T) {
	_, err := NewAdapterFactory().NewConnectionTester(context.Background(), models.DataSourceDatabase, map[string]any{"driver": "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle adapter not compiled in")
}
