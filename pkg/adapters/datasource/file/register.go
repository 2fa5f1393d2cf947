package file

import (
	"context"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/models"
)

func init() {
	register(datasource.TypeCSV, models.DataSourceCSV, "CSV file", "Comma-separated file on disk or at an http(s) URL")
	register(datasource.TypeJSON, models.DataSourceJSON, "JSON file", "JSON document on disk or at an http(s) URL")
}

func register(adapterType string, format models.DataSourceType, name, description string) {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        adapterType,
			SourceType:  format,
			DisplayName: name,
			Description: description,
		},
		Factory: func(_ context.Context, config map[string]any) (datasource.ConnectionTester, error) {
			cfg, err := FromMap(format, config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(cfg), nil
		},
	})
}
