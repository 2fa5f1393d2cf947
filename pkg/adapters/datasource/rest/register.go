package rest

import (
	"context"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/models"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        datasource.TypeREST,
			SourceType:  models.DataSourceREST,
			DisplayName: "REST API",
			Description: "HTTP(S) JSON endpoint with API key or bearer token",
		},
		Factory: func(_ context.Context, config map[string]any) (datasource.ConnectionTester, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(cfg), nil
		},
	})
}
