package mssql

import (
	"context"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/models"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        datasource.TypeSQLServer,
			SourceType:  models.DataSourceDatabase,
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2016+ with SQL authentication",
		},
		Factory: func(ctx context.Context, config map[string]any) (datasource.ConnectionTester, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg)
		},
	})
}
