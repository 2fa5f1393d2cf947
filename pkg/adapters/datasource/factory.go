package datasource

import (
	"context"
	"fmt"

	"github.com/datadrift/datadrift/pkg/models"
)

// AdapterFactory creates connection testers from the registry.
type AdapterFactory interface {
	// NewConnectionTester creates a tester for the given data source type and
	// decrypted config.
	NewConnectionTester(ctx context.Context, dsType models.DataSourceType, config map[string]any) (ConnectionTester, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []AdapterInfo
}

type registryFactory struct{}

// NewAdapterFactory returns a factory that uses the global registry.
func NewAdapterFactory() AdapterFactory {
	return &registryFactory{}
}

func (f *registryFactory) NewConnectionTester(ctx context.Context, dsType models.DataSourceType, config map[string]any) (ConnectionTester, error) {
	adapterType := AdapterType(dsType, config)
	factory := GetFactory(adapterType)
	if factory == nil {
		return nil, fmt.Errorf("unsupported data source type: %s (%s adapter not compiled in)", dsType, adapterType)
	}
	return factory(ctx, config)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

// Ensure registryFactory implements AdapterFactory at compile time.
var _ AdapterFactory = (*registryFactory)(nil)
