package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/models"
)

// memoryDataSourceRepository keeps data sources in process memory. Used for
// local development (storage: memory) and tests.
type memoryDataSourceRepository struct {
	mu      sync.RWMutex
	sources map[uuid.UUID]models.DataSource
	now     func() time.Time
}

// NewMemoryDataSourceRepository creates an empty in-memory repository.
func NewMemoryDataSourceRepository() DataSourceRepository {
	return &memoryDataSourceRepository{
		sources: make(map[uuid.UUID]models.DataSource),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryDataSourceRepository) Create(_ context.Context, ds *models.DataSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(ds.Name, uuid.Nil) {
		return apperrors.ErrConflict
	}

	ds.ID = uuid.New()
	ds.CreatedAt = r.now()
	ds.UpdatedAt = ds.CreatedAt
	r.sources[ds.ID] = *ds
	return nil
}

func (r *memoryDataSourceRepository) GetByID(_ context.Context, id uuid.UUID) (*models.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.sources[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &ds, nil
}

func (r *memoryDataSourceRepository) GetByName(_ context.Context, name string) (*models.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ds := range r.sources {
		if ds.Name == name {
			return &ds, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryDataSourceRepository) List(_ context.Context) ([]*models.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*models.DataSource, 0, len(r.sources))
	for _, ds := range r.sources {
		sources = append(sources, &ds)
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].CreatedAt.Equal(sources[j].CreatedAt) {
			return strings.Compare(sources[i].Name, sources[j].Name) < 0
		}
		return sources[i].CreatedAt.Before(sources[j].CreatedAt)
	})
	return sources, nil
}

func (r *memoryDataSourceRepository) Update(_ context.Context, ds *models.DataSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sources[ds.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if r.nameTakenLocked(ds.Name, ds.ID) {
		return apperrors.ErrConflict
	}

	ds.CreatedAt = existing.CreatedAt
	ds.UpdatedAt = r.now()
	r.sources[ds.ID] = *ds
	return nil
}

func (r *memoryDataSourceRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.sources, id)
	return nil
}

func (r *memoryDataSourceRepository) nameTakenLocked(name string, except uuid.UUID) bool {
	for id, ds := range r.sources {
		if id != except && ds.Name == name {
			return true
		}
	}
	return false
}

var _ DataSourceRepository = (*memoryDataSourceRepository)(nil)
