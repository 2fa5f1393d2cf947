package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/models"
)

// runDataSourceRepositoryContract exercises behaviour every repository
// implementation must share. repo must start empty.
func runDataSourceRepositoryContract(t *testing.T, repo DataSourceRepository) {
	ctx := context.Background()

	orders := &models.DataSource{Name: "orders", Type: models.DataSourceDatabase, Config: `{"host":"db"}`}
	require.NoError(t, repo.Create(ctx, orders))
	require.NotEqual(t, uuid.Nil, orders.ID)
	assert.False(t, orders.CreatedAt.IsZero())

	t.Run("get by id and name", func(t *testing.T) {
		got, err := repo.GetByID(ctx, orders.ID)
		require.NoError(t, err)
		assert.Equal(t, "orders", got.Name)
		assert.Equal(t, models.DataSourceDatabase, got.Type)
		assert.Equal(t, `{"host":"db"}`, got.Config)

		got, err = repo.GetByName(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, orders.ID, got.ID)

		_, err = repo.GetByName(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &models.DataSource{Name: "orders", Type: models.DataSourceREST, Config: `{}`})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	feed := &models.DataSource{Name: "feed", Type: models.DataSourceREST, Config: `{"url":"https://x"}`}
	require.NoError(t, repo.Create(ctx, feed))

	t.Run("list oldest first", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, orders.ID, all[0].ID)
		assert.Equal(t, feed.ID, all[1].ID)
	})

	t.Run("update", func(t *testing.T) {
		upd := &models.DataSource{ID: feed.ID, Name: "feed-v2", Type: models.DataSourceREST, Config: `{"url":"https://y"}`}
		require.NoError(t, repo.Update(ctx, upd))

		got, err := repo.GetByID(ctx, feed.ID)
		require.NoError(t, err)
		assert.Equal(t, "feed-v2", got.Name)
		assert.Equal(t, `{"url":"https://y"}`, got.Config)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		taken := &models.DataSource{ID: feed.ID, Name: "orders", Type: models.DataSourceREST, Config: `{}`}
		assert.ErrorIs(t, repo.Update(ctx, taken), apperrors.ErrConflict)

		missing := &models.DataSource{ID: uuid.New(), Name: "ghost", Type: models.DataSourceREST, Config: `{}`}
		assert.ErrorIs(t, repo.Update(ctx, missing), apperrors.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, orders.ID))
		assert.ErrorIs(t, repo.Delete(ctx, orders.ID), apperrors.ErrNotFound)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, feed.ID, all[0].ID)
	})
}

func TestMemoryDataSourceRepository(t *testing.T) {
	repo := NewMemoryDataSourceRepository().(*memoryDataSourceRepository)

	// Distinct timestamps keep list order deterministic.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	runDataSourceRepositoryContract(t, repo)
}

func TestMemoryDataSourceRepository_ListEmpty(t *testing.T) {
	all, err := NewMemoryDataSourceRepository().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestMemoryDataSourceRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDataSourceRepository()
	ds := &models.DataSource{Name: "a", Type: models.DataSourceCSV, Config: `{"path":"/a.csv"}`}
	require.NoError(t, repo.Create(ctx, ds))

	got, err := repo.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Name)
}
