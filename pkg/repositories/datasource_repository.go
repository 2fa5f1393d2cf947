package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/database"
	"github.com/datadrift/datadrift/pkg/models"
)

// DataSourceRepository defines the interface for data source storage.
// Config is stored in its sealed form; encryption and masking are handled by
// the service layer.
type DataSourceRepository interface {
	// Create inserts ds and fills in its ID and timestamps. Returns
	// apperrors.ErrConflict if the name is taken.
	Create(ctx context.Context, ds *models.DataSource) error

	// GetByID returns apperrors.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.DataSource, error)

	// GetByName returns apperrors.ErrNotFound when no source has the name.
	GetByName(ctx context.Context, name string) (*models.DataSource, error)

	// List returns all sources, oldest first.
	List(ctx context.Context) ([]*models.DataSource, error)

	// Update replaces name, type and config and bumps UpdatedAt.
	Update(ctx context.Context, ds *models.DataSource) error

	// Delete removes a source by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// dataSourceRepository implements DataSourceRepository using PostgreSQL.
type dataSourceRepository struct {
	db *database.DB
}

// NewDataSourceRepository creates a PostgreSQL-backed repository. Calls use
// the request-scoped connection when one is in the context.
func NewDataSourceRepository(db *database.DB) DataSourceRepository {
	return &dataSourceRepository{db: db}
}

const dataSourceColumns = `id, name, type, config, created_at, updated_at`

func (r *dataSourceRepository) Create(ctx context.Context, ds *models.DataSource) error {
	now := time.Now().UTC()
	ds.CreatedAt = now
	ds.UpdatedAt = now

	query := `
		INSERT INTO data_sources (name, type, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		ds.Name,
		ds.Type,
		ds.Config,
		ds.CreatedAt,
		ds.UpdatedAt,
	).Scan(&ds.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create data source: %w", err)
	}

	return nil
}

func (r *dataSourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *dataSourceRepository) GetByName(ctx context.Context, name string) (*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources WHERE name = $1`
	return r.getOne(ctx, query, name)
}

func (r *dataSourceRepository) getOne(ctx context.Context, query string, arg any) (*models.DataSource, error) {
	ds, err := scanDataSource(r.db.Querier(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data source: %w", err)
	}
	return ds, nil
}

func (r *dataSourceRepository) List(ctx context.Context) ([]*models.DataSource, error) {
	query := `SELECT ` + dataSourceColumns + ` FROM data_sources ORDER BY created_at, name`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	defer rows.Close()

	sources := []*models.DataSource{}
	for rows.Next() {
		ds, err := scanDataSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data source: %w", err)
		}
		sources = append(sources, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data sources: %w", err)
	}

	return sources, nil
}

func (r *dataSourceRepository) Update(ctx context.Context, ds *models.DataSource) error {
	ds.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE data_sources
		SET name = $2, type = $3, config = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, ds.ID, ds.Name, ds.Type, ds.Config, ds.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update data source: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete data source: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanDataSource(row pgx.Row) (*models.DataSource, error) {
	var ds models.DataSource
	err := row.Scan(
		&ds.ID,
		&ds.Name,
		&ds.Type,
		&ds.Config,
		&ds.CreatedAt,
		&ds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// isUniqueViolation reports a PostgreSQL unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure dataSourceRepository implements DataSourceRepository at compile time.
var _ DataSourceRepository = (*dataSourceRepository)(nil)
