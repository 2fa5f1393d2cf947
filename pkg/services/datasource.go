package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/adapters/datasource"
	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/crypto"
	"github.com/datadrift/datadrift/pkg/logging"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/repositories"
)

// Connection test messages.
const (
	ConnectionValidatedMessage = "Connection validated."
	ConnectionFailedMessage    = "Connection failed."
)

// DefaultTestTimeout bounds a connection test when none is configured.
const DefaultTestTimeout = 15 * time.Second

// DataSourceService defines the interface for data source operations.
// Every returned DataSource has its secrets masked.
type DataSourceService interface {
	// Create validates req, encrypts its secrets and stores it.
	Create(ctx context.Context, req *models.DataSourceRequest) (*models.DataSource, error)

	// Get retrieves a data source by ID.
	Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error)

	// List retrieves all data sources, oldest first.
	List(ctx context.Context) ([]*models.DataSource, error)

	// Update replaces a data source. Masked placeholders in the config keep
	// the stored secret.
	Update(ctx context.Context, id uuid.UUID, req *models.DataSourceRequest) (*models.DataSource, error)

	// Delete removes a data source.
	Delete(ctx context.Context, id uuid.UUID) error

	// TestConnection tests an unsaved configuration.
	TestConnection(ctx context.Context, req *models.DataSourceRequest) (*models.TestConnectionResponse, error)

	// TestByID tests a stored data source using its decrypted config.
	TestByID(ctx context.Context, id uuid.UUID) (*models.TestConnectionResponse, error)

	// ListTypes returns the registered connection testers.
	ListTypes() []datasource.AdapterInfo
}

// dataSourceService implements DataSourceService.
type dataSourceService struct {
	repo           repositories.DataSourceRepository
	encryptor      *crypto.CredentialEncryptor
	adapterFactory datasource.AdapterFactory
	testTimeout    time.Duration
	logger         *zap.Logger
}

// NewDataSourceService creates a new data source service with dependencies.
func NewDataSourceService(
	repo repositories.DataSourceRepository,
	encryptor *crypto.CredentialEncryptor,
	adapterFactory datasource.AdapterFactory,
	testTimeout time.Duration,
	logger *zap.Logger,
) DataSourceService {
	if testTimeout <= 0 {
		testTimeout = DefaultTestTimeout
	}
	return &dataSourceService{
		repo:           repo,
		encryptor:      encryptor,
		adapterFactory: adapterFactory,
		testTimeout:    testTimeout,
		logger:         logger.Named("datasources"),
	}
}

// validateRequest checks name and type and returns the trimmed name.
func validateRequest(req *models.DataSourceRequest) (string, error) {
	if req == nil {
		return "", apperrors.New(apperrors.ErrInvalidInput, "request body is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", apperrors.New(apperrors.ErrInvalidInput, "name is required")
	}
	if req.Type == "" {
		return "", apperrors.New(apperrors.ErrInvalidInput, "type is required")
	}
	if _, ok := models.ParseDataSourceType(string(req.Type)); !ok {
		return "", apperrors.New(apperrors.ErrInvalidInput, "unsupported type: %s", req.Type)
	}
	return name, nil
}

func notFound(id uuid.UUID) error {
	return apperrors.New(apperrors.ErrNotFound, "Data source not found: %s", id)
}

func nameTaken(name string) error {
	return apperrors.New(apperrors.ErrConflict, "name must be unique: %s", name)
}

func (s *dataSourceService) Create(ctx context.Context, req *models.DataSourceRequest) (*models.DataSource, error) {
	name, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, nameTaken(req.Name)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	s.logger.Debug("Creating data source",
		zap.String("name", name),
		zap.String("config", logging.SanitizeConfigJSON(req.Config)),
	)

	config, err := parseConfig(req.Config)
	if err != nil {
		return nil, err
	}
	keepStoredSecrets(config, nil)

	sealed, err := s.sealConfig(config)
	if err != nil {
		return nil, err
	}

	ds := &models.DataSource{
		Name:   name,
		Type:   req.Type,
		Config: sealed,
	}
	if err := s.repo.Create(ctx, ds); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, nameTaken(req.Name)
		}
		return nil, err
	}

	s.logger.Info("Created data source",
		zap.String("id", ds.ID.String()),
		zap.String("name", ds.Name),
		zap.String("type", string(ds.Type)),
	)

	return masked(ds), nil
}

func (s *dataSourceService) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return masked(ds), nil
}

func (s *dataSourceService) get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return ds, nil
}

func (s *dataSourceService) List(ctx context.Context) ([]*models.DataSource, error) {
	sources, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.DataSource, 0, len(sources))
	for _, ds := range sources {
		result = append(result, masked(ds))
	}
	return result, nil
}

func (s *dataSourceService) Update(ctx context.Context, id uuid.UUID, req *models.DataSourceRequest) (*models.DataSource, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	if other, err := s.repo.GetByName(ctx, name); err == nil && other.ID != id {
		return nil, nameTaken(req.Name)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	config, err := parseConfig(req.Config)
	if err != nil {
		return nil, err
	}

	// The stored document is already sealed, so secrets carried over stay sealed.
	stored, err := parseConfig(existing.Config)
	if err != nil {
		stored = nil
	}
	keepStoredSecrets(config, stored)

	sealed, err := s.sealConfig(config)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Type = req.Type
	existing.Config = sealed
	if err := s.repo.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return nil, nameTaken(req.Name)
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, notFound(id)
		}
		return nil, err
	}

	s.logger.Info("Updated data source",
		zap.String("id", id.String()),
		zap.String("name", existing.Name),
	)

	return masked(existing), nil
}

func (s *dataSourceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(id)
		}
		return err
	}

	s.logger.Info("Deleted data source", zap.String("id", id.String()))
	return nil
}

func (s *dataSourceService) TestConnection(ctx context.Context, req *models.DataSourceRequest) (*models.TestConnectionResponse, error) {
	name, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Testing data source connection",
		zap.String("name", name),
		zap.String("config", logging.SanitizeConfigJSON(req.Config)),
	)

	config, err := parseConfig(req.Config)
	if err != nil {
		return nil, err
	}
	keepStoredSecrets(config, nil)

	// Values copied from a stored source may still be sealed.
	if err := openSecrets(config, s.encryptor); err != nil {
		return failed(err), nil
	}
	return s.runTest(ctx, req.Type, config), nil
}

func (s *dataSourceService) TestByID(ctx context.Context, id uuid.UUID) (*models.TestConnectionResponse, error) {
	ds, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	config, err := parseConfig(ds.Config)
	if err != nil {
		return failed(err), nil
	}
	if err := openSecrets(config, s.encryptor); err != nil {
		s.logger.Error("Failed to decrypt data source config",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return failed(err), nil
	}
	return s.runTest(ctx, ds.Type, config), nil
}

func (s *dataSourceService) ListTypes() []datasource.AdapterInfo {
	return s.adapterFactory.ListTypes()
}

// runTest builds a tester for the config and runs it under the test timeout.
// Failures are reported in the response, never as errors.
func (s *dataSourceService) runTest(ctx context.Context, dsType models.DataSourceType, config map[string]any) *models.TestConnectionResponse {
	ctx, cancel := context.WithTimeout(ctx, s.testTimeout)
	defer cancel()

	tester, err := s.adapterFactory.NewConnectionTester(ctx, dsType, config)
	if err != nil {
		s.logger.Info("Connection test rejected config",
			zap.String("type", string(dsType)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return failed(fmt.Errorf("invalid configuration: %w", err))
	}
	defer tester.Close()

	if err := tester.TestConnection(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", s.testTimeout)
		}
		s.logger.Info("Connection test failed",
			zap.String("type", string(dsType)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return failed(err)
	}

	s.logger.Info("Connection test successful", zap.String("type", string(dsType)))
	return &models.TestConnectionResponse{Success: true, Message: ConnectionValidatedMessage}
}

func failed(err error) *models.TestConnectionResponse {
	return &models.TestConnectionResponse{
		Success: false,
		Message: ConnectionFailedMessage + " " + logging.SanitizeError(err),
	}
}

func (s *dataSourceService) sealConfig(config map[string]any) (string, error) {
	if err := sealSecrets(config, s.encryptor); err != nil {
		return "", err
	}
	return encodeConfig(config)
}

// masked returns a copy of ds with its config masked.
func masked(ds *models.DataSource) *models.DataSource {
	out := *ds
	out.Config = maskConfig(ds.Config)
	return &out
}

// Ensure dataSourceService implements DataSourceService at compile time.
var _ DataSourceService = (*dataSourceService)(nil)
