package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/audit"
	"github.com/datadrift/datadrift/pkg/auth"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/services"
)

// genericErrorMessage is returned for failures that must not leak details.
const genericErrorMessage = "An unexpected error occurred"

// ScopeMiddleware wraps a handler with request-scoped resources, such as a
// held database connection.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// NoScope is a ScopeMiddleware that adds nothing.
func NoScope(next http.HandlerFunc) http.HandlerFunc { return next }

// DataSourcesHandler handles data source HTTP requests.
type DataSourcesHandler struct {
	service services.DataSourceService
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewDataSourcesHandler creates a new data sources handler.
func NewDataSourcesHandler(service services.DataSourceService, logger *zap.Logger) *DataSourcesHandler {
	return &DataSourcesHandler{
		service: service,
		logger:  logger,
	}
}

// WithAuditor records changes and stored-credential use to a.
func (h *DataSourcesHandler) WithAuditor(a *audit.SecurityAuditor) *DataSourcesHandler {
	h.auditor = a
	return h
}

// RegisterRoutes registers the data source routes. Every route requires a
// valid token; changes and connection tests require the admin role.
func (h *DataSourcesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	admin := auth.RequireRole(models.RoleAdmin)

	mux.HandleFunc("GET /api/data-sources",
		authMiddleware.RequireAuth(scope(h.List)))
	mux.HandleFunc("GET /api/data-sources/types",
		authMiddleware.RequireAuth(h.Types))
	mux.HandleFunc("POST /api/data-sources",
		authMiddleware.RequireAuth(admin(scope(h.Create))))
	mux.HandleFunc("POST /api/data-sources/test",
		authMiddleware.RequireAuth(admin(h.Test)))
	mux.HandleFunc("GET /api/data-sources/{id}",
		authMiddleware.RequireAuth(scope(h.Get)))
	mux.HandleFunc("PUT /api/data-sources/{id}",
		authMiddleware.RequireAuth(admin(scope(h.Update))))
	mux.HandleFunc("DELETE /api/data-sources/{id}",
		authMiddleware.RequireAuth(admin(scope(h.Delete))))
	mux.HandleFunc("POST /api/data-sources/{id}/test",
		authMiddleware.RequireAuth(admin(scope(h.TestByID))))
}

// List handles GET /api/data-sources
func (h *DataSourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, sources); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Types handles GET /api/data-sources/types
func (h *DataSourcesHandler) Types(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.service.ListTypes()); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Create handles POST /api/data-sources
func (h *DataSourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DataSourceRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	ds, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.auditChange(r, audit.ActionCreate, ds)

	if err := WriteJSON(w, http.StatusCreated, ds); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/data-sources/{id}
func (h *DataSourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDataSourceID(w, r, h.logger)
	if !ok {
		return
	}

	ds, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ds); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Update handles PUT /api/data-sources/{id}
func (h *DataSourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDataSourceID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.DataSourceRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	ds, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.auditChange(r, audit.ActionUpdate, ds)

	if err := WriteJSON(w, http.StatusOK, ds); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Delete handles DELETE /api/data-sources/{id}
func (h *DataSourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDataSourceID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.auditor.LogDataSourceChange(r.Context(), audit.DataSourceDetails{
		Action:       audit.ActionDelete,
		DataSourceID: id.String(),
	}, clientIP(r))

	w.WriteHeader(http.StatusNoContent)
}

// Test handles POST /api/data-sources/test
func (h *DataSourcesHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req models.DataSourceRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.TestConnection(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// TestByID handles POST /api/data-sources/{id}/test
func (h *DataSourcesHandler) TestByID(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDataSourceID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.TestByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.auditor.LogCredentialsUsed(r.Context(), id.String(), clientIP(r))

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *DataSourcesHandler) auditChange(r *http.Request, action string, ds *models.DataSource) {
	h.auditor.LogDataSourceChange(r.Context(), audit.DataSourceDetails{
		Action:       action,
		DataSourceID: ds.ID.String(),
		Name:         ds.Name,
		Type:         string(ds.Type),
	}, clientIP(r))
}

// writeServiceError maps service errors to HTTP responses. Unknown errors
// are logged and answered with a generic 500.
func (h *DataSourcesHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	default:
		h.logger.Error("Data source request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		status, code = http.StatusInternalServerError, "internal_error"
	}

	if err := ErrorResponse(w, status, code, apperrors.Message(err, genericErrorMessage)); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
