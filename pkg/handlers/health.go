package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/config"
	"github.com/datadrift/datadrift/pkg/logging"
	"github.com/datadrift/datadrift/pkg/models"
)

// AppName is reported by the health endpoint.
const AppName = "DataDrift"

// Health statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

const storageCheckTimeout = 2 * time.Second

// PingResponse is the detailed build and runtime report served on /ping.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	Storage     string `json:"storage"`
}

// StorageCheck reports whether the backing store answers.
type StorageCheck func(ctx context.Context) error

type HealthHandler struct {
	cfg          *config.Config
	storageCheck StorageCheck
	logger       *zap.Logger
}

func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger}
}

// WithStorageCheck makes /api/health answer 503 while check fails.
func (h *HealthHandler) WithStorageCheck(check StorageCheck) *HealthHandler {
	h.storageCheck = check
	return h
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := h.status(r.Context())
	response := models.HealthResponse{
		Status:  status,
		App:     AppName,
		Version: h.cfg.Version,
	}
	if err := WriteJSON(w, code, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping. It never fails on storage, only reports it.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	status, _ := h.status(r.Context())
	response := PingResponse{
		Status:      status,
		Version:     h.cfg.Version,
		Service:     "datadrift",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		Storage:     h.cfg.Storage,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

func (h *HealthHandler) status(ctx context.Context) (string, int) {
	if h.storageCheck == nil {
		return StatusOK, http.StatusOK
	}
	ctx, cancel := context.WithTimeout(ctx, storageCheckTimeout)
	defer cancel()
	if err := h.storageCheck(ctx); err != nil {
		h.logger.Warn("Storage check failed",
			zap.String("storage", h.cfg.Storage),
			zap.String("error", logging.SanitizeError(err)))
		return StatusUnavailable, http.StatusServiceUnavailable
	}
	return StatusOK, http.StatusOK
}
