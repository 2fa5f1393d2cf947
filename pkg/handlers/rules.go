package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// RulesHandler is the placeholder for automation rules.
type RulesHandler struct {
	logger *zap.Logger
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(logger *zap.Logger) *RulesHandler {
	return &RulesHandler{logger: logger}
}

// RegisterRoutes registers the rules handler's routes on the given mux.
func (h *RulesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rules", h.List)
}

// List handles GET /api/rules
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Not implemented yet"}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
