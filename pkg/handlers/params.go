package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ParseDataSourceID extracts and validates the data source ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: id
func ParseDataSourceID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "id", "invalid_request", "Invalid data source ID format", logger)
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into dst and validates it. On
// failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		message := "Invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "Request body too large"
		}
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", message); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}

	if err := validate.Struct(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", validationMessage(err)); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

// clientIP returns the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
