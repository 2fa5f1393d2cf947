package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/audit"
	"github.com/datadrift/datadrift/pkg/auth"
	"github.com/datadrift/datadrift/pkg/models"
)

// AuthHandler handles login, logout and session recovery.
type AuthHandler struct {
	authService auth.AuthService
	sessions    *auth.SessionStore
	tokens      auth.TokenValidator
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService auth.AuthService, sessions *auth.SessionStore, tokens auth.TokenValidator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		tokens:      tokens,
		logger:      logger,
	}
}

// WithAuditor records login attempts to a.
func (h *AuthHandler) WithAuditor(a *audit.SecurityAuditor) *AuthHandler {
	h.auditor = a
	return h
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)
}

// Login handles POST /api/login
// Returns {user, accessToken} and stores the same pair in the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	sess, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			h.auditor.LogLogin(r.Context(), req.Email, "", false, clientIP(r))
			if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", genericErrorMessage); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.auditor.LogLogin(r.Context(), req.Email, sess.User.ID, true, clientIP(r))

	if err := h.sessions.Save(w, r, sess); err != nil {
		// The bearer token still works without the cookie.
		h.logger.Warn("Failed to save session cookie", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, sess); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Logout handles POST /api/logout
// Always answers 204; the client discards its session regardless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Warn("Failed to clear session cookie", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/session
// Returns the cookie session when its token is still valid, otherwise 204.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Load(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	claims, err := h.tokens.ValidateToken(sess.AccessToken)
	if err != nil {
		h.logger.Debug("Discarding session with invalid token", zap.Error(err))
		if err := h.sessions.Clear(w, r); err != nil {
			h.logger.Warn("Failed to clear session cookie", zap.Error(err))
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Claims are authoritative over the cookie's copy of the user.
	sess.User = claims.User()
	if err := WriteJSON(w, http.StatusOK, sess); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
