package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/models"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
)

// AuthService defines the interface for authentication operations.
// This abstraction keeps HTTP handling separate from credential checks,
// making both easier to test.
type AuthService interface {
	// ValidateRequest extracts and validates a JWT from the request.
	// It checks for the token in:
	//   1. Authorization header with "Bearer" scheme (API clients)
	//   2. The console session cookie (browser clients)
	// Returns the validated claims, the raw token string, or an error.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// Login checks credentials and issues an access token.
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// authService implements AuthService.
type authService struct {
	users    UserDirectory
	tokens   *TokenManager
	sessions *SessionStore
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService. sessions may be nil, in which
// case only bearer tokens are accepted.
func NewAuthService(users UserDirectory, tokens *TokenManager, sessions *SessionStore, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	var tokenString string
	var tokenSource string

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path))
			return nil, "", ErrInvalidAuthFormat
		}
		tokenString = parts[1]
		tokenSource = "header"
	} else if s.sessions != nil {
		if sess, ok := s.sessions.Load(r); ok {
			tokenString = sess.AccessToken
			tokenSource = "cookie"
		}
	}

	if tokenString == "" {
		s.logger.Debug("No JWT found in request",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return nil, "", ErrMissingAuthorization
	}

	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, "", err
	}

	return claims, tokenString, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.Info("Login rejected", zap.String("email", email))
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &models.Session{User: user, AccessToken: token}, nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
