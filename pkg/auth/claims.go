// Package auth signs console users in and guards API routes. Tokens are
// HS256 JWTs issued by this server.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/datadrift/datadrift/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims is the access token payload. Subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role,omitempty"`
}

// User returns the user the claims describe.
func (c *Claims) User() *models.User {
	return &models.User{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// WithClaims returns ctx carrying claims and the token they came from.
func WithClaims(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return context.WithValue(ctx, TokenKey, token)
}
