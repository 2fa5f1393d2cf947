package auth

import (
	"context"
	"fmt"

	"github.com/datadrift/datadrift/pkg/models"
)

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns empty string if not authenticated or claims are missing.
func GetUserIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Subject
}

// RequireUserIDFromContext extracts the user ID from context and returns an error if not found.
func RequireUserIDFromContext(ctx context.Context) (string, error) {
	userID := GetUserIDFromContext(ctx)
	if userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetRoleFromContext returns the caller's role, or "" when unauthenticated.
func GetRoleFromContext(ctx context.Context) models.Role {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Role
}

// HasRole reports whether the caller holds one of roles. No roles means any
// authenticated caller.
func HasRole(ctx context.Context, roles ...models.Role) bool {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if claims.Role == r {
			return true
		}
	}
	return false
}
