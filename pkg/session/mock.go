package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/datadrift/datadrift/pkg/models"
)

// MockAuthenticator signs in without a server, inferring the role from the
// email address. Development only.
type MockAuthenticator struct {
	// Delay simulates network latency.
	Delay time.Duration
}

// InferRole maps an email to a role: "admin" anywhere in it wins, then
// "manager"; everyone else is a plain user.
func InferRole(email string) models.Role {
	lower := strings.ToLower(email)
	switch {
	case strings.Contains(lower, "admin"):
		return models.RoleAdmin
	case strings.Contains(lower, "manager"):
		return models.RoleManager
	default:
		return models.RoleUser
	}
}

// MockUser returns the demo user for role.
func MockUser(email string, role models.Role) models.User {
	name := "Demo User"
	switch role {
	case models.RoleAdmin:
		name = "Demo Admin"
	case models.RoleManager:
		name = "Demo Manager"
	}
	return models.User{
		ID:    "mock-" + string(role),
		Email: email,
		Name:  name,
		Role:  role,
	}
}

func (a MockAuthenticator) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.New("Email and password are required.")
	}
	if a.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.Delay):
		}
	}

	role := InferRole(email)
	user := MockUser(email, role)
	return &models.Session{User: &user, AccessToken: "mock-token-" + string(role)}, nil
}

func (MockAuthenticator) Logout(context.Context) error {
	return nil
}

var _ Authenticator = MockAuthenticator{}
