package models

// Role is a user's access level in the console.
type Role string

// Role constants for console users.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleAdmin, RoleManager, RoleUser}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if string(r) == role {
			return true
		}
	}
	return false
}

// User is the authenticated principal returned by the login endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Session pairs a user with the bearer token issued for them.
// It is also the wire shape of the login and session endpoints.
type Session struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.User != nil && s.User.ID != "" && s.AccessToken != ""
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
