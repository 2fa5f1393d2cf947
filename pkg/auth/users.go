package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/datadrift/datadrift/pkg/apperrors"
	"github.com/datadrift/datadrift/pkg/models"
	"github.com/datadrift/datadrift/pkg/session"
)

// UserDirectory checks credentials and returns the matching user.
type UserDirectory interface {
	// Authenticate returns apperrors.ErrInvalidCredentials when the email is
	// unknown or the password does not match.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// UserRecord is one entry of the users file.
type UserRecord struct {
	ID           string      `yaml:"id"`
	Email        string      `yaml:"email"`
	Name         string      `yaml:"name"`
	Role         models.Role `yaml:"role"`
	PasswordHash string      `yaml:"password_hash"`
}

type usersFile struct {
	Users []UserRecord `yaml:"users"`
}

// FileDirectory authenticates against users loaded from a YAML file.
type FileDirectory struct {
	byEmail map[string]UserRecord
}

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("datadrift"), bcrypt.MinCost)

// LoadUsersFile reads and validates a users file.
func LoadUsersFile(path string) (*FileDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	return ParseUsers(data)
}

// ParseUsers builds a FileDirectory from users file contents.
func ParseUsers(data []byte) (*FileDirectory, error) {
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	dir := &FileDirectory{byEmail: make(map[string]UserRecord, len(f.Users))}
	for i, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		switch {
		case email == "":
			return nil, fmt.Errorf("users[%d]: email is required", i)
		case u.ID == "":
			return nil, fmt.Errorf("users[%d]: id is required", i)
		case !models.IsValidRole(string(u.Role)):
			return nil, fmt.Errorf("users[%d]: invalid role %q", i, u.Role)
		case u.PasswordHash == "":
			return nil, fmt.Errorf("users[%d]: password_hash is required", i)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("users[%d]: password_hash is not a bcrypt hash", i)
		}
		if _, dup := dir.byEmail[email]; dup {
			return nil, fmt.Errorf("users[%d]: duplicate email %s", i, email)
		}
		u.Email = email
		dir.byEmail[email] = u
	}
	return dir, nil
}

// Len returns the number of configured users.
func (d *FileDirectory) Len() int {
	return len(d.byEmail)
}

func (d *FileDirectory) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	rec, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	name := rec.Name
	if name == "" {
		name = rec.Email
	}
	return &models.User{ID: rec.ID, Email: rec.Email, Name: name, Role: rec.Role}, nil
}

// DevDirectory accepts any non-empty password and infers the role from the
// email address. Development only.
type DevDirectory struct{}

func (DevDirectory) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	u := session.MockUser(email, session.InferRole(email))
	return &u, nil
}

// chainDirectory tries each directory in order.
type chainDirectory []UserDirectory

func (c chainDirectory) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	for _, d := range c {
		u, err := d.Authenticate(ctx, email, password)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			return nil, err
		}
	}
	return nil, apperrors.ErrInvalidCredentials
}

// NewUserDirectory loads the users file and, with devLogin, falls back to the
// development directory. A missing users file is only allowed with devLogin.
func NewUserDirectory(usersFile string, devLogin bool) (UserDirectory, error) {
	fileDir, err := LoadUsersFile(usersFile)
	if err != nil {
		if devLogin && errors.Is(err, os.ErrNotExist) {
			return DevDirectory{}, nil
		}
		return nil, err
	}
	if devLogin {
		return chainDirectory{fileDir, DevDirectory{}}, nil
	}
	return fileDir, nil
}

var (
	_ UserDirectory = (*FileDirectory)(nil)
	_ UserDirectory = DevDirectory{}
	_ UserDirectory = chainDirectory(nil)
)
