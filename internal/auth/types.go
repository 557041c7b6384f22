package auth

import (
	"errors"
	"regexp"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-100 characters.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,100}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 100

// maxEmailLength is the maximum allowed email length.
const maxEmailLength = 150

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-100 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is an ordinary registered account. Default for all
	// self-service registrations.
	RoleUser Role = "user"

	// RoleAdmin has full control: user listing, role assignment, search.
	RoleAdmin Role = "admin"
)

// ValidRoles is the closed set of roles that may be persisted.
var ValidRoles = []Role{RoleUser, RoleAdmin}

// IsValidRole returns true if the role is one of the recognised values.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents a stored account record.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// PasswordHash is empty for rows created through the legacy
	// no-password registration path.
	PasswordHash string `json:"-"` // never serialised
	Role         Role   `json:"role"`
}

// Identity is the authenticated (username, role) pair produced by a
// successful credential verification. It is the sole artifact handed to
// session issuance and to the access decision function.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials is the single rejection for every
	// authentication failure: unknown user, missing hash, wrong
	// password. Callers cannot tell the causes apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password must be at least 8 characters with an upper-case letter and a digit")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidRole      = errors.New("invalid role")
	ErrTokenInvalid     = errors.New("invalid token")
)
