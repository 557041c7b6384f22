package auth

import (
	"context"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// Service is the authenticator: it validates credentials against the
// store via the password hasher and issues an Identity on success. It is
// stateless apart from its dependencies and safe for concurrent use.
type Service struct {
	users    UserRepository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService creates an authenticator backed by the given repository.
func NewService(users UserRepository, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		logger:   logger,
		validate: validator.New(),
	}
}

// Authenticate validates a username/password pair and returns the
// authenticated Identity.
//
// Every failure — unknown user, record without a password hash, wrong
// password — collapses to ErrInvalidCredentials so the caller cannot
// enumerate usernames from the result. Storage faults are surfaced
// as-is; they indicate operational trouble, not bad credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == ErrUserNotFound { //nolint:errorlint // sentinel returned directly by the repository
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		// Legacy record without a password; cannot log in.
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &Identity{Username: user.Username, Role: user.Role}, nil
}

// RegisterWithPassword creates a new account with role "user".
//
// Username and email formats are validated first, then the password
// policy is enforced before any hashing happens; a policy violation
// returns ErrWeakPassword without touching the store. A username
// collision surfaces as ErrUsernameExists unchanged.
func (s *Service) RegisterWithPassword(ctx context.Context, username, email, password string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if err := s.validate.Var(email, "required,email"); err != nil || len(email) > maxEmailLength {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePasswordPolicy(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// Register creates an account without a password.
//
// Deprecated: this is the legacy pre-auth registration path, kept for
// backward compatibility. Accounts created this way cannot authenticate
// until a password is set. Use RegisterWithPassword instead.
func (s *Service) Register(ctx context.Context, username, email string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if err := s.validate.Var(email, "required,email"); err != nil || len(email) > maxEmailLength {
		return nil, ErrInvalidEmail
	}

	user := &User{Username: username, Email: email, Role: RoleUser}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("legacy user registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces a user's password after confirming the new
// password twice and re-checking the registration password policy.
func (s *Service) ChangePassword(ctx context.Context, username, newPassword, confirmation string) error {
	if newPassword != confirmation {
		return ErrPasswordMismatch
	}
	if err := ValidatePasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", "username", username)
	return nil
}

// ValidatePasswordPolicy checks the password policy: at least 8
// characters, one upper-case letter, and one digit. The rejected
// password is never included in the error.
func ValidatePasswordPolicy(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	var hasUpper, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
