package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Seed admin account constants. The initial password is well known and
// must be changed after first login.
const (
	seedAdminUsername = "admin"
	seedAdminEmail    = "admin@local"
	seedAdminPassword = "ChangeMe!123"
)

// SeedAdmin creates the initial admin account if no user named "admin"
// exists yet. It runs once per store initialization and is idempotent:
// an existing admin record is never overwritten, and a concurrent seed
// from another process start loses the race on the users unique
// constraint and is treated as success.
//
// Returns true if the admin account was created by this call.
func SeedAdmin(ctx context.Context, users UserRepository, logger *slog.Logger) (bool, error) {
	_, err := users.GetByUsername(ctx, seedAdminUsername)
	if err == nil {
		logger.Debug("admin account exists, skipping seed")
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, fmt.Errorf("checking for admin account: %w", err)
	}

	hash, err := HashPassword(seedAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     seedAdminUsername,
		Email:        seedAdminEmail,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if _, err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			// Another process seeded between our check and insert.
			logger.Debug("admin account seeded concurrently, skipping")
			return false, nil
		}
		return false, fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"username", seedAdminUsername,
		"action_required", "change the initial password immediately",
	)
	return true, nil
}
