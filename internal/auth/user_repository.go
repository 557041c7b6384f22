package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// UserRepository defines the interface for credential persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	SearchByEmail(ctx context.Context, fragment string) ([]User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	SetRole(ctx context.Context, username string, role Role) error
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
//
// Every query is parameterised; usernames and search fragments are never
// concatenated into SQL text. The users unique index on username is the
// only concurrency control: racing writers on the same username resolve
// to exactly one success and one ErrUsernameExists.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user record and returns the generated row ID.
// An empty PasswordHash stores NULL (legacy no-password registration);
// an empty Role stores NULL and is read back as "user".
// Returns ErrUsernameExists if the username is already taken.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role)
		 VALUES (?, ?, ?, ?)`,
		user.Username, user.Email,
		nullString(user.PasswordHash), nullString(string(user.Role)),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameExists
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading generated user id: %w", err)
	}
	user.ID = id
	return id, nil
}

// GetByUsername retrieves a user by exact username match.
// Returns ErrUserNotFound if no such user exists.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, email, password_hash, COALESCE(role, 'user')
		 FROM users WHERE username = ?`, username)
	return scanUserFrom(row)
}

// SearchByEmail returns all users whose email contains the fragment.
// The fragment is sanitized first (see SanitizeForLike) and then bound
// as a parameter inside a fixed %...% pattern, so wildcard or SQL
// injection in the fragment cannot widen the match. Result order is
// unspecified.
func (r *SQLiteUserRepository) SearchByEmail(ctx context.Context, fragment string) ([]User, error) {
	pattern := "%" + SanitizeForLike(fragment) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, username, email, password_hash, COALESCE(role, 'user')
		 FROM users WHERE email LIKE ?`, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching users by email: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// UpdatePassword replaces the stored password hash for an existing user.
// Returns ErrUserNotFound if the user does not exist.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ?`,
		passwordHash, username,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRole replaces the role for an existing user. The role must already
// be one of the recognised values; callers validate before storing.
// Returns ErrUserNotFound if the user does not exist.
func (r *SQLiteUserRepository) SetRole(ctx context.Context, username string, role Role) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE username = ?`,
		string(role), username,
	)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by username ascending.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, username, email, password_hash, COALESCE(role, 'user')
		 FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Count returns the total number of user records.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var passwordHash sql.NullString
	var role string

	err := s.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	u.Role = Role(role)

	return &u, nil
}

// collectUsers drains a result set into a slice.
func collectUsers(rows *sql.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// nullString returns a NULL-storing value for empty strings.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint
// violation, using the driver's typed error rather than matching
// error text.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
