package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alkubo/SafeVault/internal/audit"
	"github.com/alkubo/SafeVault/internal/auth"
)

// legacyRegisterRequest is the request body for POST /users.
//
// This is the older registration surface kept for existing frontends; it
// creates an account without login credentials.
type legacyRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// setRoleRequest is the request body for PUT /users/{username}/role.
type setRoleRequest struct {
	Role auth.Role `json:"role"`
}

// handleListUsers returns all user accounts, ordered by username.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleGetUser returns a single user account by username.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := s.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get user failed", "username", username, "error", err)
		writeInternalError(w, "failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleSearchUsers returns users whose email contains the given fragment.
// The fragment is sanitised before being used in the LIKE pattern, so
// wildcard characters in the input never widen the match.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	fragment := r.URL.Query().Get("email")
	if fragment == "" {
		writeBadRequest(w, "email query parameter is required")
		return
	}

	users, err := s.users.SearchByEmail(r.Context(), fragment)
	if err != nil {
		s.logger.Error("user search failed", "error", err)
		writeInternalError(w, "failed to search users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleSetUserRole changes a user's role.
func (s *Server) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.users.SetRole(r.Context(), username, req.Role); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRole):
			writeBadRequest(w, "role must be user or admin")
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "user not found")
		default:
			s.logger.Error("set role failed", "username", username, "error", err)
			writeInternalError(w, "failed to update role")
		}
		return
	}

	caller := identityFromContext(r.Context())
	s.logger.Info("role updated", "username", username, "role", req.Role, "changed_by", caller.Username)
	s.recordAudit(r.Context(), audit.ActionRoleChange, username, map[string]any{
		"new_role":   req.Role,
		"changed_by": caller.Username,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"role":     req.Role,
	})
}

// handleLegacyRegister creates a user account without a password.
//
// Accounts created this way cannot log in until an administrator or a
// password-reset flow sets credentials.
func (s *Server) handleLegacyRegister(w http.ResponseWriter, r *http.Request) {
	var req legacyRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already exists")
		case errors.Is(err, auth.ErrInvalidUsername):
			writeBadRequest(w, "username must be 1-100 characters: letters, digits, underscore, dot, or hyphen")
		case errors.Is(err, auth.ErrInvalidEmail):
			writeBadRequest(w, "a valid email address is required")
		default:
			s.logger.Error("legacy registration failed", "error", err)
			writeInternalError(w, "failed to register user")
		}
		return
	}

	s.recordAudit(r.Context(), audit.ActionRegister, user.Username, map[string]any{
		"email":  user.Email,
		"legacy": true,
	})

	writeJSON(w, http.StatusCreated, user)
}
