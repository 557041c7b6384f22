package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alkubo/SafeVault/internal/audit"
	"github.com/alkubo/SafeVault/internal/auth"
)

// defaultSessionTTL is the token lifetime in minutes when none is configured.
const defaultSessionTTL = 60

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// changePasswordRequest is the request body for POST /auth/password.
type changePasswordRequest struct {
	NewPassword  string `json:"new_password"`
	Confirmation string `json:"confirmation"`
}

// handleLogin authenticates a user and returns a signed session token.
//
// All authentication failures produce the same 401 response so a caller
// cannot probe which usernames exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	identity, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordAudit(r.Context(), audit.ActionLoginFailed, req.Username, nil)
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "authentication unavailable")
		return
	}

	ttl := s.secCfg.JWT.SessionTokenTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	token, err := auth.GenerateSessionToken(identity, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	s.recordAudit(r.Context(), audit.ActionLogin, identity.Username, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
		Role:        string(identity.Role),
	})
}

// handleRegister creates a new user account with a password.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.RegisterWithPassword(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already exists")
		case errors.Is(err, auth.ErrInvalidUsername):
			writeBadRequest(w, "username must be 1-100 characters: letters, digits, underscore, dot, or hyphen")
		case errors.Is(err, auth.ErrInvalidEmail):
			writeBadRequest(w, "a valid email address is required")
		case errors.Is(err, auth.ErrWeakPassword):
			writeBadRequest(w, "password must be at least 8 characters with an uppercase letter and a digit")
		default:
			s.logger.Error("registration failed", "error", err)
			writeInternalError(w, "failed to register user")
		}
		return
	}

	s.recordAudit(r.Context(), audit.ActionRegister, user.Username, map[string]any{
		"email": user.Email,
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleChangePassword updates the authenticated caller's password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := s.auth.ChangePassword(r.Context(), identity.Username, req.NewPassword, req.Confirmation)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch):
			writeBadRequest(w, "password confirmation does not match")
		case errors.Is(err, auth.ErrWeakPassword):
			writeBadRequest(w, "password must be at least 8 characters with an uppercase letter and a digit")
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "user not found")
		default:
			s.logger.Error("password change failed", "username", identity.Username, "error", err)
			writeInternalError(w, "failed to change password")
		}
		return
	}

	s.recordAudit(r.Context(), audit.ActionPasswordChange, identity.Username, nil)

	writeJSON(w, http.StatusOK, map[string]any{"status": "password updated"})
}
