package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alkubo/SafeVault/internal/audit"
	"github.com/alkubo/SafeVault/internal/auth"
	"github.com/alkubo/SafeVault/internal/infrastructure/config"
	"github.com/alkubo/SafeVault/internal/infrastructure/logging"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server backed by a temp-file SQLite database with
// the users and audit_logs schema.
func testServer(t *testing.T) (*Server, auth.UserRepository) {
	t.Helper()

	db := setupTestDB(t)
	users := auth.NewUserRepository(db)
	auditRepo := audit.NewSQLiteRepository(db)

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	svc := auth.NewService(users, log.Logger)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:          testSecret,
				SessionTokenTTL: 15,
			},
		},
		Logger:  log,
		Auth:    svc,
		Users:   users,
		Audit:   auditRepo,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv, users
}

// setupTestDB creates a SQLite database with the SafeVault schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api_test.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT,
			role TEXT
		);
		CREATE UNIQUE INDEX idx_users_username ON users(username);
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			username TEXT,
			details TEXT,
			created_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	return db
}

// registerUser creates an account through the service, optionally promoting
// it to the given role.
func registerUser(t *testing.T, srv *Server, users auth.UserRepository, username, email, password string, role auth.Role) {
	t.Helper()

	ctx := context.Background()
	if _, err := srv.auth.RegisterWithPassword(ctx, username, email, password); err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}
	if role != auth.RoleUser {
		if err := users.SetRole(ctx, username, role); err != nil {
			t.Fatalf("promoting %s: %v", username, err)
		}
	}
}

// doRequest executes an HTTP request against the server's router.
func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

// loginAs logs in and returns the access token.
func loginAs(t *testing.T, srv *Server, username, password string) string {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	return resp.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("expected version test, got %v", body["version"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", nil)

	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'self'",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("header %s: expected %q, got %q", name, want, got)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestServerRequiresDependencies(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	if _, err := New(Deps{}); err == nil {
		t.Error("expected error for missing logger")
	}
	if _, err := New(Deps{Logger: log}); err == nil {
		t.Error("expected error for missing auth service")
	}
}
