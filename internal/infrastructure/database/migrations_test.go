package database

import (
	"context"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantDesc    string
		wantUp      bool
		wantOK      bool
	}{
		{"up migration", "20260815_100000_create_users.up.sql", "20260815_100000", "create_users", true, true},
		{"down migration", "20260815_100000_create_users.down.sql", "20260815_100000", "create_users", false, true},
		{"multi word description", "20260815_100500_create_audit_logs.up.sql", "20260815_100500", "create_audit_logs", true, true},
		{"not sql", "readme.md", "", "", false, false},
		{"no direction", "20260815_100000_create_users.sql", "", "", false, false},
		{"too few parts", "bare.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, desc, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if desc != tt.wantDesc {
				t.Errorf("desc = %q, want %q", desc, tt.wantDesc)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestMigrate_NoEmbeddedMigrations(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// With no embedded FS registered, Migrate is a no-op that still
	// creates the schema_migrations table.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var count int
	err = db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("schema_migrations should exist: %v", err)
	}
	if count != 0 {
		t.Errorf("schema_migrations rows = %d, want 0", count)
	}
}
