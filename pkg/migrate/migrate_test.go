package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_runs.up.sql":   {Data: []byte("CREATE TABLE runs (id TEXT PRIMARY KEY);")},
		"migrations/001_create_runs.down.sql": {Data: []byte("DROP TABLE runs;")},
		"migrations/002_add_status.up.sql":    {Data: []byte("ALTER TABLE runs ADD COLUMN status TEXT;")},
		"migrations/002_add_status.down.sql":  {Data: []byte("ALTER TABLE runs DROP COLUMN status;")},
		"migrations/README.md":                {Data: []byte("not a migration")},
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFSProviderGetMigrations(t *testing.T) {
	p := NewFSProvider(testMigrations(), "migrations", "")

	migrations, err := p.GetMigrations()
	if err != nil {
		t.Fatalf("GetMigrations() error = %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("GetMigrations() returned %d migrations, want 2", len(migrations))
	}

	tests := []struct {
		version int
		name    string
	}{
		{1, "create runs"},
		{2, "add status"},
	}
	for i, tt := range tests {
		got := migrations[i]
		if got.Version != tt.version || got.Name != tt.name {
			t.Errorf("migration[%d] = {%d %q}, want {%d %q}", i, got.Version, got.Name, tt.version, tt.name)
		}
		if got.Up == "" || got.Down == "" {
			t.Errorf("migration[%d] missing up or down SQL", i)
		}
	}
}

func TestMigratorUpAndDown(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations(), "migrations", ""), nil)

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	version, err := m.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version after MigrateUp = %d, want 2", version)
	}

	if _, err := db.Exec("INSERT INTO runs (id, status) VALUES ('a', 'converged')"); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		t.Fatalf("GetPendingMigrations() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending migrations = %d, want 0", len(pending))
	}

	// Running again is a no-op.
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}

	if err := m.MigrateTo(1); err != nil {
		t.Fatalf("MigrateTo(1) error = %v", err)
	}
	version, _ = m.GetCurrentVersion()
	if version != 1 {
		t.Errorf("version after MigrateTo(1) = %d, want 1", version)
	}

	if err := m.MigrateDown(0); err != nil {
		t.Fatalf("MigrateDown(0) error = %v", err)
	}
	version, _ = m.GetCurrentVersion()
	if version != 0 {
		t.Errorf("version after MigrateDown(0) = %d, want 0", version)
	}

	if err := m.MigrateDown(0); err == nil {
		t.Error("MigrateDown to the current version should fail")
	}
}

func TestMigratorMissingDownSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_only_up.up.sql": {Data: []byte("CREATE TABLE t (x INTEGER);")},
	}
	db := openTestDB(t)
	m := NewMigrator(db, NewFSProvider(fsys, "m", "versions"), nil)

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := m.MigrateDown(0); err == nil {
		t.Error("MigrateDown() should fail when a migration has no down SQL")
	}
}
