package shared

import "testing"

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("Creates Export Runs Table", func(t *testing.T) {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='export_runs'").Scan(&name)
		if err != nil {
			t.Fatalf("expected export_runs table to exist: %v", err)
		}
	})

	t.Run("Records Applied Version", func(t *testing.T) {
		var version int
		err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
		if err != nil {
			t.Fatalf("expected schema_migrations to be populated: %v", err)
		}
		if version != 0 {
			t.Errorf("expected version 0, got %d", version)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Errorf("expected second run to be a no-op, got %v", err)
		}
	})
}
