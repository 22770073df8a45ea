package shared

import (
	"database/sql"
	"testing"
)

func migrationTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count > 0
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	for i, m := range migrations {
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d missing up or down script", m.Version)
		}
		if i > 0 && migrations[i-1].Version >= m.Version {
			t.Error("expected migrations sorted by version")
		}
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("creates schema", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, table := range []string{"playlists", "playlists_sequence", "tracks", "tracks_sequence", "schema_migrations"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s to exist", table)
			}
		}

		// sequence rows are seeded
		var value int
		if err := db.QueryRow("SELECT value FROM playlists_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("expected seeded sequence row: %v", err)
		}
		if value != 0 {
			t.Errorf("expected initial sequence 0, got %d", value)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if applied != 1 {
			t.Errorf("expected 1 applied migration, got %d", applied)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	db := migrationTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if tableExists(t, db, "playlists") {
		t.Error("expected playlists table to be dropped")
	}
	if tableExists(t, db, "tracks") {
		t.Error("expected tracks table to be dropped")
	}

	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("failed to count applied migrations: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected no applied migrations after rollback, got %d", applied)
	}
}
