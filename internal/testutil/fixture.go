package testutil

import (
	"database/sql"
	"embed"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed fixtures/*.sql
var fixtures embed.FS

// MigrateFixture applies the shared catalog fixture to a SQLite database:
// two related tables with a composite index, a view and a trigger.
func MigrateFixture(t testing.TB, db *sql.DB) {
	t.Helper()

	goose.SetBaseFS(fixtures)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite"); err != nil {
		t.Fatalf("failed to set dialect: %v", err)
	}
	if err := goose.Up(db, "fixtures"); err != nil {
		t.Fatalf("failed to apply fixture migrations: %v", err)
	}
}

// FixtureDB creates a SQLite database file in a temp dir with the catalog
// fixture applied and returns its path.
func FixtureDB(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	MigrateFixture(t, db)
	return path
}
