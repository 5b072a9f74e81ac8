package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func migrationPair(name, up, down string) fstest.MapFS {
	return fstest.MapFS{
		"sql/migrations/" + name + ".up.sql":   {Data: []byte(up)},
		"sql/migrations/" + name + ".down.sql": {Data: []byte(down)},
	}
}

func TestLoadMigrationsFromFS_OrderedPairs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{}
	for path, f := range migrationPair("0002_add_outbox", "CREATE TABLE o (id TEXT);", "DROP TABLE o;") {
		fsys[path] = f
	}
	for path, f := range migrationPair("0001_init", "CREATE TABLE c (id TEXT);", "DROP TABLE c;") {
		fsys[path] = f
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	// независимо от порядка обхода FS версии возрастают
	if migrations[0].version != 1 || migrations[0].name != "init" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].version != 2 || migrations[1].name != "add_outbox" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
	if !strings.Contains(migrations[1].upSQL, "CREATE TABLE o") {
		t.Fatalf("up body lost: %q", migrations[1].upSQL)
	}
}

func TestLoadMigrationsFromFS_RejectsHalfPair(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_init.up.sql": {Data: []byte("CREATE TABLE c (id TEXT);")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("migration without down pair must be rejected")
	} else if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_RejectsBadName(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/init.sql": {Data: []byte("SELECT 1;")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("file outside NNNN_name.direction.sql scheme must be rejected")
	}
}

func TestLoadMigrationsFromFS_RejectsBlankBody(t *testing.T) {
	t.Parallel()

	fsys := migrationPair("0001_init", " \n\t", "DROP TABLE c;")

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("blank migration body must be rejected")
	}
}

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	seen := int64(0)
	for _, m := range migrations {
		if m.version <= seen {
			t.Fatalf("migration versions must strictly increase: %d after %d", m.version, seen)
		}
		seen = m.version
	}
}
