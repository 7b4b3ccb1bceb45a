package db

import (
	"os"
	"testing"
	"testing/fstest"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_add_index.sql":   {Data: []byte("CREATE INDEX x ON kv_store (updated_at);")},
		"001_kv_store.sql":    {Data: []byte("CREATE TABLE kv_store ();")},
		"README.md":           {Data: []byte("docs")},
		"nounderscore.sql":    {Data: []byte("SELECT 1;")},
		"abc_not_number.sql":  {Data: []byte("SELECT 1;")},
		"nested/002_more.sql": {Data: []byte("SELECT 2;")},
	}
	got, err := readMigrations(fsys)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 migrations, got %d: %+v", len(got), got)
	}
	wantNums := []int{1, 2, 10}
	wantNames := []string{"kv_store", "more", "add_index"}
	for i := range got {
		if got[i].Number != wantNums[i] || got[i].Name != wantNames[i] {
			t.Errorf("migration %d: got %d/%s, want %d/%s", i, got[i].Number, got[i].Name, wantNums[i], wantNames[i])
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := readMigrations(Migrations)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) == 0 || got[0].Name != "kv_store" {
		t.Fatalf("expected embedded kv_store migration, got %+v", got)
	}
}

func TestWithSSLDisabled(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h/db":          "postgres://u:p@h/db?sslmode=disable",
		"postgres://u:p@h/db?x=1":      "postgres://u:p@h/db?x=1&sslmode=disable",
		"host=localhost dbname=advice": "host=localhost dbname=advice sslmode=disable",
	}
	for in, want := range tests {
		if got := withSSLDisabled(in); got != want {
			t.Errorf("withSSLDisabled(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRequiresConnectionString(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty connection string")
	}
}

func TestRunMigrationsAgainstPostgres(t *testing.T) {
	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set")
	}
	database, err := New(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close()
	if err := database.RunMigrations(Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := database.RunMigrations(Migrations); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
}
