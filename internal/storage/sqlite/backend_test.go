package sqlite

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"qkhe/internal/storage"
)

func TestOpenMemory(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
	if got := db.Rebind("SELECT ? + ?"); got != "SELECT ? + ?" {
		t.Fatalf("Rebind() = %q, want question marks", got)
	}
}

func TestOpenEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatalf("Open(blank) error = nil, want non-nil")
	}
}

// TestRegistrationUsesOpenHook verifies that the "sqlite" backend registered
// in init goes through the openDB hook.
func TestRegistrationUsesOpenHook(t *testing.T) {
	orig := openDB
	defer func() { openDB = orig }()

	var gotDSN string
	openDB = func(ctx context.Context, dsn string) (*sqlx.DB, error) {
		gotDSN = dsn
		return orig(ctx, ":memory:")
	}

	tgt, err := storage.Open(context.Background(), storage.Config{Kind: "SQLite", DSN: "model.idbf"})
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer tgt.Close()

	if gotDSN != "model.idbf" {
		t.Fatalf("hook DSN = %q, want model.idbf", gotDSN)
	}
	if tgt.Kind() != Kind || !tgt.FileBased() {
		t.Fatalf("target kind=%q fileBased=%v", tgt.Kind(), tgt.FileBased())
	}
}
