// Package storage is the target side of an export: a small registry of
// database backends and a sqlx-based handle on a HYSTEM-EXTRAN model
// database with the operations the pipeline needs (control record, bulk
// inserts, deletes and name-to-ID backfills).
//
// Backends register themselves from init; import storage/all to enable the
// built-in ones.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"qkhe/internal/ddl"
)

// Config selects a backend and its connection string.
type Config struct {
	Kind string
	DSN  string
}

// Backend bundles everything the target needs from one database flavour.
//
//   - Open connects and pings.
//   - CreateTable renders CREATE TABLE for template bootstrap.
//   - Quote quotes a (possibly dotted) table or column name.
//   - FileBased reports whether the model database is a file that is
//     provisioned from a template before the run.
type Backend struct {
	Open        func(ctx context.Context, dsn string) (*sqlx.DB, error)
	CreateTable ddl.Builder
	Quote       func(string) string
	FileBased   bool
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers (or replaces) the backend for kind. It is typically
// called from backend packages' init functions.
func Register(kind string, b Backend) {
	mu.Lock()
	defer mu.Unlock()
	backends[strings.ToLower(kind)] = b
}

// Lookup returns the backend registered for kind.
func Lookup(kind string) (Backend, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := backends[strings.ToLower(strings.TrimSpace(kind))]
	return b, ok
}

// Kinds lists the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open connects to the target database described by cfg.
func Open(ctx context.Context, cfg Config) (*Target, error) {
	b, ok := Lookup(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("storage: %s: DSN must not be empty", cfg.Kind)
	}
	db, err := b.Open(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return New(db, strings.ToLower(cfg.Kind), b), nil
}
