// Package storage persists result tables to a SQL database. Backends register
// a Factory under their kind from init; importing internal/storage/all makes
// every built-in kind available to New.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ecommetl/internal/ddl"
)

// ErrUnsupportedKind is returned by New for an unregistered kind.
var ErrUnsupportedKind = errors.New("storage: unsupported kind")

// Dialect renders backend-specific DDL.
type Dialect interface {
	// Name is the storage kind, e.g. "sqlite".
	Name() string
	// MapType maps a logical column kind (KindNumeric, KindText) to a SQL type.
	MapType(kind string) string
	// CreateTableSQL renders an idempotent CREATE TABLE statement.
	CreateTableSQL(t ddl.TableDef) (string, error)
}

// Repository is a connection to one database.
type Repository interface {
	// CopyFrom bulk-inserts rows into table. Each row is aligned to columns.
	// It returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Dialect() Dialect
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnsupportedKind, cfg.Kind, ListKinds())
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return repo, nil
}
