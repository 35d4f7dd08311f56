// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DefaultBusyTimeout is how long a connection waits on a locked
// database before failing with SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// Config holds the parameters for opening a Pool.
type Config struct {
	// Path is the database file. Missing parent directories are
	// created. ":memory:" works only with PoolSize 1, because every
	// in-memory connection is a separate database.
	Path string

	// PoolSize defaults to min(runtime.NumCPU(), 4). Writes serialize
	// in SQLite regardless.
	PoolSize int

	// BusyTimeout defaults to DefaultBusyTimeout.
	BusyTimeout time.Duration

	// Logger defaults to a discard logger.
	Logger *slog.Logger

	// OnConnect runs once per connection after the pragmas, typically
	// to create the schema. An error discards the connection and is
	// returned from Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Pool is a fixed-size set of SQLite connections. The pool is safe for
// concurrent use; a borrowed connection is not.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are prepared lazily on first
// Take. The caller must Close the pool.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = min(runtime.NumCPU(), 4)
	}
	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlitepool: creating directory for %s: %w", cfg.Path, err)
		}
	}

	pragmas := connectionPragmas(busyTimeout)
	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range pragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
				}
			}
			if cfg.OnConnect == nil {
				return nil
			}
			if err := cfg.OnConnect(conn); err != nil {
				return fmt.Errorf("sqlitepool: OnConnect: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// connectionPragmas is applied to every new connection. journal_mode
// persists in the file, so setting it also converts older databases.
func connectionPragmas(busyTimeout time.Duration) []string {
	return []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout.Milliseconds()),
		"PRAGMA cache_size=-2048",
		"PRAGMA temp_store=MEMORY",
	}
}

// Take borrows a connection, blocking until one is free or ctx ends.
// Every successful Take must be paired with Put.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection. Put(nil) is a no-op.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// WithConn runs fn with a borrowed connection and returns it
// afterwards.
func (p *Pool) WithConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)
	return fn(conn)
}

// Close waits for borrowed connections to come back, then closes
// them all.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close failed", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}
