// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/riskful/grouplist/lib/clock"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/sqlitepool"
	"github.com/riskful/grouplist/lib/versionstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	record     BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Config holds the parameters for opening a blob store.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string

	// PoolSize is passed to sqlitepool. Zero selects its default.
	PoolSize int

	// Compression names the algorithm for large records: zstd, lz4,
	// or none. Empty selects zstd.
	Compression string

	// EncryptionKey, when set, seals every record with
	// XChaCha20-Poly1305 under a key derived from it. Borrowed; the
	// caller keeps ownership. A store opened with a key cannot read
	// rows written without one, and vice versa.
	EncryptionKey *secret.Buffer

	// Clock stamps records. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Store is a last-writer-wins key-value store.
type Store struct {
	pool        *sqlitepool.Pool
	compression Compression
	sealer      *sealer
	clock       clock.Clock
	logger      *slog.Logger
}

// Open opens (creating if needed) the database at config.Path. The
// caller must Close the store.
func Open(config Config) (*Store, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	compression, err := ParseCompression(config.Compression)
	if err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}

	var records *sealer
	if config.EncryptionKey != nil {
		records, err = newSealer(config.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("blobstore: %w", err)
		}
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     config.Path,
		PoolSize: config.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		if records != nil {
			records.Close()
		}
		return nil, fmt.Errorf("blobstore: %w", err)
	}
	return &Store{
		pool:        pool,
		compression: compression,
		sealer:      records,
		clock:       clk,
		logger:      logger,
	}, nil
}

// Close releases the connection pool and the derived record key.
func (s *Store) Close() error {
	err := s.pool.Close()
	if s.sealer != nil {
		if closeErr := s.sealer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// Fetch implements versionstore.Store. The returned version is always
// versionstore.NoVersion.
func (s *Store) Fetch(ctx context.Context, key string) (*versionstore.Artifact, error) {
	var data []byte
	found := false
	err := s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT record FROM blobs WHERE key = ?`, &sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, data)
				found = true
				return nil
			},
		})
	})
	if err != nil {
		return nil, versionstore.Unavailable(fmt.Errorf("blobstore: reading %s: %w", key, err))
	}
	if !found {
		return nil, fmt.Errorf("blobstore: %s: %w", key, versionstore.ErrNotFound)
	}

	if s.sealer != nil {
		data, err = s.sealer.open(key, data)
		if err != nil {
			return nil, versionstore.Unavailable(fmt.Errorf("blobstore: %s: %w", key, err))
		}
	}
	stored, err := decodeRecord(data)
	if err != nil {
		return nil, versionstore.Unavailable(fmt.Errorf("blobstore: %s: %w", key, err))
	}
	return &versionstore.Artifact{Key: key, Content: stored.Content, Version: versionstore.NoVersion}, nil
}

// Write implements versionstore.Store. expected is ignored.
func (s *Store) Write(ctx context.Context, key string, content []byte, expected versionstore.Version, message string) (versionstore.Version, error) {
	updatedAt := s.clock.Now().UnixMilli()
	data, err := encodeRecord(content, s.compression, updatedAt, message)
	if err != nil {
		return versionstore.NoVersion, fmt.Errorf("blobstore: encoding %s: %w", key, err)
	}
	if s.sealer != nil {
		data, err = s.sealer.seal(key, data)
		if err != nil {
			return versionstore.NoVersion, fmt.Errorf("blobstore: sealing %s: %w", key, err)
		}
	}

	err = s.pool.WithConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`INSERT INTO blobs (key, record, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{key, data, updatedAt}},
		)
	})
	if err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(fmt.Errorf("blobstore: writing %s: %w", key, err))
	}

	s.logger.Debug("blob written",
		"key", key,
		"size", len(content),
		"message", message,
	)
	return versionstore.NoVersion, nil
}

// Consistency implements versionstore.Store.
func (s *Store) Consistency() versionstore.Consistency {
	return versionstore.LastWriterWins
}
