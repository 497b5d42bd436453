// Package sqlite implements darkvec.VectorStore using pure-Go SQLite.
// Zero CGO required. Embeddings and chunk metadata are stored as JSON
// text; the store serves the hash reconciliation queries with plain
// indexed lookups.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	darkvec "github.com/darkvec/darkvec"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements darkvec.VectorStore backed by a local SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ darkvec.VectorStore = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates the chunks table and its lookup indexes.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		full_context TEXT NOT NULL,
		metadata TEXT,
		embedding TEXT,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	// Indexes on the reconciliation lookup columns.
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks(file_path)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// GetHashesByPath returns the (id, content_hash) pairs stored for a path.
func (s *Store) GetHashesByPath(ctx context.Context, path string) ([]darkvec.ChunkHashRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: get hashes by path", "path", path)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_hash FROM chunks WHERE file_path = ?`, path)
	if err != nil {
		s.logger.Error("sqlite: get hashes failed", "path", path, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("get hashes by path: %w", err)
	}
	defer rows.Close()

	var records []darkvec.ChunkHashRecord
	for rows.Next() {
		var r darkvec.ChunkHashRecord
		if err := rows.Scan(&r.ID, &r.ContentHash); err != nil {
			return nil, fmt.Errorf("scan hash record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hash records: %w", err)
	}
	s.logger.Debug("sqlite: get hashes ok", "path", path, "count", len(records), "duration", time.Since(start))
	return records, nil
}

// DeleteByContentHash removes the records matching path and hash.
func (s *Store) DeleteByContentHash(ctx context.Context, path, hash string) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE file_path = ? AND content_hash = ?`, path, hash)
	if err != nil {
		s.logger.Error("sqlite: delete by content hash failed", "path", path, "error", err, "duration", time.Since(start))
		return fmt.Errorf("delete by content hash: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("sqlite: delete by content hash ok", "path", path, "hash", hash, "rows", n, "duration", time.Since(start))
	return nil
}

// ContentExists reports whether any record with the hash exists, under any
// file path.
func (s *Store) ContentExists(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chunks WHERE content_hash = ? LIMIT 1`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("content exists: %w", err)
	}
	return true, nil
}

// Insert persists an enriched chunk and returns its assigned id.
func (s *Store) Insert(ctx context.Context, chunk darkvec.EnrichedChunk) (string, error) {
	start := time.Now()
	id := darkvec.NewID()
	s.logger.Debug("sqlite: insert chunk", "id", id, "path", chunk.Metadata.FilePath, "has_embedding", len(chunk.Embedding) > 0)

	var metaJSON *string
	if data, err := json.Marshal(chunk.Metadata); err == nil {
		v := string(data)
		metaJSON = &v
	}
	var embJSON *string
	if len(chunk.Embedding) > 0 {
		data, _ := json.Marshal(chunk.Embedding)
		v := string(data)
		embJSON = &v
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (id, file_path, content, content_hash, full_context, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, chunk.Metadata.FilePath, chunk.Content, chunk.ContentHash, chunk.FullContext,
		metaJSON, embJSON, darkvec.NowUnix(),
	)
	if err != nil {
		s.logger.Error("sqlite: insert chunk failed", "id", id, "error", err, "duration", time.Since(start))
		return "", fmt.Errorf("insert chunk: %w", err)
	}
	s.logger.Debug("sqlite: insert chunk ok", "id", id, "duration", time.Since(start))
	return id, nil
}

// DeleteByPath removes every record stored for a path.
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ?`, path)
	if err != nil {
		s.logger.Error("sqlite: delete by path failed", "path", path, "error", err, "duration", time.Since(start))
		return fmt.Errorf("delete by path: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("sqlite: delete by path ok", "path", path, "rows", n, "duration", time.Since(start))
	return nil
}

// ListPaths returns the distinct file paths present in the store.
func (s *Store) ListPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT file_path FROM chunks ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
