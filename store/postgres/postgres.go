// Package postgres implements darkvec.VectorStore using PostgreSQL with
// pgvector for the embedding column.
//
// The Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	darkvec "github.com/darkvec/darkvec"
)

// Store implements darkvec.VectorStore backed by PostgreSQL with pgvector.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536, 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, catching
// dimension mismatches at insert time. Only affects new table creation.
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

var _ darkvec.VectorStore = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// Init creates the pgvector extension, the chunks table, and its indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			full_context TEXT NOT NULL,
			metadata JSONB,
			embedding %s,
			created_at BIGINT NOT NULL
		)`, s.vectorType()),

		`CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks (content_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks (file_path)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	return nil
}

// GetHashesByPath returns the (id, content_hash) pairs stored for a path.
func (s *Store) GetHashesByPath(ctx context.Context, path string) ([]darkvec.ChunkHashRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, content_hash FROM chunks WHERE file_path = $1`, path)
	if err != nil {
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
	return records, nil
}

// DeleteByContentHash removes the records matching path and hash.
func (s *Store) DeleteByContentHash(ctx context.Context, path, hash string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM chunks WHERE file_path = $1 AND content_hash = $2`, path, hash)
	if err != nil {
		return fmt.Errorf("delete by content hash: %w", err)
	}
	return nil
}

// ContentExists reports whether any record with the hash exists, under any
// file path.
func (s *Store) ContentExists(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM chunks WHERE content_hash = $1 LIMIT 1`, hash).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("content exists: %w", err)
	}
	return true, nil
}

// Insert persists an enriched chunk and returns its assigned id.
func (s *Store) Insert(ctx context.Context, chunk darkvec.EnrichedChunk) (string, error) {
	id := darkvec.NewID()

	metaJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	var embStr *string
	if len(chunk.Embedding) > 0 {
		v := serializeEmbedding(chunk.Embedding)
		embStr = &v
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO chunks (id, file_path, content, content_hash, full_context, metadata, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, chunk.Metadata.FilePath, chunk.Content, chunk.ContentHash, chunk.FullContext,
		metaJSON, embStr, darkvec.NowUnix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert chunk: %w", err)
	}
	return id, nil
}

// DeleteByPath removes every record stored for a path.
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE file_path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete by path: %w", err)
	}
	return nil
}

// ListPaths returns the distinct file paths present in the store.
func (s *Store) ListPaths(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT file_path FROM chunks ORDER BY file_path`)
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

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error { return nil }

// serializeEmbedding converts a []float32 to pgvector literal format:
// "[0.1,0.2,...]".
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
