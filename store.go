package darkvec

import "context"

// VectorStore abstracts persistence of enriched chunks together with the
// content-hash index the differ reconciles against. All methods may fail
// with a connectivity error, which callers propagate rather than retry.
type VectorStore interface {
	// GetHashesByPath returns the (id, content_hash) pairs currently stored
	// for a file path.
	GetHashesByPath(ctx context.Context, path string) ([]ChunkHashRecord, error)

	// DeleteByContentHash removes the records matching the given file path
	// and content hash combination.
	DeleteByContentHash(ctx context.Context, path, hash string) error

	// ContentExists reports whether any record with the given content hash
	// exists, regardless of file path.
	ContentExists(ctx context.Context, hash string) (bool, error)

	// Insert persists an enriched chunk and returns the assigned record id.
	Insert(ctx context.Context, chunk EnrichedChunk) (string, error)

	// DeleteByPath removes every record stored for a file path.
	DeleteByPath(ctx context.Context, path string) error

	// ListPaths returns the distinct file paths present in the store.
	ListPaths(ctx context.Context) ([]string, error)

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}

// Provider is an LLM backend used for chunk and file summarization.
type Provider interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// EmbeddingProvider embeds texts into vectors. Implementations should
// accept batches; the ingestor controls batch size.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
