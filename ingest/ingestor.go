package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	darkvec "github.com/darkvec/darkvec"
	"github.com/darkvec/darkvec/split"
)

// minContentLength is the largest content length treated as nothing to
// chunk. Empty and near-empty files are skipped before splitting.
const minContentLength = 5

// IngestResult holds the outcome of ingesting one file.
type IngestResult struct {
	Path       string
	Processed  bool
	ChunkCount int
}

// Ingestor provides end-to-end ingestion of a file: extract, split,
// reconcile against stored hashes, summarize, embed, persist. Only chunks
// whose content is not already stored anywhere are enriched and inserted.
type Ingestor struct {
	store      darkvec.VectorStore
	embedding  darkvec.EmbeddingProvider
	differ     *Differ
	summarizer *Summarizer

	chunkSize    int
	chunkOverlap int
	batchSize    int

	authorName     string
	authorFullName string
	authorPronoun  string

	logger *slog.Logger
}

// NewIngestor creates an Ingestor with default chunking bounds and batch
// size. The provider drives summarization; the embedding provider is called
// in batches on each enriched chunk's full context.
func NewIngestor(store darkvec.VectorStore, provider darkvec.Provider, emb darkvec.EmbeddingProvider, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:        store,
		embedding:    emb,
		chunkSize:    split.DefaultChunkSize,
		chunkOverlap: split.DefaultChunkOverlap,
		batchSize:    16,
		logger:       nopLogger,
	}
	for _, o := range opts {
		o(ing)
	}
	ing.differ = NewDiffer(store, WithDifferLogger(ing.logger))
	ing.summarizer = NewSummarizer(provider,
		WithAuthor(ing.authorFullName, ing.authorPronoun),
		WithSummarizerLogger(ing.logger))
	return ing
}

// IngestFile processes a single file. A file is Processed only when at
// least one chunk was enriched and inserted; unchanged, empty, or too-short
// files come back Processed=false with no error. An unsupported extension
// returns *darkvec.ErrUnsupportedFileType, which a caller batching many
// files should treat as per-file and not abort on. Store, provider, and
// embedding failures abort the file.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	res := IngestResult{Path: path}

	splitter, err := split.ForExtension(filepath.Ext(path),
		split.WithChunkSize(ing.chunkSize),
		split.WithChunkOverlap(ing.chunkOverlap))
	if err != nil {
		return res, err
	}

	content := ExtractFile(path)
	if len(content) <= minContentLength {
		ing.logger.Debug("skipping file with no content", slog.String("path", path))
		return res, nil
	}

	chunks := splitter.Split(content)
	if len(chunks) == 0 {
		return res, nil
	}

	fresh, err := ing.differ.Reconcile(ctx, path, chunks)
	if err != nil {
		return res, err
	}
	if len(fresh) == 0 {
		ing.logger.Debug("file already up to date", slog.String("path", path))
		return res, nil
	}

	enriched, err := ing.summarizer.ProcessChunks(ctx, chunks, fresh, ing.writtenByAuthor(path))
	if err != nil {
		return res, err
	}

	if err := ing.batchEmbed(ctx, enriched); err != nil {
		return res, err
	}

	for i := range enriched {
		enriched[i].Metadata.FilePath = path
		if _, err := ing.store.Insert(ctx, enriched[i]); err != nil {
			return res, &darkvec.ErrStore{Op: "insert", Err: err}
		}
	}

	ing.logger.Info("ingested file",
		slog.String("path", path),
		slog.Int("chunks", len(chunks)),
		slog.Int("inserted", len(enriched)))

	res.Processed = true
	res.ChunkCount = len(enriched)
	return res, nil
}

// writtenByAuthor reports whether the configured author name occurs as a
// path segment, marking content the author wrote themselves.
func (ing *Ingestor) writtenByAuthor(path string) bool {
	if ing.authorName == "" {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ing.authorName {
			return true
		}
	}
	return false
}

// batchEmbed embeds each chunk's full context in batches of ing.batchSize.
func (ing *Ingestor) batchEmbed(ctx context.Context, chunks []darkvec.EnrichedChunk) error {
	for i := 0; i < len(chunks); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[i:end]
		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.FullContext
		}

		embeddings, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		for j := range batch {
			batch[j].Embedding = embeddings[j]
		}
	}
	return nil
}
