// Package darkvec ingests documents into a vector store for retrieval.
//
// It extracts text from files, splits it into bounded, overlapping,
// boundary-respecting chunks, and uses content hashing to decide which
// chunks are new, unchanged, or stale, so summarization, embedding, and
// storage run only on content that actually changed.
//
// # Quick Start
//
//	store := sqlite.New("darkvec.db")
//	llm := ollama.New("http://localhost:11434", "llama3.2")
//	emb := ollama.NewEmbedding("http://localhost:11434", "nomic-embed-text")
//
//	ing := ingest.NewIngestor(store, llm, emb)
//	result, err := ing.IngestFile(ctx, "/data/notes/design.md")
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [VectorStore]: chunk persistence plus the content-hash index
//   - [Provider]: LLM backend for summarization
//   - [EmbeddingProvider]: text-to-vector embedding
//
// # Included Implementations
//
// Storage: store/sqlite (local, pure Go), store/postgres (pgvector).
// Providers: provider/ollama.
// Splitting: split (boundary-aware text splitter, markdown structural splitter).
//
// See cmd/darkvec for the HTTP ingestion service.
package darkvec
