package darkvec

// --- Domain types ---

// Chunk is the unit of text produced by a splitter and handed to
// enrichment and persistence. Content may be header-tagged (see
// split.Markdown); Metadata carries the header context the chunk was
// produced under.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata holds per-chunk metadata. Headers maps header keys
// ("Header1".."Header4") to the most recent header text seen at that level
// when the chunk was assembled. FilePath is set by the ingestor just before
// persistence.
type ChunkMetadata struct {
	Headers  map[string]string `json:"headers"`
	FilePath string            `json:"file_path,omitempty"`
}

// EnrichedChunk is a Chunk after summarization: FullContext prepends the
// file and chunk summaries to the original content and is what gets
// embedded. ContentHash identifies the original content for deduplication.
type EnrichedChunk struct {
	Chunk
	ContentHash string    `json:"content_hash"`
	FullContext string    `json:"full_context"`
	Embedding   []float32 `json:"-"`
}

// ChunkHashRecord is the persisted pairing of a store-assigned identifier
// and a content hash, scoped to a file path. The differ reconciles these
// against freshly computed hashes on every re-ingestion.
type ChunkHashRecord struct {
	ID          string `json:"id"`
	ContentHash string `json:"content_hash"`
}

// --- LLM protocol types ---

type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// --- ChatMessage constructors ---

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Content: text}
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}
