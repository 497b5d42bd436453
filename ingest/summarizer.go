package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	darkvec "github.com/darkvec/darkvec"
)

const (
	summarizeChunkPrompt = "You are an AI that extracts summaries from document chunks.\n" +
		"Create a concise summary of the main points in this chunk. Keep it " +
		"concise but informative."

	summarizeFilePrompt = "You are an AI that extracts summaries from document chunks.\n" +
		"The following is the beginning + the end of a file. Create a concise " +
		"summary of what this file is about. It should be no longer than two " +
		"short sentences."

	byAuthorPrompt = "IMPORTANT INFORMATION: This content was written by " +
		"{{full_name}}. Any mentions of 'I', 'me', or 'my' refer directly to " +
		"{{pronoun_two}}self. When creating the summary, ALWAYS replace first-person " +
		"references with {{full_name}}'s name to ensure clarity. DO NOT use " +
		"generic terms like 'the author' or 'the engineer'. The summary must " +
		"make it abundantly clear that the content is about {{full_name}}."

	fileSummaryContext = "File summary (for background only):\n" +
		"<file_summary>\n{{file_summary}}\n</file_summary>\n" +
		"Now, summarize the chunk below, focussing ONLY on the chunk's unique " +
		"content, using the file summary only for additional context."
)

// fileSummaryChunks caps how many chunks contribute to the file-level
// summary: the first half from the start of the file, the rest from its end.
const fileSummaryChunks = 4

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithAuthor sets the author identity used when summarizing content the
// author wrote. fullName replaces first-person references; pronoun is the
// objective form ("him", "her", "them") used to build "themself" style
// references.
func WithAuthor(fullName, pronoun string) SummarizerOption {
	return func(s *Summarizer) {
		s.fullName = fullName
		s.pronoun = pronoun
	}
}

// WithSummarizerLogger sets the logger used for summarization logging.
func WithSummarizerLogger(l *slog.Logger) SummarizerOption {
	return func(s *Summarizer) { s.logger = l }
}

// Summarizer enriches chunks with LLM-generated context before embedding:
// a file-level summary built from the document's first and last chunks, and
// a per-chunk summary that uses the file summary as background only.
type Summarizer struct {
	provider darkvec.Provider
	fullName string
	pronoun  string
	logger   *slog.Logger
}

// NewSummarizer creates a Summarizer backed by the given provider.
func NewSummarizer(provider darkvec.Provider, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{provider: provider, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProcessChunks summarizes toProcess, which must be a subset of all in
// original order. The full list supplies the file-level context even for
// chunks that need no new embedding. An empty toProcess returns an empty
// result without any provider call; any provider error aborts the batch.
func (s *Summarizer) ProcessChunks(ctx context.Context, all, toProcess []darkvec.Chunk, byAuthor bool) ([]darkvec.EnrichedChunk, error) {
	if len(toProcess) == 0 {
		return []darkvec.EnrichedChunk{}, nil
	}

	fileSummary, err := s.fileSummary(ctx, all, byAuthor)
	if err != nil {
		return nil, err
	}

	enriched := make([]darkvec.EnrichedChunk, 0, len(toProcess))
	for _, chunk := range toProcess {
		ec, err := s.processChunk(ctx, fileSummary, chunk, byAuthor)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, ec)
	}
	return enriched, nil
}

// fileSummary produces a short summary of the whole document from its
// first and last chunks. Documents with at most one chunk get none.
func (s *Summarizer) fileSummary(ctx context.Context, chunks []darkvec.Chunk, byAuthor bool) (string, error) {
	n := fileSummaryChunks
	if len(chunks) < n {
		n = len(chunks)
	}
	if n <= 1 {
		return "", nil
	}

	head := (n + 1) / 2
	tail := n - head

	parts := make([]string, 0, n+1)
	for _, c := range chunks[:head] {
		parts = append(parts, c.Content)
	}
	parts = append(parts, "...")
	for _, c := range chunks[len(chunks)-tail:] {
		parts = append(parts, c.Content)
	}

	prompt := summarizeFilePrompt
	if byAuthor {
		prompt = prompt + " " + s.authorPrompt()
	}

	summary, err := s.provider.Chat(ctx, []darkvec.ChatMessage{
		darkvec.SystemMessage(prompt),
		darkvec.UserMessage(strings.Join(parts, "\n\n")),
	})
	if err != nil {
		return "", fmt.Errorf("file summary: %w", err)
	}
	return summary, nil
}

// processChunk summarizes a single chunk and assembles its full context:
// the file summary (when present), the chunk summary, then the original
// content.
func (s *Summarizer) processChunk(ctx context.Context, fileSummary string, chunk darkvec.Chunk, byAuthor bool) (darkvec.EnrichedChunk, error) {
	prompt := summarizeChunkPrompt
	if byAuthor {
		prompt = prompt + " " + s.authorPrompt()
	}
	if fileSummary != "" {
		ctxPrompt := strings.ReplaceAll(fileSummaryContext, "{{file_summary}}", fileSummary)
		prompt = prompt + "\n" + ctxPrompt
	}

	summary, err := s.provider.Chat(ctx, []darkvec.ChatMessage{
		darkvec.SystemMessage(prompt),
		darkvec.UserMessage(chunk.Content),
	})
	if err != nil {
		return darkvec.EnrichedChunk{}, fmt.Errorf("chunk summary: %w", err)
	}

	var full strings.Builder
	if fileSummary != "" {
		fmt.Fprintf(&full, "<file_summary>\n%s\n</file_summary>\n\n", fileSummary)
	}
	fmt.Fprintf(&full, "<chunk_summary>\n%s\n</chunk_summary>", summary)
	fmt.Fprintf(&full, "\n\n%s", chunk.Content)

	s.logger.Debug("summarized chunk",
		slog.String("content_hash", darkvec.HashContent(chunk.Content)),
		slog.Bool("by_author", byAuthor))

	return darkvec.EnrichedChunk{
		Chunk:       chunk,
		ContentHash: darkvec.HashContent(chunk.Content),
		FullContext: full.String(),
	}, nil
}

func (s *Summarizer) authorPrompt() string {
	return strings.NewReplacer(
		"{{full_name}}", s.fullName,
		"{{pronoun_two}}", s.pronoun,
	).Replace(byAuthorPrompt)
}
