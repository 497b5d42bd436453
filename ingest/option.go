package ingest

import (
	"context"
	"log/slog"
)

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithChunkSize sets the maximum chunk size in bytes passed to splitters.
func WithChunkSize(n int) Option {
	return func(ing *Ingestor) { ing.chunkSize = n }
}

// WithChunkOverlap sets the chunk overlap in bytes passed to splitters.
func WithChunkOverlap(n int) Option {
	return func(ing *Ingestor) { ing.chunkOverlap = n }
}

// WithBatchSize sets the number of chunks per Embed() call (default 16).
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) { ing.batchSize = n }
}

// WithAuthorName sets the name matched against path segments to decide
// whether a file was written by the author.
func WithAuthorName(name string) Option {
	return func(ing *Ingestor) { ing.authorName = name }
}

// WithAuthorIdentity sets the full name and objective pronoun used in
// summarization prompts for content the author wrote.
func WithAuthorIdentity(fullName, pronoun string) Option {
	return func(ing *Ingestor) {
		ing.authorFullName = fullName
		ing.authorPronoun = pronoun
	}
}

// WithLogger sets the logger for the ingestor and its differ and
// summarizer. Logging is off by default.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
