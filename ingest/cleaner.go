package ingest

import (
	"context"
	"log/slog"
	"os"

	darkvec "github.com/darkvec/darkvec"
)

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerLogger sets the logger used for cleanup logging.
func WithCleanerLogger(l *slog.Logger) CleanerOption {
	return func(c *Cleaner) { c.logger = l }
}

// Cleaner removes store records whose source file no longer exists on
// disk. It is the inverse of ingestion: ingestion tracks files as they
// change, the cleaner catches files that disappeared entirely.
type Cleaner struct {
	store  darkvec.VectorStore
	logger *slog.Logger
}

// NewCleaner creates a Cleaner over the given store.
func NewCleaner(store darkvec.VectorStore, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{store: store, logger: nopLogger}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Clean walks every file path present in the store and deletes the records
// of paths that are no longer regular files on disk. It returns the paths
// it removed.
func (c *Cleaner) Clean(ctx context.Context) ([]string, error) {
	paths, err := c.store.ListPaths(ctx)
	if err != nil {
		return nil, &darkvec.ErrStore{Op: "list paths", Err: err}
	}

	var removed []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			continue
		}
		c.logger.Info("removing records for missing file", slog.String("path", path))
		if err := c.store.DeleteByPath(ctx, path); err != nil {
			return removed, &darkvec.ErrStore{Op: "delete by path", Err: err}
		}
		removed = append(removed, path)
	}
	return removed, nil
}
