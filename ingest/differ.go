package ingest

import (
	"context"
	"log/slog"

	darkvec "github.com/darkvec/darkvec"
)

// DifferOption configures a Differ.
type DifferOption func(*Differ)

// WithDifferLogger sets the logger used for reconciliation logging.
func WithDifferLogger(l *slog.Logger) DifferOption {
	return func(d *Differ) { d.logger = l }
}

// Differ reconciles a file's freshly split chunks against the content
// hashes already persisted for that file, purging stale records and
// filtering out chunks whose content is stored anywhere else.
type Differ struct {
	store  darkvec.VectorStore
	logger *slog.Logger
}

// NewDiffer creates a Differ over the given store.
func NewDiffer(store darkvec.VectorStore, opts ...DifferOption) *Differ {
	d := &Differ{store: store, logger: nopLogger}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Reconcile compares chunks against the records stored for path.
//
// Stored records whose hash no longer occurs among the new chunks are
// deleted before anything else; matching is by hash set, not position, so
// reordered-but-unchanged content is never purged. It then returns, in
// original order, the chunks whose content hash does not yet exist
// anywhere in the store. Any store failure aborts the whole reconciliation;
// no partial state is repaired here.
func (d *Differ) Reconcile(ctx context.Context, path string, chunks []darkvec.Chunk) ([]darkvec.Chunk, error) {
	hashes := make([]string, len(chunks))
	hashSet := make(map[string]struct{}, len(chunks))
	for i, c := range chunks {
		hashes[i] = darkvec.HashContent(c.Content)
		hashSet[hashes[i]] = struct{}{}
	}

	stored, err := d.store.GetHashesByPath(ctx, path)
	if err != nil {
		return nil, &darkvec.ErrStore{Op: "get hashes by path", Err: err}
	}

	for _, rec := range stored {
		if _, ok := hashSet[rec.ContentHash]; ok {
			continue
		}
		d.logger.Debug("deleting stale chunk",
			slog.String("path", path),
			slog.String("content_hash", rec.ContentHash))
		if err := d.store.DeleteByContentHash(ctx, path, rec.ContentHash); err != nil {
			return nil, &darkvec.ErrStore{Op: "delete by content hash", Err: err}
		}
	}

	var fresh []darkvec.Chunk
	for i, c := range chunks {
		exists, err := d.store.ContentExists(ctx, hashes[i])
		if err != nil {
			return nil, &darkvec.ErrStore{Op: "content exists", Err: err}
		}
		if exists {
			continue
		}
		fresh = append(fresh, c)
	}

	d.logger.Debug("reconciled file",
		slog.String("path", path),
		slog.Int("chunks", len(chunks)),
		slog.Int("fresh", len(fresh)))
	return fresh, nil
}
