package darkvec

import "fmt"

// ErrInvalidChunkConfig reports a splitter configured with an overlap that
// is not strictly smaller than the chunk size. It is a caller bug and is
// surfaced eagerly, never retried.
type ErrInvalidChunkConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

func (e *ErrInvalidChunkConfig) Error() string {
	return fmt.Sprintf("chunk size (%d) must be greater than chunk overlap (%d)", e.ChunkSize, e.ChunkOverlap)
}

// ErrUnsupportedFileType reports a file extension with no registered
// splitter. It is surfaced per file and does not abort a batch.
type ErrUnsupportedFileType struct {
	Ext string
}

func (e *ErrUnsupportedFileType) Error() string {
	return fmt.Sprintf("file type %q is not supported", e.Ext)
}

// ErrStore wraps a store-access failure with the operation that produced
// it. Any store failure aborts the file's reconciliation as a whole.
type ErrStore struct {
	Op  string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *ErrStore) Unwrap() error { return e.Err }

// ErrHTTP reports a non-2xx response from an HTTP collaborator.
type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}
