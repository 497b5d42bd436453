package darkvec

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrInvalidChunkConfigError(t *testing.T) {
	e := &ErrInvalidChunkConfig{ChunkSize: 10, ChunkOverlap: 20}
	want := "chunk size (10) must be greater than chunk overlap (20)"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrUnsupportedFileTypeError(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"pdf", `file type "pdf" is not supported`},
		{"", `file type "" is not supported`},
	}
	for _, tt := range tests {
		e := &ErrUnsupportedFileType{Ext: tt.ext}
		if got := e.Error(); got != tt.want {
			t.Errorf("ErrUnsupportedFileType{%q}.Error() = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestErrStoreUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := &ErrStore{Op: "get hashes", Err: inner}
	if !errors.Is(e, inner) {
		t.Error("ErrStore should unwrap to the inner error")
	}
	want := "store get hashes: connection refused"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	wrapped := fmt.Errorf("reconcile: %w", e)
	var se *ErrStore
	if !errors.As(wrapped, &se) {
		t.Error("errors.As should find ErrStore through wrapping")
	}
}

func TestErrHTTPError(t *testing.T) {
	e := &ErrHTTP{Status: 500, Body: "internal server error"}
	want := "http 500: internal server error"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
