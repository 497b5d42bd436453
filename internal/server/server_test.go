package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	darkvec "github.com/darkvec/darkvec"
	"github.com/darkvec/darkvec/ingest"
)

// fakeIngestor marks .md files processed and everything else unsupported.
type fakeIngestor struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeIngestor) IngestFile(_ context.Context, path string) (ingest.IngestResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if f.err != nil {
		return ingest.IngestResult{Path: path}, f.err
	}
	if filepath.Ext(path) != ".md" {
		return ingest.IngestResult{Path: path}, &darkvec.ErrUnsupportedFileType{Ext: filepath.Ext(path)}
	}
	return ingest.IngestResult{Path: path, Processed: true, ChunkCount: 1}, nil
}

type fakeCleaner struct {
	removed []string
	err     error
}

func (f *fakeCleaner) Clean(context.Context) ([]string, error) {
	return f.removed, f.err
}

type fakeStore struct {
	deleted []string
	err     error
}

func (f *fakeStore) DeleteByPath(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeStore) GetHashesByPath(context.Context, string) ([]darkvec.ChunkHashRecord, error) {
	return nil, nil
}
func (f *fakeStore) DeleteByContentHash(context.Context, string, string) error { return nil }
func (f *fakeStore) ContentExists(context.Context, string) (bool, error)       { return false, nil }
func (f *fakeStore) Insert(context.Context, darkvec.EnrichedChunk) (string, error) {
	return "", nil
}
func (f *fakeStore) ListPaths(context.Context) ([]string, error) { return nil, nil }
func (f *fakeStore) Init(context.Context) error                  { return nil }
func (f *fakeStore) Close() error                                { return nil }

func newTestServer(t *testing.T, dataDir string) (*Server, *fakeIngestor, *fakeCleaner, *fakeStore) {
	t.Helper()
	ing := &fakeIngestor{}
	cl := &fakeCleaner{}
	st := &fakeStore{}
	s := New(ing, cl, st, Config{DataDir: dataDir, Concurrency: 2}, nil)
	return s, ing, cl, st
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	s, _, _, _ := newTestServer(t, t.TempDir())
	rec := doJSON(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	s, ing, _, _ := newTestServer(t, dir)

	rec := doJSON(t, s, http.MethodPost, "/store/process_files",
		`{"file_paths": ["notes/a.md", "notes/b.md"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.ProcessedFiles) != 2 {
		t.Errorf("processed = %v", resp.ProcessedFiles)
	}
	want := filepath.Join(dir, "notes/a.md")
	if resp.ProcessedFiles[0] != want {
		t.Errorf("path = %q, want %q", resp.ProcessedFiles[0], want)
	}
	if len(ing.paths) != 2 {
		t.Errorf("ingestor saw %d paths", len(ing.paths))
	}
}

func TestProcessFilesUnsupportedTypeDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	s, _, _, _ := newTestServer(t, dir)

	rec := doJSON(t, s, http.MethodPost, "/store/process_files",
		`{"file_paths": ["a.md", "image.png"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.ProcessedFiles) != 1 || len(resp.UnprocessedFiles) != 1 {
		t.Errorf("processed = %v, unprocessed = %v", resp.ProcessedFiles, resp.UnprocessedFiles)
	}
}

func TestProcessFilesPipelineErrorAborts(t *testing.T) {
	s, ing, _, _ := newTestServer(t, t.TempDir())
	ing.err = errors.New("store down")

	rec := doJSON(t, s, http.MethodPost, "/store/process_files",
		`{"file_paths": ["a.md"]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Error, "store down") {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestProcessAllWalksDataDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "sub/b.md", "sub/deep/c.md"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# doc\ncontent"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, ing, _, _ := newTestServer(t, dir)

	rec := doJSON(t, s, http.MethodPost, "/store/process_all", "{}")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(ing.paths) != 3 {
		t.Errorf("ingestor saw %v, want 3 files", ing.paths)
	}
}

func TestDeleteFiles(t *testing.T) {
	dir := t.TempDir()
	s, _, _, st := newTestServer(t, dir)

	rec := doJSON(t, s, http.MethodPost, "/store/delete_files",
		`{"file_paths": ["old/doc.md"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := filepath.Join(dir, "old/doc.md")
	if len(st.deleted) != 1 || st.deleted[0] != want {
		t.Errorf("deleted = %v, want [%s]", st.deleted, want)
	}
}

func TestCleanup(t *testing.T) {
	s, _, cl, _ := newTestServer(t, t.TempDir())
	cl.removed = []string{"/data/gone.md"}

	rec := doJSON(t, s, http.MethodPost, "/store/cleanup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "/data/gone.md") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCleanupFailure(t *testing.T) {
	s, _, cl, _ := newTestServer(t, t.TempDir())
	cl.err = errors.New("connection refused")

	rec := doJSON(t, s, http.MethodPost, "/store/cleanup", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
