package observer

import (
	"context"
	"errors"
	"testing"

	darkvec "github.com/darkvec/darkvec"
	"github.com/darkvec/darkvec/ingest"
)

// mockProvider for observer tests.
type mockProvider struct {
	reply string
	err   error
}

func (m *mockProvider) Chat(context.Context, []darkvec.ChatMessage) (string, error) {
	return m.reply, m.err
}

// mockEmbedding for observer tests.
type mockEmbedding struct {
	vecs [][]float32
	err  error
}

func (m *mockEmbedding) Embed(context.Context, []string) ([][]float32, error) {
	return m.vecs, m.err
}

// testInstruments creates a no-op Instruments using the global OTEL providers
// (which are no-ops by default). This is safe for testing delegation behavior
// without any real OTEL backend.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

func TestObservedProviderChat(t *testing.T) {
	inner := &mockProvider{reply: "hello from LLM"}
	op := WrapProvider(inner, "m", testInstruments(t))

	got, err := op.Chat(context.Background(), []darkvec.ChatMessage{darkvec.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Chat returned unexpected error: %v", err)
	}
	if got != "hello from LLM" {
		t.Errorf("Chat = %q, want %q", got, "hello from LLM")
	}
}

func TestObservedProviderChatError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	op := WrapProvider(&mockProvider{err: wantErr}, "m", testInstruments(t))

	_, err := op.Chat(context.Background(), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Chat error = %v, want %v", err, wantErr)
	}
}

func TestObservedEmbedding(t *testing.T) {
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	oe := WrapEmbedding(&mockEmbedding{vecs: want}, "m", testInstruments(t))

	got, err := oe.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed returned unexpected error: %v", err)
	}
	if len(got) != 2 || got[0][0] != 0.1 {
		t.Errorf("Embed = %v, want %v", got, want)
	}
}

// mockIngestor for observer tests.
type mockIngestor struct {
	result ingest.IngestResult
	err    error
	path   string
}

func (m *mockIngestor) IngestFile(_ context.Context, path string) (ingest.IngestResult, error) {
	m.path = path
	return m.result, m.err
}

func TestObservedIngestor(t *testing.T) {
	inner := &mockIngestor{result: ingest.IngestResult{Path: "/data/a.md", Processed: true, ChunkCount: 3}}
	oi := WrapIngestor(inner, testInstruments(t))

	got, err := oi.IngestFile(context.Background(), "/data/a.md")
	if err != nil {
		t.Fatalf("IngestFile returned unexpected error: %v", err)
	}
	if inner.path != "/data/a.md" {
		t.Errorf("inner ingestor saw path %q, want %q", inner.path, "/data/a.md")
	}
	if got.ChunkCount != 3 || !got.Processed {
		t.Errorf("IngestFile = %+v, want the inner result", got)
	}
}

func TestObservedIngestorError(t *testing.T) {
	wantErr := errors.New("store offline")
	oi := WrapIngestor(&mockIngestor{err: wantErr}, testInstruments(t))

	_, err := oi.IngestFile(context.Background(), "/data/a.md")
	if !errors.Is(err, wantErr) {
		t.Errorf("IngestFile error = %v, want %v", err, wantErr)
	}
}

func TestObservedEmbeddingError(t *testing.T) {
	wantErr := errors.New("embedding backend down")
	oe := WrapEmbedding(&mockEmbedding{err: wantErr}, "m", testInstruments(t))

	_, err := oe.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Embed error = %v, want %v", err, wantErr)
	}
}
