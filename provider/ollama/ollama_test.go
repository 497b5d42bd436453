package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	darkvec "github.com/darkvec/darkvec"
)

func TestChat(t *testing.T) {
	var gotPath string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: darkvec.ChatMessage{Role: "assistant", Content: "hello back"},
		})
	}))
	defer srv.Close()

	p := New(srv.URL, "test-model")
	got, err := p.Chat(context.Background(), []darkvec.ChatMessage{
		darkvec.SystemMessage("be brief"),
		darkvec.UserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "hello back" {
		t.Errorf("got %q, want %q", got, "hello back")
	}
	if gotPath != "/api/chat" {
		t.Errorf("path = %q, want /api/chat", gotPath)
	}
	if gotBody.Model != "test-model" || gotBody.Stream {
		t.Errorf("request body = %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := New(srv.URL, "missing")
	_, err := p.Chat(context.Background(), []darkvec.ChatMessage{darkvec.UserMessage("hi")})
	var httpErr *darkvec.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}
	if httpErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", httpErr.Status)
	}
}

func TestChatConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	p := New(srv.URL, "test-model")
	_, err := p.Chat(context.Background(), []darkvec.ChatMessage{darkvec.UserMessage("hi")})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(err.Error(), "could not connect to ollama") {
		t.Errorf("error missing connection hint: %v", err)
	}
}

func TestEmbed(t *testing.T) {
	var gotBody embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		out := embedResponse{Embeddings: make([][]float32, len(gotBody.Input))}
		for i := range out.Embeddings {
			out.Embeddings[i] = []float32{float32(i), 0.5}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "embed-model")
	got, err := p.Embed(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(got))
	}
	if got[1][0] != 1 || got[1][1] != 0.5 {
		t.Errorf("embedding order wrong: %v", got)
	}
	if gotBody.Model != "embed-model" || len(gotBody.Input) != 3 {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1}}})
	}))
	defer srv.Close()

	p := NewEmbedding(srv.URL, "embed-model")
	_, err := p.Embed(context.Background(), []string{"one", "two"})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}
