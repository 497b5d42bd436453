package ingest

import (
	"context"
	"fmt"

	darkvec "github.com/darkvec/darkvec"
)

// memStore is an in-memory VectorStore for tests. Individual operations
// can be made to fail by op name.
type memStore struct {
	records []memRecord
	nextID  int

	insertCount int
	deleteCount int
	fail        map[string]error
}

type memRecord struct {
	id   string
	path string
	hash string
}

func newMemStore() *memStore {
	return &memStore{fail: map[string]error{}}
}

func (s *memStore) failOn(op string, err error) { s.fail[op] = err }

// seed adds a stored record directly, bypassing Insert bookkeeping.
func (s *memStore) seed(path, content string) {
	s.nextID++
	s.records = append(s.records, memRecord{
		id:   fmt.Sprintf("rec-%d", s.nextID),
		path: path,
		hash: darkvec.HashContent(content),
	})
}

func (s *memStore) GetHashesByPath(_ context.Context, path string) ([]darkvec.ChunkHashRecord, error) {
	if err := s.fail["get"]; err != nil {
		return nil, err
	}
	var out []darkvec.ChunkHashRecord
	for _, r := range s.records {
		if r.path == path {
			out = append(out, darkvec.ChunkHashRecord{ID: r.id, ContentHash: r.hash})
		}
	}
	return out, nil
}

func (s *memStore) DeleteByContentHash(_ context.Context, path, hash string) error {
	if err := s.fail["delete"]; err != nil {
		return err
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.path == path && r.hash == hash {
			s.deleteCount++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return nil
}

func (s *memStore) ContentExists(_ context.Context, hash string) (bool, error) {
	if err := s.fail["exists"]; err != nil {
		return false, err
	}
	for _, r := range s.records {
		if r.hash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Insert(_ context.Context, chunk darkvec.EnrichedChunk) (string, error) {
	if err := s.fail["insert"]; err != nil {
		return "", err
	}
	s.nextID++
	s.insertCount++
	id := fmt.Sprintf("rec-%d", s.nextID)
	s.records = append(s.records, memRecord{
		id:   id,
		path: chunk.Metadata.FilePath,
		hash: chunk.ContentHash,
	})
	return id, nil
}

func (s *memStore) DeleteByPath(_ context.Context, path string) error {
	if err := s.fail["deletePath"]; err != nil {
		return err
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.path == path {
			s.deleteCount++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return nil
}

func (s *memStore) ListPaths(_ context.Context) ([]string, error) {
	if err := s.fail["list"]; err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range s.records {
		if !seen[r.path] {
			seen[r.path] = true
			out = append(out, r.path)
		}
	}
	return out, nil
}

func (s *memStore) Init(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

// mockProvider returns a fixed reply and records the system prompts it saw.
type mockProvider struct {
	reply         string
	err           error
	calls         int
	systemPrompts []string
	userMessages  []string
}

func (p *mockProvider) Chat(_ context.Context, messages []darkvec.ChatMessage) (string, error) {
	p.calls++
	for _, m := range messages {
		switch m.Role {
		case "system":
			p.systemPrompts = append(p.systemPrompts, m.Content)
		case "user":
			p.userMessages = append(p.userMessages, m.Content)
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

// mockEmbedding returns fixed-width vectors and records batch sizes.
type mockEmbedding struct {
	err        error
	calls      int
	batchSizes []int
}

func (m *mockEmbedding) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3, 0.4}
	}
	return out, nil
}
