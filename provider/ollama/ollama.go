// Package ollama implements darkvec.Provider and darkvec.EmbeddingProvider
// over the Ollama HTTP API (/api/chat non-streaming, /api/embed batched).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	darkvec "github.com/darkvec/darkvec"
)

// Option configures a Provider or EmbeddingProvider.
type Option func(*clientConfig)

type clientConfig struct {
	client *http.Client
}

// WithHTTPClient sets a custom HTTP client (e.g. for timeouts or proxies).
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.client = c }
}

// Chat and embed requests go to a local model by default; generation can
// take a while on modest hardware.
const defaultTimeout = 180 * time.Second

func newConfig(opts []Option) clientConfig {
	cfg := clientConfig{client: &http.Client{Timeout: defaultTimeout}}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Provider implements darkvec.Provider using Ollama's /api/chat endpoint.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ darkvec.Provider = (*Provider)(nil)

// New creates a chat Provider.
//
// baseURL is the Ollama API base (e.g. "http://localhost:11434").
func New(baseURL, model string, opts ...Option) *Provider {
	cfg := newConfig(opts)
	return &Provider{baseURL: baseURL, model: model, client: cfg.client}
}

type chatRequest struct {
	Model    string                `json:"model"`
	Messages []darkvec.ChatMessage `json:"messages"`
	Stream   bool                  `json:"stream"`
}

type chatResponse struct {
	Message darkvec.ChatMessage `json:"message"`
}

// Chat sends a non-streaming chat request and returns the reply content.
func (p *Provider) Chat(ctx context.Context, messages []darkvec.ChatMessage) (string, error) {
	body := chatRequest{Model: p.model, Messages: messages, Stream: false}

	resp, err := post(ctx, p.client, p.baseURL, "/api/chat", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpErr(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Message.Content, nil
}

// EmbeddingProvider implements darkvec.EmbeddingProvider using Ollama's
// /api/embed endpoint, which accepts a batch of inputs per call.
type EmbeddingProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ darkvec.EmbeddingProvider = (*EmbeddingProvider)(nil)

// NewEmbedding creates an EmbeddingProvider.
func NewEmbedding(baseURL, model string, opts ...Option) *EmbeddingProvider {
	cfg := newConfig(opts)
	return &EmbeddingProvider{baseURL: baseURL, model: model, client: cfg.client}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding per input text, in input order.
func (p *EmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := embedRequest{Model: p.model, Input: texts}

	resp, err := post(ctx, p.client, p.baseURL, "/api/embed", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(resp)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

// post marshals body and sends it to baseURL+path. Transport-level failures
// come back wrapped with a hint that ollama may not be running.
func post(ctx context.Context, client *http.Client, baseURL, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not connect to ollama, check that it is running and accepting connections at %s: %w", baseURL, err)
	}
	return resp, nil
}

// httpErr reads the response body and returns a typed HTTP error.
func httpErr(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &darkvec.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
}
