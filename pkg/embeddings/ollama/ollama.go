// Package ollama implements the embeddings.Embedder contract against a
// local Ollama instance's embedding API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

const (
	// Identifier is the provider's canonical name, matching its mode.
	Identifier = "ollama-nomic"

	// DefaultModel is the default embedding model.
	DefaultModel = "nomic-embed-text"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// Dimensions is fixed for nomic-embed-text.
	Dimensions = 768
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the Ollama embedder.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use. Defaults to DefaultModel.
	Model string
}

// embedRequest is the request body for Ollama's embedding API. Input may be
// a single string or an array of strings.
type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbedder creates a new embedder using Ollama's embedding API.
func NewEmbedder(cfg Config) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed converts one text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch converts texts into embeddings, order-preserving 1:1 with the
// input. Ollama's /api/embed preserves input order for array inputs.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, len(texts))
}

func (e *Embedder) embed(ctx context.Context, input any, want int) ([][]float32, error) {
	jsonBody, err := json.Marshal(embedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, e.fail("embed", fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, e.fail("embed", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, e.fail("embed", fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, e.fail("embed", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body)))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, e.fail("embed", fmt.Errorf("decoding response: %w", err))
	}

	if len(embedResp.Embeddings) != want {
		return nil, e.fail("embed", fmt.Errorf("got %d embeddings for %d inputs", len(embedResp.Embeddings), want))
	}

	return embedResp.Embeddings, nil
}

func (e *Embedder) fail(op string, err error) error {
	return memory.ProviderError{Provider: Identifier, Op: op, Err: err}
}

func (e *Embedder) Dimensions() int { return Dimensions }

func (e *Embedder) Identifier() string { return Identifier }

// RequiresManualFacts is false: the splitter, when configured, works for
// this mode too.
func (e *Embedder) RequiresManualFacts() bool { return false }

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
