// Package openai implements the embeddings.Embedder contract against the
// OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

const (
	// Identifier is the provider's canonical name, matching its mode.
	Identifier = "openai-small"

	// Model is the backing embedding model.
	Model = goopenai.SmallEmbedding3

	// Dimensions is fixed for text-embedding-3-small.
	Dimensions = 1536
)

// Embedder wraps the OpenAI embeddings API behind a circuit breaker so a
// flapping upstream fails fast instead of stalling every add and backfill.
type Embedder struct {
	client  *goopenai.Client
	breaker *gobreaker.CircuitBreaker
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible servers.
	BaseURL string
}

// NewEmbedder creates an embedder using the OpenAI embeddings API.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, memory.Validationf("openai api key is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client: goopenai.NewClientWithConfig(clientCfg),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "openai-embeddings",
		}),
	}, nil
}

// Embed converts one text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch converts texts into embeddings, order-preserving 1:1 with the
// input.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	res, err := e.breaker.Execute(func() (any, error) {
		return e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
			Model: Model,
			Input: texts,
		})
	})
	if err != nil {
		return nil, e.classify("embed", err)
	}

	resp := res.(goopenai.EmbeddingResponse)
	if len(resp.Data) != len(texts) {
		return nil, memory.ProviderError{
			Provider: Identifier,
			Op:       "embed",
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	// The API may return data out of order; Index restores input order.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, memory.ProviderError{
				Provider: Identifier,
				Op:       "embed",
				Err:      fmt.Errorf("embedding index %d out of range", d.Index),
			}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// ValidateCredential issues a minimal models call to check the API key.
func (e *Embedder) ValidateCredential(ctx context.Context) error {
	_, err := e.client.ListModels(ctx)
	if err != nil {
		return memory.AuthenticationError{Provider: Identifier, Err: err}
	}
	return nil
}

// classify maps an API failure onto the error taxonomy: credential
// rejections become AuthenticationError, everything else ProviderError.
func (e *Embedder) classify(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
		return memory.AuthenticationError{Provider: Identifier, Err: err}
	}
	return memory.ProviderError{Provider: Identifier, Op: op, Err: err}
}

func (e *Embedder) Dimensions() int { return Dimensions }

func (e *Embedder) Identifier() string { return Identifier }

// RequiresManualFacts is false: the remote stack includes the narrative
// splitter, so facts can be derived automatically.
func (e *Embedder) RequiresManualFacts() bool { return false }

// Close releases resources held by the embedder.
func (e *Embedder) Close() error { return nil }

var (
	_ embeddings.Embedder            = (*Embedder)(nil)
	_ embeddings.CredentialValidator = (*Embedder)(nil)
)
