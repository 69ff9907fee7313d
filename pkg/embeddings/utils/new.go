// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/embeddings/hashlocal"
	"github.com/NickSmet/mcp-local-memory/pkg/embeddings/ollama"
	"github.com/NickSmet/mcp-local-memory/pkg/embeddings/openai"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// NewEmbedderOpts carries the provider settings each mode may need.
type NewEmbedderOpts struct {
	// OpenAIAPIKey backs the openai-small mode.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the OpenAI endpoint (optional).
	OpenAIBaseURL string

	// OllamaURL backs the ollama-nomic mode (optional, defaults apply).
	OllamaURL string

	// OllamaModel overrides the Ollama model (optional).
	OllamaModel string
}

// NewEmbedder constructs the provider backing the given mode.
func NewEmbedder(mode vector.Mode, o NewEmbedderOpts) (embeddings.Embedder, error) {
	switch mode {
	case vector.ModeOpenAISmall:
		return openai.NewEmbedder(openai.Config{
			APIKey:  o.OpenAIAPIKey,
			BaseURL: o.OpenAIBaseURL,
		})
	case vector.ModeOllamaNomic:
		return ollama.NewEmbedder(ollama.Config{
			BaseURL: o.OllamaURL,
			Model:   o.OllamaModel,
		})
	case vector.ModeHashLocal:
		return hashlocal.NewEmbedder(), nil
	default:
		return nil, fmt.Errorf("%w: %s", vector.ErrUnknownMode, mode)
	}
}
