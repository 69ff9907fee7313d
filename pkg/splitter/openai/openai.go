// Package openai implements the narrative splitter on the OpenAI chat
// completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/splitter"
)

const (
	// Identifier names the provider in errors.
	Identifier = "openai-splitter"

	// DefaultModel is the chat model used for splitting.
	DefaultModel = goopenai.GPT4oMini
)

const systemPrompt = `You decompose a short narrative into atomic factual statements.

Rules:
- Each statement expresses exactly one fact and stands alone without the others.
- Preserve the narrative's meaning; do not invent, merge, or editorialize.
- Keep the original order of information.
- Respond with a JSON array of strings and nothing else.

Example input: "User prefers dark mode. Uses a minimal editor theme."
Example output: ["User prefers dark mode","User uses a minimal editor theme"]`

// Splitter calls the chat API to break narratives into facts.
type Splitter struct {
	client *goopenai.Client
	model  string
}

// Config holds configuration for the OpenAI splitter.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint (optional).
	BaseURL string

	// Model overrides the chat model (optional).
	Model string
}

// NewSplitter creates a splitter backed by the OpenAI chat API.
func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.APIKey == "" {
		return nil, memory.Validationf("openai api key is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Splitter{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Split decomposes text into 1..N atomic statements.
func (s *Splitter) Split(ctx context.Context, text string) ([]string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, memory.ProviderError{Provider: Identifier, Op: "split", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, memory.ProviderError{Provider: Identifier, Op: "split", Err: fmt.Errorf("no choices returned")}
	}

	facts, err := parseFacts(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, memory.ProviderError{Provider: Identifier, Op: "split", Err: err}
	}
	return facts, nil
}

// parseFacts decodes the model's JSON array, tolerating code fences.
func parseFacts(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var facts []string
	if err := json.Unmarshal([]byte(content), &facts); err != nil {
		return nil, fmt.Errorf("decoding statement list: %w", err)
	}

	out := facts[:0]
	for _, f := range facts {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("splitter returned no statements")
	}
	return out, nil
}

var _ splitter.Splitter = (*Splitter)(nil)
