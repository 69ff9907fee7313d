package testutils

import (
	"context"
	"fmt"

	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dims is the reported dimensionality. Defaults apply from the field
	// when set; otherwise the default embedding's length is used.
	Dims int

	// Name is the reported identifier.
	Name string

	// Manual mirrors providers that cannot split narratives.
	Manual bool

	// FailOn causes Embed to return an error when the input text matches.
	FailOn string

	// DropLast makes EmbedBatch return one embedding fewer than requested,
	// breaking the order-preserving 1:1 contract.
	DropLast bool

	// Calls counts Embed and EmbedBatch invocations.
	Calls int
}

func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dims:       dims,
		Name:       "mock",
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.Calls++

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Deterministic default: a unit vector leaning on the text length.
	v := make([]float32, m.Dims)
	for i := range v {
		v[i] = float32((len(text)+i)%7) + 1
	}
	vector.Normalize(v)
	return v, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if m.DropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int {
	return m.Dims
}

func (m *MockEmbedder) Identifier() string {
	return m.Name
}

func (m *MockEmbedder) RequiresManualFacts() bool {
	return m.Manual
}

func (m *MockEmbedder) Close() error {
	return nil
}
