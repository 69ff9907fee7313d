// Package hashlocal implements a deterministic, fully offline embedder.
//
// Texts are tokenized into lowercase words and each token is hashed into a
// fixed number of buckets with term-frequency weighting. The result is a
// crude but stable vector space: identical texts always embed identically,
// overlapping vocabularies score higher than disjoint ones, and no network
// or model files are required. It backs the hash-local mode used for tests
// and air-gapped setups.
package hashlocal

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/NickSmet/mcp-local-memory/pkg/embeddings"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

const (
	// Identifier is the provider's canonical name, matching its mode.
	Identifier = "hash-local"

	// Dimensions is the number of hash buckets.
	Dimensions = 256
)

// Embedder is the deterministic token-hash embedder. The zero value is
// ready to use.
type Embedder struct{}

// NewEmbedder creates a hash-local embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed converts text into a unit-normalized token-hash vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, Dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		v[h.Sum64()%Dimensions]++
	}
	return vector.Normalize(v), nil
}

// EmbedBatch converts texts into embeddings, order-preserving 1:1 with the
// input.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) Dimensions() int { return Dimensions }

func (e *Embedder) Identifier() string { return Identifier }

// RequiresManualFacts is true: this mode carries no LLM alongside it, so
// narratives cannot be split automatically and callers must supply facts.
func (e *Embedder) RequiresManualFacts() bool { return true }

// Close releases resources held by the embedder.
func (e *Embedder) Close() error { return nil }

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

var _ embeddings.Embedder = (*Embedder)(nil)
