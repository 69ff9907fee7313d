// Package embeddings defines the capability contract an embedding provider
// must satisfy to back an embedding mode.
package embeddings

import "context"

// Embedder provides text embedding capabilities for one embedding mode.
// Dimensionality is fixed per identifier and must match the mode
// namespace's declared dimension.
type Embedder interface {
	// Embed converts one text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts texts into embeddings, order-preserving and 1:1
	// with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the fixed dimensionality of produced vectors.
	Dimensions() int

	// Identifier names the provider (e.g. "openai-small").
	Identifier() string

	// RequiresManualFacts reports whether memories embedded in this mode
	// must be created with caller-supplied facts because no splitter is
	// available alongside the provider.
	RequiresManualFacts() bool

	// Close releases any resources held by the embedder.
	Close() error
}

// CredentialValidator is implemented by providers backed by a remote
// credential. Validate issues a minimal provider call to check it.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context) error
}
