// Package storage defines the entity-store contract: durable records for
// memories and their owned facts, plus the compound atomic writes that keep
// memories, facts, and vector rows consistent.
//
// Ownership is enforced as a query predicate: update and delete operations
// verify that the memory exists and belongs to the calling context, and on
// mismatch they return a NotFoundError rather than touching anything.
package storage

import (
	"context"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// CreateMemoryParams holds parameters for the compound create: one memory,
// its initial facts, and their vectors in a single namespace, written
// atomically.
type CreateMemoryParams struct {
	Context string
	Text    string
	Tags    []string

	// Facts are the atomic statements owned by the memory, in order.
	Facts []string

	// Mode is the namespace receiving the initial vectors. Ignored when
	// Embeddings is empty.
	Mode vector.Mode

	// Embeddings is 1:1 with Facts. Empty means no vectors are written.
	Embeddings [][]float32
}

// ReplaceTextParams holds parameters for a full-text update: the memory's
// existing facts are deleted (cascading their vectors in every namespace)
// and replaced wholesale, all within one transaction.
type ReplaceTextParams struct {
	Context  string
	MemoryID string
	Text     string

	Facts      []string
	Mode       vector.Mode
	Embeddings [][]float32
}

// ListMemoriesParams holds parameters for listing memories.
type ListMemoriesParams struct {
	Context string

	// Tag filters to memories carrying the tag, compared case-insensitively
	// and exactly. Empty means no filter.
	Tag string

	// Limit bounds the result count. Non-positive applies the default.
	Limit int
}

// Store defines the entity-store interface.
type Store interface {
	// CreateMemory atomically creates a memory, its facts, and their
	// vectors. Partial visibility is never observable.
	CreateMemory(ctx context.Context, p CreateMemoryParams) (*memory.Memory, []memory.Fact, error)

	// GetMemory retrieves a memory by id within a context.
	GetMemory(ctx context.Context, memoryContext, id string) (*memory.Memory, error)

	// ReplaceText performs a full-text update: new narrative, wholesale
	// fact replacement, version bump, all atomically.
	ReplaceText(ctx context.Context, p ReplaceTextParams) (*memory.Memory, []memory.Fact, error)

	// UpdateTags applies a remove-set then an add-set to the memory's tags
	// and bumps the version. Fact and vector data are never touched.
	UpdateTags(ctx context.Context, memoryContext, id string, add, remove []string) (*memory.Memory, error)

	// DeleteMemory removes the memory, all its facts, and every vector row
	// for those facts across every namespace.
	DeleteMemory(ctx context.Context, memoryContext, id string) error

	// ListMemories returns memories newest-first, optionally filtered by
	// tag, bounded by limit.
	ListMemories(ctx context.Context, p ListMemoriesParams) ([]memory.Memory, error)

	// CountMemories returns the number of memories in a context.
	CountMemories(ctx context.Context, memoryContext string) (int, error)

	// ListFacts returns the facts owned by a memory, in creation order.
	ListFacts(ctx context.Context, memoryContext, memoryID string) ([]memory.Fact, error)

	// ListTags enumerates all tags in a context with aggregate metadata,
	// optionally filtered by a regular expression. The pattern may carry a
	// leading inline case-insensitivity group such as (?i); an uncompilable
	// pattern yields a ValidationError naming the pattern.
	ListTags(ctx context.Context, memoryContext, pattern string) ([]memory.TagInfo, error)

	// Close closes the store and releases any resources.
	Close() error
}
