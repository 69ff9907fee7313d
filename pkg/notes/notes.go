// Package notes provides the tool-usage-notes ledger: small free-form
// records an agent leaves about how a tool behaved. The ledger reuses the
// memory store's primitives — same database, same tenancy — and has no
// retrieval semantics beyond listing.
package notes

import (
	"context"
	"time"
)

// Note is one usage note about a tool within a context.
type Note struct {
	ID      string `json:"id"`
	Context string `json:"context"`
	Tool    string `json:"tool"`
	Note    string `json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

// Ledger persists and lists usage notes.
type Ledger interface {
	// AddNote records a note for a tool.
	AddNote(ctx context.Context, noteContext, tool, text string) (*Note, error)

	// ListNotes returns notes newest-first, optionally filtered to one
	// tool, bounded by limit.
	ListNotes(ctx context.Context, noteContext, tool string, limit int) ([]Note, error)
}
