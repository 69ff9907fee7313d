// Package memory defines the core domain types for the local memory system.
//
// A Memory is a short narrative record owned by a context (tenant). Each
// memory exclusively owns a set of Facts — atomic statements distilled from
// the narrative — and facts are the unit of semantic search. Deleting a
// memory deletes its facts and, transitively, every vector row referencing
// them in every embedding namespace.
package memory

import (
	"strings"
	"time"
)

// Memory is a short narrative record with free text and a tag set.
type Memory struct {
	// ID is a short unique token identifying the memory.
	ID string `json:"id"`

	// Context is the tenant partition key isolating one user/project's
	// memories within a shared store.
	Context string `json:"context"`

	// Text is the narrative content.
	Text string `json:"text"`

	// Tags are case-preserving strings, compared case-insensitively.
	Tags []string `json:"tags,omitempty"`

	// Version strictly increases on every successful mutating update.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the memory carries the given tag, compared
// case-insensitively against the stored (case-preserving) tag set.
func (m *Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Fact is an atomic statement derived from, or supplied for, a memory.
type Fact struct {
	ID       string `json:"id"`
	MemoryID string `json:"memory_id"`
	Text     string `json:"text"`
	Version  int    `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagInfo is aggregate metadata for one tag within a context.
type TagInfo struct {
	Tag string `json:"tag"`

	// Count is the number of memories carrying the tag.
	Count int `json:"count"`

	// Earliest and Latest are the creation times of the oldest and newest
	// memories associated with the tag.
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// NormalizeTags trims and de-duplicates tags, preserving order. Uniqueness
// is case-sensitive as stored; case variants of a tag may coexist, and are
// only folded together when filtering or boosting.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
