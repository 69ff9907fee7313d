// Package search implements deterministic ranked similarity search over one
// embedding namespace.
//
// The engine performs a full linear scan of the namespace's rows: cost is
// O(N·D) per query (N facts in context, D vector dimension). That is a
// deliberate ceiling, valid for corpora in the low tens of thousands, not
// an oversight.
package search

import (
	"sort"
	"strings"

	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// DefaultLimit bounds results when the caller does not.
const DefaultLimit = 5

// Options tunes one search call.
type Options struct {
	// Limit bounds the number of memories returned. Non-positive applies
	// DefaultLimit.
	Limit int

	// BoostTags soft-boost results whose memory tags overlap the given
	// tags. Boosting never filters: a memory lacking any match is still
	// eligible on similarity alone.
	BoostTags []string

	// BoostWeight is the additive score bonus per matched boost tag (λ).
	BoostWeight float64
}

// Result is one ranked search hit: the best-scoring fact of one memory.
type Result struct {
	MemoryID string  `json:"memory_id"`
	FactID   string  `json:"fact_id"`
	FactText string  `json:"fact_text"`
	Score    float64 `json:"score"`

	// Similarity is the raw dot product before boosting. Stored vectors
	// are unit length, so this equals cosine similarity.
	Similarity float64 `json:"similarity"`

	// BoostMatches counts the boost tags that matched the memory's tags.
	BoostMatches int `json:"boost_matches,omitempty"`

	// MemoryTags carries the owning memory's tags through to callers.
	MemoryTags []string `json:"memory_tags,omitempty"`
}

// Rank scores every row against the query vector, sorts by descending
// score with stable ties, deduplicates to the maximum-scoring fact per
// memory, and truncates to the limit.
//
// score = dot(query, vector) + λ·matchCount(boostTags, memoryTags)
func Rank(rows []vector.SearchRow, query []float32, opts Options) []Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	scored := make([]Result, 0, len(rows))
	for _, row := range rows {
		sim := vector.Dot(query, row.Embedding)
		matches := matchCount(opts.BoostTags, row.MemoryTags)
		scored = append(scored, Result{
			MemoryID:     row.MemoryID,
			FactID:       row.FactID,
			FactText:     row.FactText,
			Similarity:   sim,
			BoostMatches: matches,
			MemoryTags:   row.MemoryTags,
			Score:        sim + opts.BoostWeight*float64(matches),
		})
	}

	// Stable sort keeps the namespace's deterministic load order on ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	// Keep only the maximum-scoring fact per memory. Rows arrive sorted,
	// so the first hit per memory is its best.
	seen := make(map[string]struct{}, len(scored))
	out := make([]Result, 0, limit)
	for _, r := range scored {
		if _, ok := seen[r.MemoryID]; ok {
			continue
		}
		seen[r.MemoryID] = struct{}{}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// matchCount counts, for each boost tag, at most one match when the boost
// tag and any memory tag contain each other case-insensitively in either
// direction.
func matchCount(boostTags, memoryTags []string) int {
	if len(boostTags) == 0 || len(memoryTags) == 0 {
		return 0
	}

	count := 0
	for _, boost := range boostTags {
		b := strings.ToLower(strings.TrimSpace(boost))
		if b == "" {
			continue
		}
		for _, tag := range memoryTags {
			t := strings.ToLower(tag)
			if strings.Contains(t, b) || strings.Contains(b, t) {
				count++
				break
			}
		}
	}
	return count
}
