package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/search"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

// SearchParams holds parameters for a semantic search.
type SearchParams struct {
	Context string
	Query   string

	// Limit bounds the number of memories returned.
	Limit int

	// BoostTags soft-boost matching memories; they never filter.
	BoostTags []string

	// BoostWeight is the additive bonus per matched boost tag (λ).
	BoostWeight float64

	// Mode names the namespace to search. Empty means the active mode.
	Mode string
}

// Search embeds the query in the target mode and ranks that namespace's
// facts by similarity with tag boosting, deduplicated to the best fact per
// memory.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]search.Result, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, memory.Validationf("search query is required")
	}

	mode, err := s.resolveMode(p.Mode)
	if err != nil {
		return nil, err
	}

	embedder, err := s.modes.Embedder(mode)
	if err != nil {
		return nil, err
	}

	queryVec, err := embedder.Embed(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	// Stored vectors are unit length; normalizing the query makes every
	// dot product a cosine similarity.
	vector.Normalize(queryVec)

	rows, err := s.vectors.SearchRows(ctx, mode, p.Context)
	if err != nil {
		return nil, err
	}

	results := search.Rank(rows, queryVec, search.Options{
		Limit:       p.Limit,
		BoostTags:   p.BoostTags,
		BoostWeight: p.BoostWeight,
	})

	s.logger.Debug("search completed",
		zap.String("context", p.Context),
		zap.Stringer("mode", mode),
		zap.Int("scanned", len(rows)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// CoverageStatus reports, for one mode, how many facts have vectors and
// how many are missing.
type CoverageStatus struct {
	Mode    string `json:"mode"`
	Vectors int    `json:"vectors"`
	Missing int    `json:"missing"`
	Active  bool   `json:"active"`
}

// ModeStatus reports the active and previous modes plus per-namespace
// coverage for a context.
func (s *Service) ModeStatus(ctx context.Context, memoryContext string) (active, previous string, coverage []CoverageStatus, err error) {
	activeMode := s.modes.Active()
	for _, m := range vector.Modes {
		count, err := s.vectors.CountVectors(ctx, m, memoryContext)
		if err != nil {
			return "", "", nil, err
		}
		missing, err := s.modes.MissingCount(ctx, m, memoryContext)
		if err != nil {
			return "", "", nil, err
		}
		coverage = append(coverage, CoverageStatus{
			Mode:    m.String(),
			Vectors: count,
			Missing: missing,
			Active:  m == activeMode,
		})
	}
	return activeMode.String(), s.modes.Previous().String(), coverage, nil
}
