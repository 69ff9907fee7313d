package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/service"
)

var (
	memorySearchToolName    = "memory_search"
	memorySearchDescription = "Search stored memories semantically. The query is embedded in the active mode and scored against every fact in that namespace; boost_tags add a soft bonus per matched tag without filtering. Returns the best fact per memory, highest score first."
)

// MemorySearchInput represents the input arguments for the memory_search tool.
type MemorySearchInput struct {
	Query       string   `json:"query" jsonschema:"the search query text"`
	Limit       int      `json:"limit,omitempty" jsonschema:"number of memories to return (default: 5)"`
	BoostTags   []string `json:"boost_tags,omitempty" jsonschema:"tags whose presence boosts a memory's score; never filters"`
	BoostWeight float64  `json:"boost_weight,omitempty" jsonschema:"additive score bonus per matched boost tag (default: 0.3)"`
	Mode        string   `json:"mode,omitempty" jsonschema:"embedding mode to search in; defaults to the active mode"`
	Context     string   `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// MemorySearchResult represents a single search result.
type MemorySearchResult struct {
	MemoryID     string   `json:"memory_id"`
	FactID       string   `json:"fact_id"`
	Fact         string   `json:"fact"`
	Score        float64  `json:"score"`
	Similarity   float64  `json:"similarity"`
	BoostMatches int      `json:"boost_matches"`
	Tags         []string `json:"tags,omitempty"`
}

// MemorySearchOutput represents the output of the memory_search tool.
type MemorySearchOutput struct {
	Query   string               `json:"query"`
	Mode    string               `json:"mode"`
	Results []MemorySearchResult `json:"results"`
	Count   int                  `json:"count"`
}

// handleMemorySearch processes a semantic search request.
func (s *Server) handleMemorySearch(ctx context.Context, _ *mcp.CallToolRequest, input MemorySearchInput) (*mcp.CallToolResult, MemorySearchOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP search request",
		zap.String("query", input.Query),
		zap.Int("limit", input.Limit),
		zap.Strings("boostTags", input.BoostTags),
	)

	boostWeight := input.BoostWeight
	if boostWeight == 0 {
		boostWeight = s.config.BoostWeight
	}

	results, err := s.config.Service.Search(ctx, service.SearchParams{
		Context:     s.tenant(input.Context),
		Query:       input.Query,
		Limit:       input.Limit,
		BoostTags:   input.BoostTags,
		BoostWeight: boostWeight,
		Mode:        input.Mode,
	})
	if err != nil {
		logger.Error("search failed", zap.Error(err))
		return errResult("Search failed: %v", err), MemorySearchOutput{}, nil
	}

	searchResults := make([]MemorySearchResult, 0, len(results))
	for _, r := range results {
		searchResults = append(searchResults, MemorySearchResult{
			MemoryID:     r.MemoryID,
			FactID:       r.FactID,
			Fact:         r.FactText,
			Score:        r.Score,
			Similarity:   r.Similarity,
			BoostMatches: r.BoostMatches,
			Tags:         r.MemoryTags,
		})
	}

	mode := input.Mode
	if mode == "" {
		mode = s.config.Service.Modes().Active().String()
	}

	output := MemorySearchOutput{
		Query:   input.Query,
		Mode:    mode,
		Results: searchResults,
		Count:   len(searchResults),
	}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemorySearchOutput{}, nil
	}
	return res, output, nil
}
