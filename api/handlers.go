package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
)

// ErrorResponse is the JSON body returned on request failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// tenant resolves the request's context query parameter against the default.
func (s *Server) tenant(c *fiber.Ctx) string {
	if v := c.Query("context"); v != "" {
		return v
	}
	return s.config.DefaultContext
}

// fail maps a service error onto an HTTP status.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case memory.IsNotFound(err):
		status = fiber.StatusNotFound
	case memory.IsValidation(err):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListMemories returns memories newest-first, optionally filtered by
// an exact tag.
func (s *Server) handleListMemories(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	memories, err := s.svc.ListMemories(c.Context(), s.tenant(c), c.Query("tag"), limit)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(map[string]any{
		"count":    len(memories),
		"memories": memories,
	})
}

// handleGetMemory returns a single memory by id.
func (s *Server) handleGetMemory(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	mem, err := s.svc.GetMemory(c.Context(), s.tenant(c), id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(mem)
}

// handleListFacts returns the facts owned by a memory.
func (s *Server) handleListFacts(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	facts, err := s.svc.ListFacts(c.Context(), s.tenant(c), id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(map[string]any{
		"memory_id": id,
		"count":     len(facts),
		"facts":     facts,
	})
}

// handleListTags returns tag aggregates, optionally filtered by a pattern.
func (s *Server) handleListTags(c *fiber.Ctx) error {
	tags, err := s.svc.ListTags(c.Context(), s.tenant(c), c.Query("pattern"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(map[string]any{
		"count": len(tags),
		"tags":  tags,
	})
}

// handleModeStatus reports the active mode and per-namespace coverage.
func (s *Server) handleModeStatus(c *fiber.Ctx) error {
	active, previous, coverage, err := s.svc.ModeStatus(c.Context(), s.tenant(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(map[string]any{
		"active":   active,
		"previous": previous,
		"coverage": coverage,
	})
}

// handleSearch runs a semantic search from query parameters. Intended for
// debugging; agents use the MCP tool instead.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "5"))
	boostWeight, _ := strconv.ParseFloat(c.Query("boost_weight", "0"), 64)

	var boostTags []string
	if raw := c.Query("boost_tags"); raw != "" {
		boostTags = append(boostTags, splitCSV(raw)...)
	}

	results, err := s.svc.Search(c.Context(), service.SearchParams{
		Context:     s.tenant(c),
		Query:       query,
		Limit:       limit,
		BoostTags:   boostTags,
		BoostWeight: boostWeight,
		Mode:        c.Query("mode"),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// splitCSV splits a comma-separated query value, trimming blanks.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
