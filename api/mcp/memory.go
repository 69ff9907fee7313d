package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
	"github.com/NickSmet/mcp-local-memory/pkg/service"
)

var (
	memoryAddToolName    = "memory_add"
	memoryAddDescription = "Store a memory. The narrative text is decomposed into atomic facts (automatically, or via the facts argument) and each fact is embedded for semantic recall. Optional tags label the memory for boosting and filtering."

	memoryGetToolName    = "memory_get"
	memoryGetDescription = "Retrieve a single memory by id, including its narrative text, tags, and version."

	memoryListToolName    = "memory_list"
	memoryListDescription = "List stored memories newest-first, optionally filtered by an exact tag (case-insensitive)."

	memoryUpdateToolName    = "memory_update"
	memoryUpdateDescription = "Replace a memory's narrative text. Its facts are re-derived and re-embedded; old vectors are removed from every namespace."

	memoryDeleteToolName    = "memory_delete"
	memoryDeleteDescription = "Delete a memory along with all of its facts and their vectors in every namespace."
)

// MemoryAddInput represents the input arguments for the memory_add tool.
type MemoryAddInput struct {
	Text    string   `json:"text" jsonschema:"the narrative text to remember"`
	Tags    []string `json:"tags,omitempty" jsonschema:"labels attached to the memory"`
	Facts   []string `json:"facts,omitempty" jsonschema:"pre-split atomic facts; when present the automatic splitter is skipped"`
	Context string   `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// MemoryOutput is the structured shape shared by tools that return one memory.
type MemoryOutput struct {
	Memory *memory.Memory `json:"memory"`
	Facts  []memory.Fact  `json:"facts,omitempty"`
}

func (s *Server) handleMemoryAdd(ctx context.Context, _ *mcp.CallToolRequest, input MemoryAddInput) (*mcp.CallToolResult, MemoryOutput, error) {
	mem, facts, err := s.config.Service.AddMemory(ctx, service.AddParams{
		Context: s.tenant(input.Context),
		Text:    input.Text,
		Tags:    input.Tags,
		Facts:   input.Facts,
	})
	if err != nil {
		s.config.Logger.Error("memory_add failed", zap.Error(err))
		return errResult("Failed to add memory: %v", err), MemoryOutput{}, nil
	}

	output := MemoryOutput{Memory: mem, Facts: facts}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryOutput{}, nil
	}
	return res, output, nil
}

// MemoryGetInput represents the input arguments for the memory_get tool.
type MemoryGetInput struct {
	ID      string `json:"id" jsonschema:"the memory id"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

func (s *Server) handleMemoryGet(ctx context.Context, _ *mcp.CallToolRequest, input MemoryGetInput) (*mcp.CallToolResult, MemoryOutput, error) {
	if input.ID == "" {
		return errResult("id is required"), MemoryOutput{}, nil
	}

	mem, err := s.config.Service.GetMemory(ctx, s.tenant(input.Context), input.ID)
	if err != nil {
		return errResult("Failed to get memory: %v", err), MemoryOutput{}, nil
	}

	facts, err := s.config.Service.ListFacts(ctx, s.tenant(input.Context), input.ID)
	if err != nil {
		return errResult("Failed to list facts: %v", err), MemoryOutput{}, nil
	}

	output := MemoryOutput{Memory: mem, Facts: facts}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryOutput{}, nil
	}
	return res, output, nil
}

// MemoryListInput represents the input arguments for the memory_list tool.
type MemoryListInput struct {
	Tag     string `json:"tag,omitempty" jsonschema:"only list memories carrying this exact tag (case-insensitive)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of memories to return (default: 20)"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// MemoryListOutput represents the output of the memory_list tool.
type MemoryListOutput struct {
	Memories []memory.Memory `json:"memories"`
	Count    int             `json:"count"`
}

func (s *Server) handleMemoryList(ctx context.Context, _ *mcp.CallToolRequest, input MemoryListInput) (*mcp.CallToolResult, MemoryListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	memories, err := s.config.Service.ListMemories(ctx, s.tenant(input.Context), input.Tag, limit)
	if err != nil {
		return errResult("Failed to list memories: %v", err), MemoryListOutput{}, nil
	}
	if memories == nil {
		memories = []memory.Memory{}
	}

	output := MemoryListOutput{Memories: memories, Count: len(memories)}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryListOutput{}, nil
	}
	return res, output, nil
}

// MemoryUpdateInput represents the input arguments for the memory_update tool.
type MemoryUpdateInput struct {
	ID      string   `json:"id" jsonschema:"the memory id"`
	Text    string   `json:"text" jsonschema:"the replacement narrative text"`
	Facts   []string `json:"facts,omitempty" jsonschema:"pre-split atomic facts; when present the automatic splitter is skipped"`
	Context string   `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

func (s *Server) handleMemoryUpdate(ctx context.Context, _ *mcp.CallToolRequest, input MemoryUpdateInput) (*mcp.CallToolResult, MemoryOutput, error) {
	if input.ID == "" {
		return errResult("id is required"), MemoryOutput{}, nil
	}

	mem, facts, err := s.config.Service.UpdateMemory(ctx, service.UpdateParams{
		Context:  s.tenant(input.Context),
		MemoryID: input.ID,
		Text:     input.Text,
		Facts:    input.Facts,
	})
	if err != nil {
		s.config.Logger.Error("memory_update failed", zap.Error(err))
		return errResult("Failed to update memory: %v", err), MemoryOutput{}, nil
	}

	output := MemoryOutput{Memory: mem, Facts: facts}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryOutput{}, nil
	}
	return res, output, nil
}

// MemoryDeleteInput represents the input arguments for the memory_delete tool.
type MemoryDeleteInput struct {
	ID      string `json:"id" jsonschema:"the memory id"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// MemoryDeleteOutput represents the output of the memory_delete tool.
type MemoryDeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleMemoryDelete(ctx context.Context, _ *mcp.CallToolRequest, input MemoryDeleteInput) (*mcp.CallToolResult, MemoryDeleteOutput, error) {
	if input.ID == "" {
		return errResult("id is required"), MemoryDeleteOutput{}, nil
	}

	if err := s.config.Service.DeleteMemory(ctx, s.tenant(input.Context), input.ID); err != nil {
		return errResult("Failed to delete memory: %v", err), MemoryDeleteOutput{}, nil
	}

	output := MemoryDeleteOutput{ID: input.ID, Deleted: true}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryDeleteOutput{}, nil
	}
	return res, output, nil
}
