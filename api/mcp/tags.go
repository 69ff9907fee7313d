package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

var (
	memoryUpdateTagsToolName    = "memory_update_tags"
	memoryUpdateTagsDescription = "Add or remove tags on a memory without touching its facts or vectors. Removals apply before additions; removal matches case-insensitively."

	memoryListTagsToolName    = "memory_list_tags"
	memoryListTagsDescription = "List every tag in use with how many memories carry it and when it was first and last used. An optional regular expression filters tags; prefix with (?i) for case-insensitive matching."
)

// MemoryUpdateTagsInput represents the input arguments for the
// memory_update_tags tool.
type MemoryUpdateTagsInput struct {
	ID      string   `json:"id" jsonschema:"the memory id"`
	Add     []string `json:"add,omitempty" jsonschema:"tags to add"`
	Remove  []string `json:"remove,omitempty" jsonschema:"tags to remove (case-insensitive match)"`
	Context string   `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

func (s *Server) handleMemoryUpdateTags(ctx context.Context, _ *mcp.CallToolRequest, input MemoryUpdateTagsInput) (*mcp.CallToolResult, MemoryOutput, error) {
	if input.ID == "" {
		return errResult("id is required"), MemoryOutput{}, nil
	}
	if len(input.Add) == 0 && len(input.Remove) == 0 {
		return errResult("supply tags to add or remove"), MemoryOutput{}, nil
	}

	mem, err := s.config.Service.UpdateTags(ctx, s.tenant(input.Context), input.ID, input.Add, input.Remove)
	if err != nil {
		return errResult("Failed to update tags: %v", err), MemoryOutput{}, nil
	}

	output := MemoryOutput{Memory: mem}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryOutput{}, nil
	}
	return res, output, nil
}

// MemoryListTagsInput represents the input arguments for the
// memory_list_tags tool.
type MemoryListTagsInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"regular expression tags must match; supports a leading (?i) group"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// MemoryListTagsOutput represents the output of the memory_list_tags tool.
type MemoryListTagsOutput struct {
	Tags  []memory.TagInfo `json:"tags"`
	Count int              `json:"count"`
}

func (s *Server) handleMemoryListTags(ctx context.Context, _ *mcp.CallToolRequest, input MemoryListTagsInput) (*mcp.CallToolResult, MemoryListTagsOutput, error) {
	tags, err := s.config.Service.ListTags(ctx, s.tenant(input.Context), input.Pattern)
	if err != nil {
		return errResult("Failed to list tags: %v", err), MemoryListTagsOutput{}, nil
	}
	if tags == nil {
		tags = []memory.TagInfo{}
	}

	output := MemoryListTagsOutput{Tags: tags, Count: len(tags)}
	res, err := jsonResult(output)
	if err != nil {
		return res, MemoryListTagsOutput{}, nil
	}
	return res, output, nil
}
