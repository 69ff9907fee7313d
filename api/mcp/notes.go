package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NickSmet/mcp-local-memory/pkg/notes"
)

var (
	usageNoteAddToolName    = "usage_note_add"
	usageNoteAddDescription = "Record a note about how a tool was used, for future sessions to learn from."

	usageNoteListToolName    = "usage_note_list"
	usageNoteListDescription = "List recorded tool usage notes newest-first, optionally filtered to one tool."
)

// UsageNoteAddInput represents the input arguments for the usage_note_add tool.
type UsageNoteAddInput struct {
	Tool    string `json:"tool" jsonschema:"the tool the note is about"`
	Text    string `json:"text" jsonschema:"the note text"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// UsageNoteOutput represents the output of the usage_note_add tool.
type UsageNoteOutput struct {
	Note *notes.Note `json:"note"`
}

func (s *Server) handleUsageNoteAdd(ctx context.Context, _ *mcp.CallToolRequest, input UsageNoteAddInput) (*mcp.CallToolResult, UsageNoteOutput, error) {
	if input.Tool == "" || input.Text == "" {
		return errResult("tool and text are required"), UsageNoteOutput{}, nil
	}

	note, err := s.config.Service.AddUsageNote(ctx, s.tenant(input.Context), input.Tool, input.Text)
	if err != nil {
		return errResult("Failed to add usage note: %v", err), UsageNoteOutput{}, nil
	}

	output := UsageNoteOutput{Note: note}
	res, err := jsonResult(output)
	if err != nil {
		return res, UsageNoteOutput{}, nil
	}
	return res, output, nil
}

// UsageNoteListInput represents the input arguments for the usage_note_list tool.
type UsageNoteListInput struct {
	Tool    string `json:"tool,omitempty" jsonschema:"only list notes about this tool"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of notes to return (default: 20)"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// UsageNoteListOutput represents the output of the usage_note_list tool.
type UsageNoteListOutput struct {
	Notes []notes.Note `json:"notes"`
	Count int          `json:"count"`
}

func (s *Server) handleUsageNoteList(ctx context.Context, _ *mcp.CallToolRequest, input UsageNoteListInput) (*mcp.CallToolResult, UsageNoteListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	list, err := s.config.Service.ListUsageNotes(ctx, s.tenant(input.Context), input.Tool, limit)
	if err != nil {
		return errResult("Failed to list usage notes: %v", err), UsageNoteListOutput{}, nil
	}
	if list == nil {
		list = []notes.Note{}
	}

	output := UsageNoteListOutput{Notes: list, Count: len(list)}
	res, err := jsonResult(output)
	if err != nil {
		return res, UsageNoteListOutput{}, nil
	}
	return res, output, nil
}
