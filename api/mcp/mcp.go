// Package mcp provides an MCP (Model Context Protocol) server for the
// local memory engine.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/service"
	"github.com/NickSmet/mcp-local-memory/pkg/utils"
)

type Config struct {
	// Service is the engine front door every tool call goes through.
	Service *service.Service

	// DefaultContext is the tenant used when a tool call omits one.
	DefaultContext string

	// BoostWeight is the additive per-tag score bonus applied when a search
	// call supplies boost_tags without a weight.
	BoostWeight float64

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "localmem",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Service == nil {
		return nil, errors.New("service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryAddToolName,
		Description: memoryAddDescription,
	}, s.handleMemoryAdd)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memorySearchToolName,
		Description: memorySearchDescription,
	}, s.handleMemorySearch)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryListToolName,
		Description: memoryListDescription,
	}, s.handleMemoryList)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryGetToolName,
		Description: memoryGetDescription,
	}, s.handleMemoryGet)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryUpdateToolName,
		Description: memoryUpdateDescription,
	}, s.handleMemoryUpdate)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryUpdateTagsToolName,
		Description: memoryUpdateTagsDescription,
	}, s.handleMemoryUpdateTags)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryDeleteToolName,
		Description: memoryDeleteDescription,
	}, s.handleMemoryDelete)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryListTagsToolName,
		Description: memoryListTagsDescription,
	}, s.handleMemoryListTags)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        modeSwitchToolName,
		Description: modeSwitchDescription,
	}, s.handleModeSwitch)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        modeStatusToolName,
		Description: modeStatusDescription,
	}, s.handleModeStatus)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        usageNoteAddToolName,
		Description: usageNoteAddDescription,
	}, s.handleUsageNoteAdd)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        usageNoteListToolName,
		Description: usageNoteListDescription,
	}, s.handleUsageNoteList)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// tenant resolves a tool call's context argument against the default.
func (s *Server) tenant(callContext string) string {
	if callContext != "" {
		return callContext
	}
	return s.config.DefaultContext
}

// errResult wraps an error message in a tool error result.
func errResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errResult("Failed to serialize results: %v", err), err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}
