package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/NickSmet/mcp-local-memory/pkg/service"
)

var (
	modeSwitchToolName    = "mode_switch"
	modeSwitchDescription = "Switch the active embedding mode. Facts missing vectors in the target namespace are embedded first (batched); the switch only completes once the namespace is fully covered."

	modeStatusToolName    = "mode_status"
	modeStatusDescription = "Report the active and previous embedding modes and, per namespace, how many facts have vectors and how many are missing."
)

// ModeSwitchInput represents the input arguments for the mode_switch tool.
type ModeSwitchInput struct {
	Mode    string `json:"mode" jsonschema:"the target embedding mode (openai-small, ollama-nomic, hash-local)"`
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// ModeSwitchOutput represents the output of the mode_switch tool.
type ModeSwitchOutput struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Missing  int    `json:"missing"`
	Embedded int    `json:"embedded"`
	Batches  int    `json:"batches"`
	Duration string `json:"duration"`
}

func (s *Server) handleModeSwitch(ctx context.Context, _ *mcp.CallToolRequest, input ModeSwitchInput) (*mcp.CallToolResult, ModeSwitchOutput, error) {
	if input.Mode == "" {
		return errResult("mode is required"), ModeSwitchOutput{}, nil
	}

	result, err := s.config.Service.SwitchMode(ctx, s.tenant(input.Context), input.Mode)
	if err != nil {
		s.config.Logger.Error("mode_switch failed", zap.Error(err))
		if result != nil {
			// Partial backfill: completed batches are kept, the active
			// mode did not change.
			return errResult("Mode switch failed after %d of %d facts: %v", result.Embedded, result.Missing, err), ModeSwitchOutput{}, nil
		}
		return errResult("Mode switch failed: %v", err), ModeSwitchOutput{}, nil
	}

	output := ModeSwitchOutput{
		From:     result.From.String(),
		To:       result.To.String(),
		Missing:  result.Missing,
		Embedded: result.Embedded,
		Batches:  result.Batches,
		Duration: result.Duration.String(),
	}
	res, err := jsonResult(output)
	if err != nil {
		return res, ModeSwitchOutput{}, nil
	}
	return res, output, nil
}

// ModeStatusInput represents the input arguments for the mode_status tool.
type ModeStatusInput struct {
	Context string `json:"context,omitempty" jsonschema:"tenant namespace; defaults to the server's configured context"`
}

// ModeStatusOutput represents the output of the mode_status tool.
type ModeStatusOutput struct {
	Active   string                   `json:"active"`
	Previous string                   `json:"previous"`
	Coverage []service.CoverageStatus `json:"coverage"`
}

func (s *Server) handleModeStatus(ctx context.Context, _ *mcp.CallToolRequest, input ModeStatusInput) (*mcp.CallToolResult, ModeStatusOutput, error) {
	active, previous, coverage, err := s.config.Service.ModeStatus(ctx, s.tenant(input.Context))
	if err != nil {
		return errResult("Failed to report mode status: %v", err), ModeStatusOutput{}, nil
	}

	output := ModeStatusOutput{
		Active:   active,
		Previous: previous,
		Coverage: coverage,
	}
	res, err := jsonResult(output)
	if err != nil {
		return res, ModeStatusOutput{}, nil
	}
	return res, output, nil
}
