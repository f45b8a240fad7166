package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/platform/timeouts"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddArgumentInput represents the MCP tool input for recording an argument.
type AddArgumentInput struct {
	GameID  string `json:"game_id" jsonschema:"game identifier"`
	Type    string `json:"type" jsonschema:"argument type: for or against when arguing another unit's action, clarification when the agent belongs to the initiating unit"`
	Content string `json:"content" jsonschema:"argument text"`
}

// AddArgumentResult represents the MCP tool output for recording an argument.
type AddArgumentResult struct {
	ArgumentID string `json:"argument_id" jsonschema:"argument identifier"`
	ActionID   string `json:"action_id" jsonschema:"action the argument attaches to"`
	Type       string `json:"type" jsonschema:"accepted argument type"`
	Content    string `json:"content" jsonschema:"accepted argument text"`
	Sequence   int    `json:"sequence" jsonschema:"position of the argument on the action"`
}

// AddArgumentTool defines the MCP tool schema for recording an argument.
func AddArgumentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "warroom_add_argument",
		Description: "Records an argument on the action currently under argumentation. The initiating unit may only clarify; everyone else argues for or against, up to the game's argument cap.",
	}
}

// AddArgumentHandler executes an add argument request.
func AddArgumentHandler(engine Engine, userID string) mcp.ToolHandlerFor[AddArgumentInput, AddArgumentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddArgumentInput) (*mcp.CallToolResult, AddArgumentResult, error) {
		if strings.TrimSpace(input.GameID) == "" {
			return nil, AddArgumentResult{}, fmt.Errorf("game_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.MCPToolCall)
		defer cancel()

		arg, err := engine.AddArgument(runCtx, userID, gameengine.AddArgumentRequest{
			GameID:  input.GameID,
			Type:    parseArgumentType(input.Type),
			Content: input.Content,
		})
		if err != nil {
			return nil, AddArgumentResult{}, fmt.Errorf("add argument failed: %w", err)
		}

		return nil, AddArgumentResult{
			ArgumentID: arg.ID,
			ActionID:   arg.ActionID,
			Type:       string(arg.Type),
			Content:    arg.Content,
			Sequence:   arg.Sequence,
		}, nil
	}
}

// parseArgumentType maps tool input labels onto domain argument types.
// Unrecognized values pass through so the engine reports them as invalid.
func parseArgumentType(raw string) action.ArgumentType {
	if t, ok := action.NormalizeArgumentTypeLabel(raw); ok {
		return t
	}
	return action.ArgumentType(strings.TrimSpace(raw))
}
