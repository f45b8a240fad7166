package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/platform/timeouts"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProposeInput represents the MCP tool input for filing an action proposal.
type ProposeInput struct {
	GameID         string `json:"game_id" jsonschema:"game identifier"`
	Description    string `json:"description" jsonschema:"what the acting unit attempts"`
	DesiredOutcome string `json:"desired_outcome,omitempty" jsonschema:"optional outcome the unit hopes for"`
}

// ProposeResult represents the MCP tool output for filing an action proposal.
type ProposeResult struct {
	ActionID       string `json:"action_id" jsonschema:"action identifier"`
	Description    string `json:"description" jsonschema:"accepted action description"`
	DesiredOutcome string `json:"desired_outcome,omitempty" jsonschema:"accepted desired outcome"`
	Status         string `json:"status" jsonschema:"action lifecycle status after filing (arguing)"`
	SequenceNumber int64  `json:"sequence_number" jsonschema:"position of the action within its round"`
}

// ProposeTool defines the MCP tool schema for filing an action proposal.
func ProposeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "warroom_propose",
		Description: "Files an action proposal for the agent's acting unit and opens argumentation on it. Only one proposal per unit per round; the game must be in the proposal phase.",
	}
}

// ProposeHandler executes an action proposal request.
func ProposeHandler(engine Engine, userID string) mcp.ToolHandlerFor[ProposeInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeInput) (*mcp.CallToolResult, ProposeResult, error) {
		if strings.TrimSpace(input.GameID) == "" {
			return nil, ProposeResult{}, fmt.Errorf("game_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.MCPToolCall)
		defer cancel()

		act, err := engine.Propose(runCtx, userID, gameengine.ProposeRequest{
			GameID:         input.GameID,
			Description:    input.Description,
			DesiredOutcome: input.DesiredOutcome,
		})
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose failed: %w", err)
		}

		return nil, ProposeResult{
			ActionID:       act.ID,
			Description:    act.Description,
			DesiredOutcome: act.DesiredOutcome,
			Status:         string(act.Status),
			SequenceNumber: act.SequenceNumber,
		}, nil
	}
}
