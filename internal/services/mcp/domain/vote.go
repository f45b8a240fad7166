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

// SubmitVoteInput represents the MCP tool input for casting a vote.
type SubmitVoteInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
	Vote   string `json:"vote" jsonschema:"vote on the action's likely outcome (likely_success, likely_failure, uncertain)"`
}

// SubmitVoteResult represents the MCP tool output for casting a vote.
type SubmitVoteResult struct {
	VoteID   string `json:"vote_id" jsonschema:"vote identifier"`
	ActionID string `json:"action_id" jsonschema:"action the vote applies to"`
	Vote     string `json:"vote" jsonschema:"accepted vote type"`
	Resolved bool   `json:"resolved" jsonschema:"whether this vote completed the acting unit and resolved the action"`
}

// SubmitVoteTool defines the MCP tool schema for casting a vote.
func SubmitVoteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "warroom_submit_vote",
		Description: "Casts the agent's vote on the likely outcome of the action currently in voting. One vote per player per action; votes freeze once cast.",
	}
}

// SubmitVoteHandler executes a vote submission request.
func SubmitVoteHandler(engine Engine, userID string) mcp.ToolHandlerFor[SubmitVoteInput, SubmitVoteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SubmitVoteInput) (*mcp.CallToolResult, SubmitVoteResult, error) {
		if strings.TrimSpace(input.GameID) == "" {
			return nil, SubmitVoteResult{}, fmt.Errorf("game_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.MCPToolCall)
		defer cancel()

		status, err := engine.SubmitVote(runCtx, userID, gameengine.SubmitVoteRequest{
			GameID: input.GameID,
			Type:   parseVoteType(input.Vote),
		})
		if err != nil {
			return nil, SubmitVoteResult{}, fmt.Errorf("submit vote failed: %w", err)
		}

		return nil, SubmitVoteResult{
			VoteID:   status.Vote.ID,
			ActionID: status.Vote.ActionID,
			Vote:     string(status.Vote.Type),
			Resolved: status.Resolved,
		}, nil
	}
}

// parseVoteType maps tool input labels onto domain vote types. Unrecognized
// values pass through so the engine reports them as invalid.
func parseVoteType(raw string) action.VoteType {
	if t, ok := action.NormalizeVoteTypeLabel(raw); ok {
		return t
	}
	return action.VoteType(strings.TrimSpace(raw))
}
