package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/platform/timeouts"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SubmitNarrationInput represents the MCP tool input for narrating an action.
type SubmitNarrationInput struct {
	GameID  string `json:"game_id" jsonschema:"game identifier"`
	Content string `json:"content" jsonschema:"narration text describing how the resolved action played out"`
}

// SubmitNarrationResult represents the MCP tool output for narrating an action.
type SubmitNarrationResult struct {
	ActionID       string `json:"action_id" jsonschema:"narrated action identifier"`
	Content        string `json:"content" jsonschema:"accepted narration text"`
	RoundCompleted bool   `json:"round_completed" jsonschema:"whether the narrated action closed its round"`
	Phase          string `json:"phase" jsonschema:"phase the game moved to after the narration (proposal or round_summary)"`
}

// SubmitNarrationTool defines the MCP tool schema for narrating an action.
func SubmitNarrationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "warroom_submit_narration",
		Description: "Closes the resolved action with its outcome narration. Who may narrate depends on the game's narration mode; the game then moves to the next proposal or to the round summary.",
	}
}

// SubmitNarrationHandler executes a narration submission request.
func SubmitNarrationHandler(engine Engine, userID string) mcp.ToolHandlerFor[SubmitNarrationInput, SubmitNarrationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SubmitNarrationInput) (*mcp.CallToolResult, SubmitNarrationResult, error) {
		if strings.TrimSpace(input.GameID) == "" {
			return nil, SubmitNarrationResult{}, fmt.Errorf("game_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.MCPToolCall)
		defer cancel()

		res, err := engine.SubmitNarration(runCtx, userID, gameengine.SubmitNarrationRequest{
			GameID:  input.GameID,
			Content: input.Content,
		})
		if err != nil {
			return nil, SubmitNarrationResult{}, fmt.Errorf("submit narration failed: %w", err)
		}

		return nil, SubmitNarrationResult{
			ActionID:       res.Narration.ActionID,
			Content:        res.Narration.Content,
			RoundCompleted: res.RoundCompleted,
			Phase:          string(res.Phase),
		}, nil
	}
}
