package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GameStatusInput represents the MCP tool input for reading game state.
type GameStatusInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
}

// SeatStatus describes one seat in the game roster.
type SeatStatus struct {
	PlayerID  string `json:"player_id" jsonschema:"player identifier"`
	Name      string `json:"name" jsonschema:"display name"`
	PersonaID string `json:"persona_id,omitempty" jsonschema:"persona the player currently controls"`
	IsHost    bool   `json:"is_host,omitempty" jsonschema:"whether the player hosts the game"`
	IsNPC     bool   `json:"is_npc,omitempty" jsonschema:"whether the seat is the automated non-player faction"`
	IsYou     bool   `json:"is_you,omitempty" jsonschema:"whether the seat belongs to the calling agent"`
}

// ArgumentStatus describes one argument on the current action.
type ArgumentStatus struct {
	ID       string `json:"id" jsonschema:"argument identifier"`
	PlayerID string `json:"player_id" jsonschema:"author player identifier"`
	Type     string `json:"type" jsonschema:"argument type (initiator_for, for, against, clarification)"`
	Content  string `json:"content" jsonschema:"argument text"`
	IsStrong bool   `json:"is_strong,omitempty" jsonschema:"whether the arbiter marked the argument strong"`
}

// VoteStatus describes one recorded vote on the current action.
type VoteStatus struct {
	PlayerID   string `json:"player_id" jsonschema:"voter player identifier"`
	Type       string `json:"type" jsonschema:"vote type (likely_success, likely_failure, uncertain)"`
	WasSkipped bool   `json:"was_skipped,omitempty" jsonschema:"whether the vote was synthesized because the voter timed out"`
}

// ActionStatus describes the action currently in flight.
type ActionStatus struct {
	ID             string `json:"id" jsonschema:"action identifier"`
	InitiatorID    string `json:"initiator_id" jsonschema:"proposing player identifier"`
	Description    string `json:"description" jsonschema:"what the acting unit attempts"`
	DesiredOutcome string `json:"desired_outcome,omitempty" jsonschema:"outcome the initiator hopes for"`
	Status         string `json:"status" jsonschema:"action lifecycle status (arguing, voting, resolved, narrated)"`
	ResultType     string `json:"result_type,omitempty" jsonschema:"resolution outcome tier once resolved (triumph, success_but, failure_but, disaster)"`
}

// GameStatusResult represents the MCP tool output for reading game state.
type GameStatusResult struct {
	ID             string           `json:"id" jsonschema:"game identifier"`
	Name           string           `json:"name" jsonschema:"game name"`
	Status         string           `json:"status" jsonschema:"game status (lobby, active, completed)"`
	Phase          string           `json:"phase" jsonschema:"current phase (waiting, proposal, argumentation, voting, resolution, narration, round_summary)"`
	PhaseStartedAt string           `json:"phase_started_at,omitempty" jsonschema:"RFC3339 timestamp when the current phase opened"`
	RoundNumber    int              `json:"round_number,omitempty" jsonschema:"current round number"`
	Players        []SeatStatus     `json:"players,omitempty" jsonschema:"game roster"`
	Action         *ActionStatus    `json:"action,omitempty" jsonschema:"action currently in flight, if any"`
	Arguments      []ArgumentStatus `json:"arguments,omitempty" jsonschema:"arguments on the current action"`
	Votes          []VoteStatus     `json:"votes,omitempty" jsonschema:"votes on the current action"`
}

// GameStatusTool defines the MCP tool schema for reading game state.
func GameStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "warroom_game_status",
		Description: "Reads the agent's view of a game: status, phase, roster, and the action in flight with its arguments and votes.",
	}
}

// GameStatusHandler executes a game status request.
func GameStatusHandler(engine Engine, userID string) mcp.ToolHandlerFor[GameStatusInput, GameStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameStatusInput) (*mcp.CallToolResult, GameStatusResult, error) {
		if strings.TrimSpace(input.GameID) == "" {
			return nil, GameStatusResult{}, fmt.Errorf("game_id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.MCPToolCall)
		defer cancel()

		snap, err := engine.GetGame(runCtx, userID, input.GameID)
		if err != nil {
			return nil, GameStatusResult{}, fmt.Errorf("game status failed: %w", err)
		}

		result := GameStatusResult{
			ID:             snap.Game.ID,
			Name:           snap.Game.Name,
			Status:         string(snap.Game.Status),
			Phase:          string(snap.Game.CurrentPhase),
			PhaseStartedAt: formatTime(snap.Game.PhaseStartedAt),
		}
		if snap.Round.ID != "" {
			result.RoundNumber = snap.Round.RoundNumber
		}
		for _, p := range snap.Players {
			result.Players = append(result.Players, SeatStatus{
				PlayerID:  p.ID,
				Name:      p.Name,
				PersonaID: p.PersonaID,
				IsHost:    p.IsHost,
				IsNPC:     p.IsNPC,
				IsYou:     p.UserID == userID,
			})
		}
		if snap.Action.ID != "" {
			result.Action = &ActionStatus{
				ID:             snap.Action.ID,
				InitiatorID:    snap.Action.InitiatorID,
				Description:    snap.Action.Description,
				DesiredOutcome: snap.Action.DesiredOutcome,
				Status:         string(snap.Action.Status),
				ResultType:     snap.Action.ResultType,
			}
			for _, a := range snap.Arguments {
				result.Arguments = append(result.Arguments, ArgumentStatus{
					ID:       a.ID,
					PlayerID: a.PlayerID,
					Type:     string(a.Type),
					Content:  a.Content,
					IsStrong: a.IsStrong,
				})
			}
			for _, v := range snap.Votes {
				result.Votes = append(result.Votes, VoteStatus{
					PlayerID:   v.PlayerID,
					Type:       string(v.Type),
					WasSkipped: v.WasSkipped,
				})
			}
		}
		return nil, result, nil
	}
}
