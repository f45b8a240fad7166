package domain

import (
	"context"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
)

// Engine is the slice of the game engine the MCP tools drive. Every call
// acts on behalf of the one agent user the server was configured with.
type Engine interface {
	GetGame(ctx context.Context, userID, gameID string) (gameengine.Snapshot, error)
	Propose(ctx context.Context, userID string, req gameengine.ProposeRequest) (action.Action, error)
	AddArgument(ctx context.Context, userID string, req gameengine.AddArgumentRequest) (action.Argument, error)
	SubmitVote(ctx context.Context, userID string, req gameengine.SubmitVoteRequest) (gameengine.VoteStatus, error)
	SubmitNarration(ctx context.Context, userID string, req gameengine.SubmitNarrationRequest) (gameengine.NarrationResult, error)
}

var _ Engine = (*gameengine.Engine)(nil)

// formatTime renders a timestamp as RFC3339 UTC, or empty when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
