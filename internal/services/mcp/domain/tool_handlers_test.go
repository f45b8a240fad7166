package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
)

type fakeEngine struct {
	snapshot    gameengine.Snapshot
	snapshotErr error

	proposed   action.Action
	proposeErr error

	argument    action.Argument
	argumentErr error

	voteStatus gameengine.VoteStatus
	voteErr    error

	narration    gameengine.NarrationResult
	narrationErr error

	gotUserID    string
	gotGameID    string
	gotPropose   gameengine.ProposeRequest
	gotArgument  gameengine.AddArgumentRequest
	gotVote      gameengine.SubmitVoteRequest
	gotNarration gameengine.SubmitNarrationRequest
}

func (f *fakeEngine) GetGame(_ context.Context, userID, gameID string) (gameengine.Snapshot, error) {
	f.gotUserID, f.gotGameID = userID, gameID
	return f.snapshot, f.snapshotErr
}

func (f *fakeEngine) Propose(_ context.Context, userID string, req gameengine.ProposeRequest) (action.Action, error) {
	f.gotUserID, f.gotPropose = userID, req
	return f.proposed, f.proposeErr
}

func (f *fakeEngine) AddArgument(_ context.Context, userID string, req gameengine.AddArgumentRequest) (action.Argument, error) {
	f.gotUserID, f.gotArgument = userID, req
	return f.argument, f.argumentErr
}

func (f *fakeEngine) SubmitVote(_ context.Context, userID string, req gameengine.SubmitVoteRequest) (gameengine.VoteStatus, error) {
	f.gotUserID, f.gotVote = userID, req
	return f.voteStatus, f.voteErr
}

func (f *fakeEngine) SubmitNarration(_ context.Context, userID string, req gameengine.SubmitNarrationRequest) (gameengine.NarrationResult, error) {
	f.gotUserID, f.gotNarration = userID, req
	return f.narration, f.narrationErr
}

func TestGameStatusHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		engine := &fakeEngine{
			snapshot: gameengine.Snapshot{
				Game: game.Game{
					ID:             "g1",
					Name:           "Border Crisis",
					Status:         game.StatusActive,
					CurrentPhase:   game.PhaseVoting,
					PhaseStartedAt: started,
				},
				Players: []player.Player{
					{ID: "p1", UserID: "agent-1", Name: "Analyst", PersonaID: "pe1"},
					{ID: "p2", UserID: "u2", Name: "Host", IsHost: true},
					{ID: "p3", Name: "OPFOR", IsNPC: true},
				},
				Round: round.Round{ID: "r1", RoundNumber: 2},
				Action: action.Action{
					ID:          "a1",
					InitiatorID: "p2",
					Description: "Blockade the strait",
					Status:      action.StatusVoting,
				},
				Arguments: []action.Argument{
					{ID: "arg1", ActionID: "a1", PlayerID: "p1", Type: action.ArgumentTypeAgainst, Content: "Supply lines are thin", Sequence: 2},
				},
				Votes: []action.Vote{
					{ID: "v1", ActionID: "a1", PlayerID: "p1", Type: action.VoteTypeUncertain, WasSkipped: true},
				},
			},
		}
		handler := GameStatusHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, GameStatusInput{GameID: "g1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.gotUserID != "agent-1" {
			t.Errorf("expected engine call as agent-1, got %q", engine.gotUserID)
		}
		if result.Status != "active" || result.Phase != "voting" {
			t.Errorf("expected active/voting, got %s/%s", result.Status, result.Phase)
		}
		if result.PhaseStartedAt != "2026-03-14T09:30:00Z" {
			t.Errorf("unexpected phase start %q", result.PhaseStartedAt)
		}
		if result.RoundNumber != 2 {
			t.Errorf("expected round 2, got %d", result.RoundNumber)
		}
		if len(result.Players) != 3 {
			t.Fatalf("expected 3 seats, got %d", len(result.Players))
		}
		if !result.Players[0].IsYou || result.Players[1].IsYou {
			t.Error("expected only the agent seat flagged as you")
		}
		if !result.Players[2].IsNPC {
			t.Error("expected NPC seat flagged")
		}
		if result.Action == nil || result.Action.Status != "voting" {
			t.Fatalf("expected voting action, got %+v", result.Action)
		}
		if len(result.Arguments) != 1 || result.Arguments[0].Type != "against" {
			t.Errorf("unexpected arguments %+v", result.Arguments)
		}
		if len(result.Votes) != 1 || !result.Votes[0].WasSkipped {
			t.Errorf("unexpected votes %+v", result.Votes)
		}
	})

	t.Run("no action in flight", func(t *testing.T) {
		engine := &fakeEngine{
			snapshot: gameengine.Snapshot{
				Game: game.Game{ID: "g1", Status: game.StatusLobby, CurrentPhase: game.PhaseWaiting},
			},
		}
		handler := GameStatusHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, GameStatusInput{GameID: "g1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Action != nil {
			t.Errorf("expected no action, got %+v", result.Action)
		}
		if result.PhaseStartedAt != "" {
			t.Errorf("expected empty phase start, got %q", result.PhaseStartedAt)
		}
	})

	t.Run("engine error", func(t *testing.T) {
		engine := &fakeEngine{snapshotErr: fmt.Errorf("game not found")}
		handler := GameStatusHandler(engine, "agent-1")
		_, _, err := handler(context.Background(), nil, GameStatusInput{GameID: "missing"})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing game id", func(t *testing.T) {
		handler := GameStatusHandler(&fakeEngine{}, "agent-1")
		_, _, err := handler(context.Background(), nil, GameStatusInput{})
		if err == nil {
			t.Fatal("expected error for missing game_id")
		}
	})
}

func TestProposeHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		engine := &fakeEngine{
			proposed: action.Action{
				ID:             "a1",
				Description:    "Strike the depot",
				DesiredOutcome: "Cut resupply for two rounds",
				Status:         action.StatusArguing,
				SequenceNumber: 3,
			},
		}
		handler := ProposeHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, ProposeInput{
			GameID:         "g1",
			Description:    "Strike the depot",
			DesiredOutcome: "Cut resupply for two rounds",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.gotPropose.GameID != "g1" || engine.gotPropose.Description != "Strike the depot" {
			t.Errorf("unexpected engine request %+v", engine.gotPropose)
		}
		if result.ActionID != "a1" || result.Status != "arguing" {
			t.Errorf("unexpected result %+v", result)
		}
		if result.SequenceNumber != 3 {
			t.Errorf("expected sequence 3, got %d", result.SequenceNumber)
		}
	})

	t.Run("engine error", func(t *testing.T) {
		engine := &fakeEngine{proposeErr: fmt.Errorf("phase disallows proposals")}
		handler := ProposeHandler(engine, "agent-1")
		_, _, err := handler(context.Background(), nil, ProposeInput{GameID: "g1", Description: "X"})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing game id", func(t *testing.T) {
		handler := ProposeHandler(&fakeEngine{}, "agent-1")
		_, _, err := handler(context.Background(), nil, ProposeInput{Description: "X"})
		if err == nil {
			t.Fatal("expected error for missing game_id")
		}
	})
}

func TestAddArgumentHandler(t *testing.T) {
	t.Run("normalizes type label", func(t *testing.T) {
		engine := &fakeEngine{
			argument: action.Argument{ID: "arg1", ActionID: "a1", Type: action.ArgumentTypeFor, Content: "Momentum favors us", Sequence: 2},
		}
		handler := AddArgumentHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, AddArgumentInput{
			GameID:  "g1",
			Type:    "FOR",
			Content: "Momentum favors us",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.gotArgument.Type != action.ArgumentTypeFor {
			t.Errorf("expected normalized type, got %q", engine.gotArgument.Type)
		}
		if result.ArgumentID != "arg1" || result.Type != "for" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("unrecognized type passes through", func(t *testing.T) {
		engine := &fakeEngine{argumentErr: action.ErrInvalidArgumentType}
		handler := AddArgumentHandler(engine, "agent-1")
		_, _, err := handler(context.Background(), nil, AddArgumentInput{GameID: "g1", Type: "sideways", Content: "X"})
		if err == nil {
			t.Fatal("expected error")
		}
		if engine.gotArgument.Type != action.ArgumentType("sideways") {
			t.Errorf("expected pass-through type, got %q", engine.gotArgument.Type)
		}
	})

	t.Run("missing game id", func(t *testing.T) {
		handler := AddArgumentHandler(&fakeEngine{}, "agent-1")
		_, _, err := handler(context.Background(), nil, AddArgumentInput{Type: "FOR", Content: "X"})
		if err == nil {
			t.Fatal("expected error for missing game_id")
		}
	})
}

func TestSubmitVoteHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		engine := &fakeEngine{
			voteStatus: gameengine.VoteStatus{
				Vote:     action.Vote{ID: "v1", ActionID: "a1", Type: action.VoteTypeLikelySuccess},
				Resolved: true,
			},
		}
		handler := SubmitVoteHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, SubmitVoteInput{GameID: "g1", Vote: "LIKELY_SUCCESS"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.gotVote.Type != action.VoteTypeLikelySuccess {
			t.Errorf("expected normalized vote type, got %q", engine.gotVote.Type)
		}
		if result.Vote != "likely_success" {
			t.Errorf("expected likely_success, got %q", result.Vote)
		}
		if !result.Resolved {
			t.Error("expected resolved flag")
		}
	})

	t.Run("engine error", func(t *testing.T) {
		engine := &fakeEngine{voteErr: fmt.Errorf("player has already voted")}
		handler := SubmitVoteHandler(engine, "agent-1")
		_, _, err := handler(context.Background(), nil, SubmitVoteInput{GameID: "g1", Vote: "uncertain"})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing game id", func(t *testing.T) {
		handler := SubmitVoteHandler(&fakeEngine{}, "agent-1")
		_, _, err := handler(context.Background(), nil, SubmitVoteInput{Vote: "uncertain"})
		if err == nil {
			t.Fatal("expected error for missing game_id")
		}
	})
}

func TestSubmitNarrationHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		engine := &fakeEngine{
			narration: gameengine.NarrationResult{
				Narration:      action.Narration{ActionID: "a1", Content: "The depot burns"},
				RoundCompleted: true,
				Phase:          game.PhaseRoundSummary,
			},
		}
		handler := SubmitNarrationHandler(engine, "agent-1")
		_, result, err := handler(context.Background(), nil, SubmitNarrationInput{GameID: "g1", Content: "The depot burns"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.gotNarration.Content != "The depot burns" {
			t.Errorf("unexpected engine request %+v", engine.gotNarration)
		}
		if !result.RoundCompleted || result.Phase != "round_summary" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("engine error", func(t *testing.T) {
		engine := &fakeEngine{narrationErr: action.ErrNarrationDenied}
		handler := SubmitNarrationHandler(engine, "agent-1")
		_, _, err := handler(context.Background(), nil, SubmitNarrationInput{GameID: "g1", Content: "X"})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing game id", func(t *testing.T) {
		handler := SubmitNarrationHandler(&fakeEngine{}, "agent-1")
		_, _, err := handler(context.Background(), nil, SubmitNarrationInput{Content: "X"})
		if err == nil {
			t.Fatal("expected error for missing game_id")
		}
	})
}
