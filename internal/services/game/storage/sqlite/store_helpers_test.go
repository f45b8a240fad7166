package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

var testTime = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir() + "/warroom.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func testGame(id string) game.Game {
	return game.Game{
		ID:             id,
		Name:           "Strait Crisis",
		Status:         game.StatusLobby,
		CurrentPhase:   game.PhaseWaiting,
		PhaseStartedAt: testTime,
		Settings:       game.DefaultSettings(),
		CreatedAt:      testTime,
		UpdatedAt:      testTime,
	}
}

func seedGame(t *testing.T, store *Store, id string) game.Game {
	t.Helper()
	g := testGame(id)
	if err := store.PutGame(context.Background(), g); err != nil {
		t.Fatalf("seed game %s: %v", id, err)
	}
	return g
}

// seedActiveGame stores a game already running in the given phase.
func seedActiveGame(t *testing.T, store *Store, id string, phase game.Phase) game.Game {
	t.Helper()
	g := testGame(id)
	g.Status = game.StatusActive
	g.CurrentPhase = phase
	if err := store.PutGame(context.Background(), g); err != nil {
		t.Fatalf("seed active game %s: %v", id, err)
	}
	return g
}

func seedRound(t *testing.T, store *Store, gameID, roundID string, number int) round.Round {
	t.Helper()
	r := round.Round{
		ID:                   roundID,
		GameID:               gameID,
		RoundNumber:          number,
		Status:               round.StatusInProgress,
		TotalActionsRequired: 2,
		CreatedAt:            testTime,
		UpdatedAt:            testTime,
	}
	if err := store.PutRound(context.Background(), r); err != nil {
		t.Fatalf("seed round %s: %v", roundID, err)
	}
	return r
}

func testAction(gameID, roundID, actionID, unitKey string) action.Action {
	return action.Action{
		ID:                     actionID,
		GameID:                 gameID,
		RoundID:                roundID,
		InitiatorID:            "player-1",
		InitiatorUnitKey:       unitKey,
		SequenceNumber:         1,
		Description:            "Blockade the northern strait",
		DesiredOutcome:         "Shipping rerouted south",
		Status:                 action.StatusArguing,
		ArgumentationStartedAt: testTime,
		CreatedAt:              testTime,
		UpdatedAt:              testTime,
	}
}

// seedArguingAction stores an action mid-argumentation, the state most
// lifecycle tests start from.
func seedArguingAction(t *testing.T, store *Store, gameID, roundID, actionID, unitKey string) action.Action {
	t.Helper()
	a := testAction(gameID, roundID, actionID, unitKey)
	transition := storage.PhaseTransition{
		GameID:          gameID,
		FromPhase:       game.PhaseProposal,
		ToPhase:         game.PhaseArgumentation,
		At:              testTime,
		CurrentActionID: strPtr(actionID),
	}
	if err := store.CreateProposal(context.Background(), a, transition); err != nil {
		t.Fatalf("seed action %s: %v", actionID, err)
	}
	return a
}

func strPtr(value string) *string {
	return &value
}
