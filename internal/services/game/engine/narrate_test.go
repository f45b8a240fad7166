package engine

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
)

func TestSubmitNarrationClosesActionAndReopensProposals(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)
	h.vote(t, "guest-user", g.ID, action.VoteTypeLikelySuccess)

	result, err := h.engine.SubmitNarration(context.Background(), "host-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "Tugs string the boom across the channel by nightfall.",
	})
	if err != nil {
		t.Fatalf("SubmitNarration() error = %v, want nil", err)
	}
	if result.RoundCompleted {
		t.Fatal("RoundCompleted = true after the first of two actions")
	}
	if result.Phase != game.PhaseProposal {
		t.Errorf("next phase = %s, want %s", result.Phase, game.PhaseProposal)
	}

	if got := h.action(t, a.ID).Status; got != action.StatusNarrated {
		t.Errorf("action status = %s, want %s", got, action.StatusNarrated)
	}
	updated := h.game(t, g.ID)
	if updated.CurrentPhase != game.PhaseProposal {
		t.Errorf("phase = %s, want %s", updated.CurrentPhase, game.PhaseProposal)
	}
	if updated.CurrentActionID != "" {
		t.Errorf("CurrentActionID = %q, want cleared", updated.CurrentActionID)
	}
	r, err := h.store.GetRound(context.Background(), updated.CurrentRoundID)
	if err != nil {
		t.Fatalf("GetRound() error = %v, want nil", err)
	}
	if r.ActionsCompleted != 1 {
		t.Errorf("ActionsCompleted = %d, want 1", r.ActionsCompleted)
	}
	if !h.hasEvent(t, g.ID, "ACTION_NARRATED") {
		t.Error("audit log missing ACTION_NARRATED event")
	}
	if !h.notifier.sent(NotifyActionNarrated) {
		t.Error("action_narrated notification not sent")
	}
}

func TestSubmitNarrationInitiatorOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)
	h.vote(t, "guest-user", g.ID, action.VoteTypeLikelySuccess)

	_, err := h.engine.SubmitNarration(context.Background(), "guest-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "I was not there, but here is what happened.",
	})
	if !errors.Is(err, action.ErrNarrationDenied) {
		t.Fatalf("SubmitNarration(guest) error = %v, want %v", err, action.ErrNarrationDenied)
	}
}

func TestSubmitNarrationOpenMode(t *testing.T) {
	h := newTestEngine(t)
	settings := game.DefaultSettings()
	settings.NarrationMode = game.NarrationModeOpen
	g := h.createGame(t, "host-user", settings)
	h.join(t, "guest-user", g.ID, "Guest")
	h.start(t, "host-user", g.ID)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)
	h.vote(t, "guest-user", g.ID, action.VoteTypeLikelySuccess)

	if _, err := h.engine.SubmitNarration(context.Background(), "guest-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "The harbor wakes to a wall of moored tugs.",
	}); err != nil {
		t.Fatalf("SubmitNarration(guest, open mode) error = %v, want nil", err)
	}
}

func TestSubmitNarrationHostMayAlwaysNarrate(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Charter neutral freighters.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)
	h.vote(t, "guest-user", g.ID, action.VoteTypeLikelySuccess)

	if _, err := h.engine.SubmitNarration(context.Background(), "host-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "The charters clear customs under a borrowed flag.",
	}); err != nil {
		t.Fatalf("SubmitNarration(host, guest's action) error = %v, want nil", err)
	}
}

func TestSubmitNarrationNPCActionOpenToAll(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	h.join(t, "guest-user", g.ID, "Guest")
	if _, err := h.engine.CreatePersona(context.Background(), "host-user", g.ID, CreatePersonaRequest{
		Name:           "Harbor Authority",
		IsNPC:          true,
		ScriptedAction: "Seize the broadcasting tower",
	}); err != nil {
		t.Fatalf("CreatePersona() error = %v, want nil", err)
	}
	h.start(t, "host-user", g.ID)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")
	h.playAction(t, g.ID, "guest-user", "host-user", "Charter neutral freighters.")

	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)
	h.vote(t, "guest-user", g.ID, action.VoteTypeLikelySuccess)

	// Guest is neither host nor initiator, but NPC actions are open.
	result, err := h.engine.SubmitNarration(context.Background(), "guest-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "Militia walk into an empty station; the signal never drops.",
	})
	if err != nil {
		t.Fatalf("SubmitNarration(guest, NPC action) error = %v, want nil", err)
	}
	if !result.RoundCompleted {
		t.Error("RoundCompleted = false after the round's final action")
	}
}

func TestSubmitNarrationCompletingRoundStopsAtSummary(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	firstRoundID := h.game(t, g.ID).CurrentRoundID

	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")
	result := h.playAction(t, g.ID, "guest-user", "host-user", "Charter neutral freighters.")

	if !result.RoundCompleted {
		t.Fatal("RoundCompleted = false after the round's final action")
	}
	if result.Phase != game.PhaseRoundSummary {
		t.Errorf("next phase = %s, want %s", result.Phase, game.PhaseRoundSummary)
	}
	if got := h.game(t, g.ID).CurrentPhase; got != game.PhaseRoundSummary {
		t.Errorf("phase = %s, want %s", got, game.PhaseRoundSummary)
	}
	r, err := h.store.GetRound(context.Background(), firstRoundID)
	if err != nil {
		t.Fatalf("GetRound() error = %v, want nil", err)
	}
	if r.Status != round.StatusCompleted {
		t.Errorf("round status = %s, want %s", r.Status, round.StatusCompleted)
	}
	if r.ActionsCompleted != 2 {
		t.Errorf("ActionsCompleted = %d, want 2", r.ActionsCompleted)
	}
	if !h.hasEvent(t, g.ID, "ROUND_COMPLETED") {
		t.Error("audit log missing ROUND_COMPLETED event")
	}
	if !h.notifier.sent(NotifyRoundCompleted) {
		t.Error("round_completed notification not sent")
	}

	// The host reviews the summary, then opens the next round.
	updated, err := h.engine.TransitionPhase(context.Background(), "host-user", g.ID, game.PhaseProposal)
	if err != nil {
		t.Fatalf("TransitionPhase(summary, proposal) error = %v, want nil", err)
	}
	if updated.CurrentRoundID == firstRoundID {
		t.Fatal("CurrentRoundID unchanged, want a fresh round")
	}
	second, err := h.store.GetRound(context.Background(), updated.CurrentRoundID)
	if err != nil {
		t.Fatalf("GetRound(second) error = %v, want nil", err)
	}
	if second.RoundNumber != 2 {
		t.Errorf("RoundNumber = %d, want 2", second.RoundNumber)
	}
	if second.Status != round.StatusInProgress {
		t.Errorf("round status = %s, want %s", second.Status, round.StatusInProgress)
	}
}

func TestEditNarrationAuthorOrHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	h.join(t, "guest-user", g.ID, "Guest")
	h.join(t, "third-user", g.ID, "Third")
	h.start(t, "host-user", g.ID)

	a := h.propose(t, "guest-user", g.ID, "Charter neutral freighters.")
	for _, user := range []string{"host-user", "guest-user", "third-user"} {
		h.completeArgumentation(t, user, g.ID)
	}
	for _, user := range []string{"host-user", "guest-user", "third-user"} {
		h.vote(t, user, g.ID, action.VoteTypeLikelySuccess)
	}
	if _, err := h.engine.SubmitNarration(context.Background(), "guest-user", SubmitNarrationRequest{
		GameID:  g.ID,
		Content: "The charters clear customs under a borrowed flag.",
	}); err != nil {
		t.Fatalf("SubmitNarration() error = %v, want nil", err)
	}

	_, err := h.engine.EditNarration(context.Background(), "third-user", EditNarrationRequest{
		GameID:   g.ID,
		ActionID: a.ID,
		Content:  "Rewritten by a bystander.",
	})
	if !errors.Is(err, action.ErrNarrationDenied) {
		t.Fatalf("EditNarration(third) error = %v, want %v", err, action.ErrNarrationDenied)
	}

	edited, err := h.engine.EditNarration(context.Background(), "host-user", EditNarrationRequest{
		GameID:   g.ID,
		ActionID: a.ID,
		Content:  "The charters clear customs; the manifest lists fertilizer.",
	})
	if err != nil {
		t.Fatalf("EditNarration(host) error = %v, want nil", err)
	}
	if edited.Content != "The charters clear customs; the manifest lists fertilizer." {
		t.Errorf("edited content = %q, want updated text", edited.Content)
	}
	if !h.hasEvent(t, g.ID, "NARRATION_EDITED") {
		t.Error("audit log missing NARRATION_EDITED event")
	}
}

func TestSkipToNextActionForcesRoundClosed(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	firstRoundID := h.game(t, g.ID).CurrentRoundID
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	next, err := h.engine.SkipToNextAction(context.Background(), "host-user", g.ID)
	if err != nil {
		t.Fatalf("SkipToNextAction() error = %v, want nil", err)
	}
	if next.RoundNumber != 2 {
		t.Errorf("next round number = %d, want 2", next.RoundNumber)
	}
	first, err := h.store.GetRound(context.Background(), firstRoundID)
	if err != nil {
		t.Fatalf("GetRound(first) error = %v, want nil", err)
	}
	if first.Status != round.StatusCompleted {
		t.Errorf("forced round status = %s, want %s", first.Status, round.StatusCompleted)
	}
	updated := h.game(t, g.ID)
	if updated.CurrentRoundID != next.ID {
		t.Errorf("CurrentRoundID = %s, want %s", updated.CurrentRoundID, next.ID)
	}
	if updated.CurrentPhase != game.PhaseProposal {
		t.Errorf("phase = %s, want %s", updated.CurrentPhase, game.PhaseProposal)
	}
	if !h.hasEvent(t, g.ID, "ROUND_FORCED_COMPLETE") {
		t.Error("audit log missing ROUND_FORCED_COMPLETE event")
	}
}

func TestSkipToNextActionRequiresProgress(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)

	_, err := h.engine.SkipToNextAction(context.Background(), "host-user", g.ID)
	if !errors.Is(err, round.ErrNoActions) {
		t.Fatalf("SkipToNextAction() error = %v, want %v", err, round.ErrNoActions)
	}
}

func TestSkipToNextActionHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	_, err := h.engine.SkipToNextAction(context.Background(), "guest-user", g.ID)
	if !apperrors.HasCode(err, apperrors.CodePlayerHostRequired) {
		t.Fatalf("SkipToNextAction(guest) error = %v, want %s", err, apperrors.CodePlayerHostRequired)
	}
}
