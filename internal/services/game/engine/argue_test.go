package engine

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
)

func TestAddArgumentAppendsInSequence(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	arg, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "Their fleet is still refueling.",
	})
	if err != nil {
		t.Fatalf("AddArgument() error = %v, want nil", err)
	}
	if arg.Type != action.ArgumentTypeFor {
		t.Errorf("argument type = %s, want %s", arg.Type, action.ArgumentTypeFor)
	}
	if arg.Sequence != 2 {
		t.Errorf("argument sequence = %d, want 2 (opening case is 1)", arg.Sequence)
	}
	if arg.PlayerID != h.seat(t, g.ID, "guest-user").ID {
		t.Errorf("argument player = %s, want guest seat", arg.PlayerID)
	}

	second, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeAgainst,
		Content: "On reflection, the mines are ours to clear afterwards.",
	})
	if err != nil {
		t.Fatalf("AddArgument() second error = %v, want nil", err)
	}
	if second.Sequence != 3 {
		t.Errorf("second argument sequence = %d, want 3", second.Sequence)
	}
	if !h.hasEvent(t, g.ID, "ARGUMENT_ADDED") {
		t.Error("audit log missing ARGUMENT_ADDED event")
	}
}

func TestAddArgumentInitiatorClarifiesOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	_, err := h.engine.AddArgument(context.Background(), "host-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "It will definitely work.",
	})
	if !apperrors.HasCode(err, apperrors.CodeArgumentTypeRestricted) {
		t.Fatalf("AddArgument(initiator FOR) error = %v, want %s", err, apperrors.CodeArgumentTypeRestricted)
	}

	clarification, err := h.engine.AddArgument(context.Background(), "host-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeClarification,
		Content: "The blockade targets cargo shipping only, not ferries.",
	})
	if err != nil {
		t.Fatalf("AddArgument(initiator CLARIFICATION) error = %v, want nil", err)
	}
	if clarification.Type != action.ArgumentTypeClarification {
		t.Errorf("argument type = %s, want %s", clarification.Type, action.ArgumentTypeClarification)
	}
}

func TestAddArgumentNonInitiatorCannotClarify(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	_, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeClarification,
		Content: "Allow me to explain their plan.",
	})
	if !apperrors.HasCode(err, apperrors.CodeArgumentTypeRestricted) {
		t.Fatalf("AddArgument() error = %v, want %s", err, apperrors.CodeArgumentTypeRestricted)
	}
}

func TestAddArgumentOnlyWhileArguing(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)

	_, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "One more thing.",
	})
	if !apperrors.HasCode(err, apperrors.CodeGamePhaseDisallowsOp) {
		t.Fatalf("AddArgument() error = %v, want %s", err, apperrors.CodeGamePhaseDisallowsOp)
	}
}

func TestAddArgumentEnforcesLimit(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	contents := []string{
		"Their escorts are in dry dock.",
		"Weather favors the defenders.",
		"Insurance rates will spike either way.",
	}
	for _, content := range contents {
		if _, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
			GameID:  g.ID,
			Type:    action.ArgumentTypeFor,
			Content: content,
		}); err != nil {
			t.Fatalf("AddArgument(%q) error = %v, want nil", content, err)
		}
	}

	_, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeAgainst,
		Content: "A fourth point.",
	})
	if !apperrors.HasCode(err, apperrors.CodeArgumentLimitReached) {
		t.Fatalf("AddArgument() error = %v, want %s", err, apperrors.CodeArgumentLimitReached)
	}

	// Clarifications never count against the cap.
	if _, err := h.engine.AddArgument(context.Background(), "host-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeClarification,
		Content: "Blockade runners will be boarded, not fired on.",
	}); err != nil {
		t.Fatalf("AddArgument(clarification past limit) error = %v, want nil", err)
	}
}

func TestAddArgumentSharedPoolLimit(t *testing.T) {
	h := newTestEngine(t)
	settings := game.DefaultSettings()
	settings.ArgumentMode = game.ArgumentModeSharedPool
	g, _ := h.sharedPersonaGame(t, settings)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	if _, err := h.engine.AddArgument(context.Background(), "ana-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "The syndicate's tugs can enforce it.",
	}); err != nil {
		t.Fatalf("AddArgument(ana #1) error = %v, want nil", err)
	}
	if _, err := h.engine.AddArgument(context.Background(), "ana-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeAgainst,
		Content: "Though our own freighters are caught in it too.",
	}); err != nil {
		t.Fatalf("AddArgument(ana #2) error = %v, want nil", err)
	}
	if _, err := h.engine.AddArgument(context.Background(), "ben-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "We can reroute through the canal.",
	}); err != nil {
		t.Fatalf("AddArgument(ben #1) error = %v, want nil", err)
	}

	// Ana used two of the persona's three slots and Ben the third, so Ben's
	// own second argument is over the shared cap.
	_, err := h.engine.AddArgument(context.Background(), "ben-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeAgainst,
		Content: "The canal tolls would ruin us.",
	})
	if !apperrors.HasCode(err, apperrors.CodeArgumentLimitReached) {
		t.Fatalf("AddArgument(ben #2) error = %v, want %s", err, apperrors.CodeArgumentLimitReached)
	}
}

func TestEditArgumentAuthorOrHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	h.join(t, "guest-user", g.ID, "Guest")
	h.join(t, "third-user", g.ID, "Third")
	h.start(t, "host-user", g.ID)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	arg, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "Their fleet is still refueling.",
	})
	if err != nil {
		t.Fatalf("AddArgument() error = %v, want nil", err)
	}

	_, err = h.engine.EditArgument(context.Background(), "third-user", EditArgumentRequest{
		GameID:     g.ID,
		ArgumentID: arg.ID,
		Content:    "Rewritten by someone else.",
	})
	if !apperrors.HasCode(err, apperrors.CodeArgumentEditDenied) {
		t.Fatalf("EditArgument(third) error = %v, want %s", err, apperrors.CodeArgumentEditDenied)
	}

	corrected, err := h.engine.EditArgument(context.Background(), "host-user", EditArgumentRequest{
		GameID:     g.ID,
		ArgumentID: arg.ID,
		Content:    "Their fleet is still refuelling.",
	})
	if err != nil {
		t.Fatalf("EditArgument(host) error = %v, want nil", err)
	}
	if corrected.Content != "Their fleet is still refuelling." {
		t.Errorf("host-corrected content = %q, want updated text", corrected.Content)
	}

	edited, err := h.engine.EditArgument(context.Background(), "guest-user", EditArgumentRequest{
		GameID:     g.ID,
		ArgumentID: arg.ID,
		Content:    "Their fleet is refueling and their tankers are empty.",
	})
	if err != nil {
		t.Fatalf("EditArgument(author) error = %v, want nil", err)
	}
	if edited.Content != "Their fleet is refueling and their tankers are empty." {
		t.Errorf("edited content = %q, want updated text", edited.Content)
	}
	if !h.hasEvent(t, g.ID, "ARGUMENT_EDITED") {
		t.Error("audit log missing ARGUMENT_EDITED event")
	}
}

func TestEditArgumentFrozenAfterArguing(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	arg, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeFor,
		Content: "Their fleet is still refueling.",
	})
	if err != nil {
		t.Fatalf("AddArgument() error = %v, want nil", err)
	}
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)

	_, err = h.engine.EditArgument(context.Background(), "guest-user", EditArgumentRequest{
		GameID:     g.ID,
		ArgumentID: arg.ID,
		Content:    "Too late to change my mind.",
	})
	if !apperrors.HasCode(err, apperrors.CodeActionStatusDisallowsOp) {
		t.Fatalf("EditArgument() error = %v, want %s", err, apperrors.CodeActionStatusDisallowsOp)
	}
}

func TestCompleteArgumentationAdvancesWhenAllUnitsSignal(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	status := h.completeArgumentation(t, "host-user", g.ID)
	if status.Advanced {
		t.Fatal("first signal advanced the phase, want wait for all units")
	}
	if status.UnitsSignaled != 1 || status.UnitsRequired != 2 {
		t.Errorf("signals = %d/%d, want 1/2", status.UnitsSignaled, status.UnitsRequired)
	}
	if got := h.game(t, g.ID).CurrentPhase; got != game.PhaseArgumentation {
		t.Errorf("phase after partial signals = %s, want %s", got, game.PhaseArgumentation)
	}

	status = h.completeArgumentation(t, "guest-user", g.ID)
	if !status.Advanced {
		t.Fatal("second signal did not advance the phase")
	}
	if got := h.game(t, g.ID).CurrentPhase; got != game.PhaseVoting {
		t.Errorf("phase = %s, want %s", got, game.PhaseVoting)
	}
	if got := h.action(t, a.ID).Status; got != action.StatusVoting {
		t.Errorf("action status = %s, want %s", got, action.StatusVoting)
	}
	if !h.hasEvent(t, g.ID, "ARGUMENTATION_COMPLETED") {
		t.Error("audit log missing ARGUMENTATION_COMPLETED event")
	}
	if !h.notifier.sent(NotifyVotingOpened) {
		t.Error("voting_opened notification not sent")
	}
}

func TestCompleteArgumentationSignalIsIdempotent(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	first := h.completeArgumentation(t, "host-user", g.ID)
	second := h.completeArgumentation(t, "host-user", g.ID)
	if second.Advanced {
		t.Fatal("repeat signal advanced the phase, want no change")
	}
	if second.UnitsSignaled != first.UnitsSignaled {
		t.Errorf("repeat signal count = %d, want %d", second.UnitsSignaled, first.UnitsSignaled)
	}
}

func TestCompleteArgumentationAfterAdvanceReportsDone(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)

	status := h.completeArgumentation(t, "host-user", g.ID)
	if !status.Advanced {
		t.Fatal("late signal Advanced = false, want true once voting is open")
	}
	if got := h.game(t, g.ID).CurrentPhase; got != game.PhaseVoting {
		t.Errorf("phase = %s, want %s", got, game.PhaseVoting)
	}
}

func TestSkipArgumentationHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	err := h.engine.SkipArgumentation(context.Background(), "guest-user", g.ID)
	if !apperrors.HasCode(err, apperrors.CodePlayerHostRequired) {
		t.Fatalf("SkipArgumentation(guest) error = %v, want %s", err, apperrors.CodePlayerHostRequired)
	}
}

func TestSkipArgumentationAdvancesImmediately(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "host-user", g.ID, "Blockade the northern strait.")

	if err := h.engine.SkipArgumentation(context.Background(), "host-user", g.ID); err != nil {
		t.Fatalf("SkipArgumentation() error = %v, want nil", err)
	}
	if got := h.game(t, g.ID).CurrentPhase; got != game.PhaseVoting {
		t.Errorf("phase = %s, want %s", got, game.PhaseVoting)
	}
	got := h.action(t, a.ID)
	if got.Status != action.StatusVoting {
		t.Errorf("action status = %s, want %s", got.Status, action.StatusVoting)
	}
	if !got.WasArgumentationSkipped {
		t.Error("WasArgumentationSkipped = false, want true")
	}
	if !h.hasEvent(t, g.ID, "ARGUMENTATION_SKIPPED") {
		t.Error("audit log missing ARGUMENTATION_SKIPPED event")
	}
}
