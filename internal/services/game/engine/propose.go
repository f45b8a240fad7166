package engine

import (
	"context"
	"errors"
	"log"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// ProposeRequest describes a new action proposal.
type ProposeRequest struct {
	GameID         string
	Description    string
	DesiredOutcome string
}

// Propose files an action for the caller's acting unit and opens
// argumentation on it. One proposal per unit per round; the first proposal
// in a window wins the phase, so a concurrent rival fails on the stale-phase
// guard.
func (e *Engine) Propose(ctx context.Context, userID string, req ProposeRequest) (action.Action, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Action{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Action{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Action{}, err
	}
	if err := requirePhase(g, game.PhaseProposal); err != nil {
		return action.Action{}, err
	}

	a, err := e.fileProposal(ctx, g, seat, req.Description, req.DesiredOutcome)
	if err != nil {
		return action.Action{}, err
	}
	e.notify(ctx, NotifyActionProposed, g.ID, map[string]string{
		"initiator_name": seat.Name,
		"description":    a.Description,
	})
	return a, nil
}

// fileProposal creates the action row and moves the game into ARGUMENTATION
// in one transaction, then records the initiator's opening argument.
func (e *Engine) fileProposal(ctx context.Context, g game.Game, seat player.Player, description, desiredOutcome string) (action.Action, error) {
	actions, err := e.store.ListActionsByRound(ctx, g.CurrentRoundID)
	if err != nil {
		return action.Action{}, err
	}
	unitKey := unit.KeyFor(seat)
	for _, prior := range actions {
		if prior.InitiatorUnitKey == unitKey {
			return action.Action{}, apperrors.New(apperrors.CodeActionProposalExists, "your acting unit already proposed an action this round")
		}
	}
	// Sequence numbers count across the whole game, not per round. A rival
	// proposal racing for the same number loses on the stale-phase guard.
	sequence, err := e.store.NextActionSequence(ctx, g.ID)
	if err != nil {
		return action.Action{}, err
	}

	a, err := action.CreateAction(action.CreateActionInput{
		GameID:           g.ID,
		RoundID:          g.CurrentRoundID,
		InitiatorID:      seat.ID,
		InitiatorUnitKey: unitKey,
		SequenceNumber:   sequence,
		Description:      description,
		DesiredOutcome:   desiredOutcome,
	}, e.clock, e.idGenerator)
	if err != nil {
		return action.Action{}, err
	}

	transition := storage.PhaseTransition{
		GameID:          g.ID,
		FromPhase:       game.PhaseProposal,
		ToPhase:         game.PhaseArgumentation,
		At:              a.CreatedAt,
		CurrentActionID: strPtr(a.ID),
	}
	if err := e.store.CreateProposal(ctx, a, transition); err != nil {
		if errors.Is(err, storage.ErrDuplicateProposal) {
			return action.Action{}, apperrors.New(apperrors.CodeActionProposalExists, "your acting unit already proposed an action this round")
		}
		return action.Action{}, err
	}

	e.recordOpeningArgument(ctx, a)

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.ActionProposed,
		PayloadJSON: audit.Payload(map[string]any{
			"sequence_number": a.SequenceNumber,
			"description":     a.Description,
			"scripted":        seat.IsNPC,
		}),
		CreatedAt: a.CreatedAt,
	})
	e.emitPhaseChanged(ctx, transition, seat.ID)
	return a, nil
}

// recordOpeningArgument writes the initiator's case as the action's first
// argument. It lands outside the proposal transaction; if it fails the
// proposal stands and the case is restated during argumentation.
func (e *Engine) recordOpeningArgument(ctx context.Context, a action.Action) {
	content := a.DesiredOutcome
	if content == "" {
		content = a.Description
	}
	arg, err := action.CreateArgument(action.CreateArgumentInput{
		ActionID: a.ID,
		PlayerID: a.InitiatorID,
		Type:     action.ArgumentTypeInitiatorFor,
		Content:  content,
		Sequence: 1,
	}, e.clock, e.idGenerator)
	if err == nil {
		err = e.store.CreateArgument(ctx, arg)
	}
	if err != nil {
		log.Printf("record opening argument for action %s: %v", a.ID, err)
	}
}

// npcAutoPropose files the NPC's scripted proposal once every human unit has
// acted this round. It runs after the phase returns to PROPOSAL and again
// from the timeout sweep in case the trigger was missed. Races with human
// proposals or another sweep are benign.
func (e *Engine) npcAutoPropose(ctx context.Context, gameID string) error {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive || g.CurrentPhase != game.PhaseProposal {
		return nil
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return err
	}
	var npcSeat player.Player
	for _, p := range players {
		if p.IsActive && p.IsNPC {
			npcSeat = p
			break
		}
	}
	if npcSeat.ID == "" {
		return nil
	}

	actions, err := e.store.ListActionsByRound(ctx, g.CurrentRoundID)
	if err != nil {
		return err
	}
	acted := make(map[string]bool, len(actions))
	for _, a := range actions {
		acted[a.InitiatorUnitKey] = true
	}
	if acted[unit.KeyFor(npcSeat)] {
		return nil
	}
	// The NPC goes last: every human unit proposes first.
	for _, u := range unit.ActingUnits(players) {
		if !acted[u.Key] {
			return nil
		}
	}

	p, err := e.store.GetPersona(ctx, g.ID, npcSeat.PersonaID)
	if err != nil {
		return err
	}
	if p.ScriptedAction == "" {
		return nil
	}

	a, err := e.fileProposal(ctx, g, npcSeat, p.ScriptedAction, p.ScriptedOutcome)
	if err != nil {
		if errors.Is(err, storage.ErrStalePhase) || apperrors.HasCode(err, apperrors.CodeActionProposalExists) {
			return nil
		}
		return err
	}
	e.notify(ctx, NotifyActionProposed, g.ID, map[string]string{
		"initiator_name": npcSeat.Name,
		"description":    a.Description,
	})
	return nil
}

// EditActionRequest revises a proposal's text.
type EditActionRequest struct {
	GameID         string
	ActionID       string
	Description    string
	DesiredOutcome string
}

// EditAction updates a proposal's description and desired outcome. Any member
// of the initiating unit may edit, and the host may correct anyone's text,
// but only while the action is still in argumentation.
func (e *Engine) EditAction(ctx context.Context, userID string, req EditActionRequest) (action.Action, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Action{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Action{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Action{}, err
	}

	a, err := e.loadAction(ctx, g.ID, req.ActionID)
	if err != nil {
		return action.Action{}, err
	}
	if !seat.IsHost && unit.KeyFor(seat) != a.InitiatorUnitKey {
		return action.Action{}, action.ErrInitiatorRequired
	}
	if err := action.ValidateStatus(a.Status, action.StatusArguing); err != nil {
		return action.Action{}, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return action.Action{}, action.ErrEmptyDescription
	}

	updatedAt := e.now()
	if err := e.store.UpdateActionContent(ctx, a.ID, description, strings.TrimSpace(req.DesiredOutcome), updatedAt); err != nil {
		return action.Action{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.ActionEdited,
		CreatedAt: updatedAt,
	})
	return e.store.GetAction(ctx, a.ID)
}
