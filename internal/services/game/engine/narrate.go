package engine

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// SubmitNarrationRequest closes the resolved action with its outcome story.
type SubmitNarrationRequest struct {
	GameID  string
	Content string
}

// NarrationResult reports where the game landed after a narration: back in
// proposal for the next action, or in the round summary when the narrated
// action was the round's last.
type NarrationResult struct {
	Narration      action.Narration
	RoundCompleted bool
	Phase          game.Phase
}

// SubmitNarration records the narration for the resolved action, marks it
// NARRATED, and bumps the round's completion counter, all in one store
// commit. Who may narrate depends on the narration mode; NPC actions are
// narratable by any active player.
func (e *Engine) SubmitNarration(ctx context.Context, userID string, req SubmitNarrationRequest) (NarrationResult, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return NarrationResult{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return NarrationResult{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return NarrationResult{}, err
	}
	if err := requirePhase(g, game.PhaseNarration); err != nil {
		return NarrationResult{}, err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return NarrationResult{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusResolved); err != nil {
		return NarrationResult{}, err
	}
	if err := e.checkNarrationAllowed(ctx, g, a, seat.ID); err != nil {
		return NarrationResult{}, err
	}

	n, err := action.CreateNarration(action.CreateNarrationInput{
		ActionID: a.ID,
		AuthorID: seat.ID,
		Content:  req.Content,
	}, e.clock)
	if err != nil {
		return NarrationResult{}, err
	}

	r, err := e.store.GetRound(ctx, a.RoundID)
	if err != nil {
		return NarrationResult{}, err
	}
	roundCompleted := r.ActionsCompleted+1 >= r.TotalActionsRequired
	nextPhase := game.PhaseProposal
	if roundCompleted {
		nextPhase = game.PhaseRoundSummary
	}
	transition := storage.PhaseTransition{
		GameID:          g.ID,
		FromPhase:       game.PhaseNarration,
		ToPhase:         nextPhase,
		At:              n.CreatedAt,
		CurrentActionID: strPtr(""),
	}

	err = e.store.RecordNarration(ctx, storage.NarrationCommit{
		Narration:     n,
		RoundID:       a.RoundID,
		CompleteRound: roundCompleted,
		Transition:    transition,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateNarration) {
			return NarrationResult{}, action.ErrNarrationExists
		}
		return NarrationResult{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.ActionNarrated,
		PayloadJSON: audit.Payload(map[string]any{
			"narrated_by": seat.Name,
		}),
		CreatedAt: n.CreatedAt,
	})
	e.emitPhaseChanged(ctx, transition, seat.ID)
	e.notify(ctx, NotifyActionNarrated, g.ID, map[string]string{
		"action_id": a.ID,
		"narrator":  seat.Name,
	})

	if roundCompleted {
		e.emitAudit(ctx, storage.AuditEvent{
			GameID:    g.ID,
			RoundID:   r.ID,
			ActorID:   seat.ID,
			EventType: events.RoundCompleted,
			PayloadJSON: audit.Payload(map[string]any{
				"round_number":      r.RoundNumber,
				"actions_completed": r.ActionsCompleted + 1,
			}),
			CreatedAt: n.CreatedAt,
		})
		e.notify(ctx, NotifyRoundCompleted, g.ID, map[string]string{
			"round_number": strconv.Itoa(r.RoundNumber),
		})
	} else if err := e.npcAutoPropose(ctx, g.ID); err != nil {
		log.Printf("npc auto propose for game %s: %v", g.ID, err)
	}

	return NarrationResult{Narration: n, RoundCompleted: roundCompleted, Phase: nextPhase}, nil
}

// checkNarrationAllowed applies the game's narration mode: members of the
// initiator's unit always may, the host always may, everyone may when the
// mode is open or the action belongs to the NPC unit.
func (e *Engine) checkNarrationAllowed(ctx context.Context, g game.Game, a action.Action, playerID string) error {
	if g.Settings.NarrationMode == game.NarrationModeOpen {
		return nil
	}
	initiator, err := e.store.GetPlayer(ctx, g.ID, a.InitiatorID)
	if err != nil {
		return err
	}
	if initiator.IsNPC {
		return nil
	}
	seat, err := e.store.GetPlayer(ctx, g.ID, playerID)
	if err != nil {
		return err
	}
	if seat.IsHost || unit.KeyFor(seat) == a.InitiatorUnitKey {
		return nil
	}
	return action.ErrNarrationDenied
}

// EditNarrationRequest rewrites a narration's content.
type EditNarrationRequest struct {
	GameID   string
	ActionID string
	Content  string
}

// EditNarration updates the narration text without lifecycle effect. The
// original author and the host may edit.
func (e *Engine) EditNarration(ctx context.Context, userID string, req EditNarrationRequest) (action.Narration, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Narration{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Narration{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Narration{}, err
	}
	a, err := e.loadAction(ctx, g.ID, req.ActionID)
	if err != nil {
		return action.Narration{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusNarrated); err != nil {
		return action.Narration{}, err
	}
	n, err := e.store.GetNarration(ctx, a.ID)
	if err != nil {
		return action.Narration{}, err
	}
	if n.AuthorID != seat.ID && !seat.IsHost {
		return action.Narration{}, action.ErrNarrationDenied
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return action.Narration{}, action.ErrEmptyNarrationContent
	}

	updatedAt := e.now()
	if err := e.store.UpdateNarrationContent(ctx, a.ID, content, updatedAt); err != nil {
		return action.Narration{}, err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.NarrationEdited,
		CreatedAt: updatedAt,
	})
	return e.store.GetNarration(ctx, a.ID)
}

// SkipToNextAction force-completes the current round on whatever actions
// already exist and opens the next round. Host only, proposal phase only;
// stalls elsewhere are unwound with TransitionPhase first. Rejected when the
// round has no actions at all.
func (e *Engine) SkipToNextAction(ctx context.Context, userID, gameID string) (round.Round, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return round.Round{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return round.Round{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return round.Round{}, err
	}
	if err := requirePhase(g, game.PhaseProposal); err != nil {
		return round.Round{}, err
	}

	r, err := e.store.GetRound(ctx, g.CurrentRoundID)
	if err != nil {
		return round.Round{}, err
	}
	actions, err := e.store.ListActionsByRound(ctx, r.ID)
	if err != nil {
		return round.Round{}, err
	}
	if len(actions) == 0 {
		return round.Round{}, round.ErrNoActions
	}

	now := e.now()
	r.Status = round.StatusCompleted
	r.UpdatedAt = now
	if err := e.store.PutRound(ctx, r); err != nil {
		return round.Round{}, err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   r.ID,
		ActorID:   host.ID,
		EventType: events.RoundForcedComplete,
		PayloadJSON: audit.Payload(map[string]any{
			"round_number":      r.RoundNumber,
			"actions_completed": r.ActionsCompleted,
			"actions_proposed":  len(actions),
		}),
		CreatedAt: now,
	})

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return round.Round{}, err
	}
	next, err := e.openRound(ctx, g, r.RoundNumber+1, unit.RoundActionTotal(players), game.PhaseProposal, false, host.ID)
	if err != nil {
		return round.Round{}, err
	}
	return next, nil
}
