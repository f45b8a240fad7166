package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// AddArgumentRequest attaches an argument to the action in flight.
type AddArgumentRequest struct {
	GameID  string
	Type    action.ArgumentType
	Content string
}

// AddArgument records an argument on the current action. The initiator's unit
// may only clarify; everyone else argues for or against, capped by the
// game's argument limit counted per player or pooled across a persona.
func (e *Engine) AddArgument(ctx context.Context, userID string, req AddArgumentRequest) (action.Argument, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Argument{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := requirePhase(g, game.PhaseArgumentation); err != nil {
		return action.Argument{}, err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return action.Argument{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusArguing); err != nil {
		return action.Argument{}, err
	}

	isInitiator := unit.KeyFor(seat) == a.InitiatorUnitKey
	if err := action.ValidateArgumentAuthor(req.Type, isInitiator); err != nil {
		return action.Argument{}, err
	}

	args, err := e.store.ListArgumentsByAction(ctx, a.ID)
	if err != nil {
		return action.Argument{}, err
	}
	if req.Type == action.ArgumentTypeFor || req.Type == action.ArgumentTypeAgainst {
		if err := e.checkArgumentCap(ctx, g, seat.ID, seat.PersonaID, args); err != nil {
			return action.Argument{}, err
		}
	}

	arg, err := action.CreateArgument(action.CreateArgumentInput{
		ActionID: a.ID,
		PlayerID: seat.ID,
		Type:     req.Type,
		Content:  req.Content,
		Sequence: len(args) + 1,
	}, e.clock, e.idGenerator)
	if err != nil {
		return action.Argument{}, err
	}
	if err := e.store.CreateArgument(ctx, arg); err != nil {
		return action.Argument{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.ArgumentAdded,
		PayloadJSON: audit.Payload(map[string]any{
			"argument_type": action.ArgumentTypeLabel(arg.Type),
			"sequence":      arg.Sequence,
		}),
		CreatedAt: arg.CreatedAt,
	})
	return arg, nil
}

// checkArgumentCap enforces the for/against limit. Clarifications are never
// counted. Under shared_pool every member of the caller's persona draws from
// one budget.
func (e *Engine) checkArgumentCap(ctx context.Context, g game.Game, playerID, personaID string, args []action.Argument) error {
	pool := map[string]bool{playerID: true}
	if g.Settings.ArgumentMode == game.ArgumentModeSharedPool && personaID != "" {
		players, err := e.store.ListPlayersByGame(ctx, g.ID)
		if err != nil {
			return err
		}
		for _, memberID := range unit.PersonaMemberIDs(players, personaID) {
			pool[memberID] = true
		}
	}

	used := 0
	for _, existing := range args {
		if existing.Type != action.ArgumentTypeFor && existing.Type != action.ArgumentTypeAgainst {
			continue
		}
		if pool[existing.PlayerID] {
			used++
		}
	}
	limit := g.Settings.ArgumentLimit
	if used >= limit {
		return apperrors.WithMetadata(
			apperrors.CodeArgumentLimitReached,
			fmt.Sprintf("argument limit of %d has been reached", limit),
			map[string]string{"Limit": strconv.Itoa(limit)},
		)
	}
	return nil
}

// EditArgumentRequest rewrites an argument's content.
type EditArgumentRequest struct {
	GameID     string
	ArgumentID string
	Content    string
}

// EditArgument updates an argument's content while the action is still in
// argumentation. Players may edit their own arguments; the host may correct
// anyone's. Arguments freeze once voting opens.
func (e *Engine) EditArgument(ctx context.Context, userID string, req EditArgumentRequest) (action.Argument, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Argument{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Argument{}, err
	}

	arg, err := e.loadArgument(ctx, g.ID, req.ArgumentID)
	if err != nil {
		return action.Argument{}, err
	}
	if arg.PlayerID != seat.ID && !seat.IsHost {
		return action.Argument{}, apperrors.New(apperrors.CodeArgumentEditDenied, "you may only edit your own arguments")
	}
	a, err := e.store.GetAction(ctx, arg.ActionID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusArguing); err != nil {
		return action.Argument{}, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return action.Argument{}, action.ErrEmptyArgumentContent
	}

	updatedAt := e.now()
	if err := e.store.UpdateArgumentContent(ctx, arg.ID, content, updatedAt); err != nil {
		return action.Argument{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.ArgumentEdited,
		PayloadJSON: audit.Payload(map[string]any{
			"argument_id": arg.ID,
		}),
		CreatedAt: updatedAt,
	})
	return e.store.GetArgument(ctx, arg.ID)
}

// ArgumentationStatus reports where the done-arguing tally stands after a
// signal.
type ArgumentationStatus struct {
	ActionID      string
	UnitsSignaled int
	UnitsRequired int
	// Advanced is true once the action has moved to voting.
	Advanced bool
}

// CompleteArgumentation records the caller's unit as done arguing. Once every
// human acting unit has signaled, the action advances to voting. Signals are
// idempotent; a signal landing after the advance reports Advanced without
// error.
func (e *Engine) CompleteArgumentation(ctx context.Context, userID, gameID string) (ArgumentationStatus, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return ArgumentationStatus{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	status := ArgumentationStatus{ActionID: a.ID}

	if a.Status != action.StatusArguing {
		// A rival signal won the advance; repair the phase pointer if the
		// game row lags behind.
		if g.CurrentPhase == game.PhaseArgumentation {
			if _, err := e.advanceToVoting(ctx, g, a, false, seat.ID); err != nil {
				return ArgumentationStatus{}, err
			}
		}
		status.Advanced = true
		return status, nil
	}
	if err := requirePhase(g, game.PhaseArgumentation); err != nil {
		return ArgumentationStatus{}, err
	}

	if err := e.store.PutArgumentationSignal(ctx, storage.ArgumentationSignal{
		ActionID:  a.ID,
		UnitKey:   unit.KeyFor(seat),
		PlayerID:  seat.ID,
		CreatedAt: e.now(),
	}); err != nil {
		return ArgumentationStatus{}, err
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	signals, err := e.store.ListArgumentationSignals(ctx, a.ID)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	signaled := make([]string, 0, len(signals))
	for _, sig := range signals {
		signaled = append(signaled, sig.PlayerID)
	}

	units := unit.ActingUnits(players)
	status.UnitsRequired = len(units)
	status.UnitsSignaled = len(units) - len(unit.Uncovered(units, signaled))
	if !unit.AllCovered(units, signaled) {
		return status, nil
	}

	advanced, err := e.advanceToVoting(ctx, g, a, false, seat.ID)
	if err != nil {
		return ArgumentationStatus{}, err
	}
	if advanced {
		e.emitAudit(ctx, storage.AuditEvent{
			GameID:    g.ID,
			RoundID:   a.RoundID,
			ActionID:  a.ID,
			ActorID:   seat.ID,
			EventType: events.ArgumentationCompleted,
			PayloadJSON: audit.Payload(map[string]any{
				"units_required": status.UnitsRequired,
			}),
			CreatedAt: e.now(),
		})
	}
	status.Advanced = true
	return status, nil
}

// SkipArgumentation cuts argumentation short and opens voting. Host only.
func (e *Engine) SkipArgumentation(ctx context.Context, userID, gameID string) error {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return err
	}
	if err := requirePhase(g, game.PhaseArgumentation); err != nil {
		return err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return err
	}
	if a.Status != action.StatusArguing {
		_, err := e.advanceToVoting(ctx, g, a, false, host.ID)
		return err
	}

	advanced, err := e.advanceToVoting(ctx, g, a, true, host.ID)
	if err != nil {
		return err
	}
	if advanced {
		e.emitAudit(ctx, storage.AuditEvent{
			GameID:    g.ID,
			RoundID:   a.RoundID,
			ActionID:  a.ID,
			ActorID:   host.ID,
			EventType: events.ArgumentationSkipped,
			CreatedAt: e.now(),
		})
	}
	return nil
}

// advanceToVoting moves the action and then the game into VOTING. Both moves
// tolerate a racing advance so the helper doubles as a repair path. Reports
// whether this call won the phase move; the voting-opened notification fires
// only for the winner.
func (e *Engine) advanceToVoting(ctx context.Context, g game.Game, a action.Action, skipped bool, actorID string) (bool, error) {
	votingStartedAt := e.now()
	if err := e.store.StartActionVoting(ctx, a.ID, votingStartedAt, skipped); err != nil {
		if !errors.Is(err, storage.ErrStaleAction) {
			return false, err
		}
	}

	transition := storage.PhaseTransition{
		GameID:    g.ID,
		FromPhase: game.PhaseArgumentation,
		ToPhase:   game.PhaseVoting,
		At:        votingStartedAt,
	}
	err := e.commitPhase(ctx, transition, actorID)
	switch {
	case err == nil:
		e.notify(ctx, NotifyVotingOpened, g.ID, map[string]string{"action_id": a.ID})
		return true, nil
	case errors.Is(err, storage.ErrStalePhase):
		return false, nil
	default:
		return false, err
	}
}

// loadArgument fetches an argument and pins it to the given game via its
// action.
func (e *Engine) loadArgument(ctx context.Context, gameID, argumentID string) (action.Argument, error) {
	argumentID = strings.TrimSpace(argumentID)
	if argumentID == "" {
		return action.Argument{}, apperrors.New(apperrors.CodeArgumentNotFound, "argument id is required")
	}
	arg, err := e.store.GetArgument(ctx, argumentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return action.Argument{}, apperrors.New(apperrors.CodeArgumentNotFound, "argument not found")
		}
		return action.Argument{}, err
	}
	if _, err := e.loadAction(ctx, gameID, arg.ActionID); err != nil {
		return action.Argument{}, err
	}
	return arg, nil
}
