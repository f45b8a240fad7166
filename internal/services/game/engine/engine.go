// Package engine orchestrates matrix games: the round/action lifecycle, the
// phase pipeline, acting-unit thresholds, resolution, and the timeout sweep.
// Every transport surface (HTTP, MCP, the scenario runner, the worker) calls
// through this package; nothing else mutates game state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
	"github.com/louisbranch/warroom/internal/platform/random"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/resolution"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// Notifier delivers best-effort game notifications. Failures are logged by the
// engine and never surface to the caller or roll back the triggering mutation.
type Notifier interface {
	Notify(ctx context.Context, kind, gameID string, payload map[string]string) error
}

// Notification kinds the engine publishes.
const (
	NotifyGameStarted        = "game_started"
	NotifyPlayerJoined       = "player_joined"
	NotifyPlayerLeft         = "player_left"
	NotifyActionProposed     = "action_proposed"
	NotifyVotingOpened       = "voting_opened"
	NotifyActionResolved     = "action_resolved"
	NotifyActionNarrated     = "action_narrated"
	NotifyRoundCompleted     = "round_completed"
	NotifyPhaseTimeout       = "phase_timeout"
	NotifyHostActionRequired = "host_action_required"
)

// Config wires an Engine to its collaborators. Store is required; everything
// else defaults to a working standalone setup.
type Config struct {
	Store       storage.Store
	Notifier    Notifier
	Audit       *audit.Emitter
	Resolutions *resolution.Registry
	JoinGrants  invite.JoinGrantConfig
	Clock       func() time.Time
	IDGenerator func() (string, error)
	SeedSource  func() (int64, error)
}

// Engine is the game orchestrator. All methods are safe for concurrent use;
// conflicting mutations on the same game or action are settled by the store's
// uniqueness and conditional-update guards, never by in-process locks.
type Engine struct {
	store       storage.Store
	notifier    Notifier
	audit       *audit.Emitter
	resolutions *resolution.Registry
	grants      invite.JoinGrantConfig
	clock       func() time.Time
	idGenerator func() (string, error)
	seedSource  func() (int64, error)
}

// New creates an Engine from the given configuration.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine store is required")
	}
	e := &Engine{
		store:       cfg.Store,
		notifier:    cfg.Notifier,
		audit:       cfg.Audit,
		resolutions: cfg.Resolutions,
		grants:      cfg.JoinGrants,
		clock:       cfg.Clock,
		idGenerator: cfg.IDGenerator,
		seedSource:  cfg.SeedSource,
	}
	if e.audit == nil {
		e.audit = audit.NewEmitter(cfg.Store)
	}
	if e.resolutions == nil {
		e.resolutions = resolution.DefaultRegistry
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.idGenerator == nil {
		e.idGenerator = id.NewID
	}
	if e.seedSource == nil {
		e.seedSource = random.NewSeed
	}
	return e, nil
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// loadGame fetches a game, treating soft-deleted rows as absent.
func (e *Engine) loadGame(ctx context.Context, gameID string) (game.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, apperrors.New(apperrors.CodeGameNotFound, "game id is required")
	}
	g, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return game.Game{}, apperrors.New(apperrors.CodeGameNotFound, "game not found")
		}
		return game.Game{}, err
	}
	if g.Deleted() {
		return game.Game{}, apperrors.New(apperrors.CodeGameNotFound, "game not found")
	}
	return g, nil
}

func errCallerRequired() error {
	return apperrors.New(apperrors.CodePlayerMemberRequired, "caller identity is required")
}

// callerSeat resolves the caller's seat in a game, active or not. Read paths
// accept soft-left players; mutations go through activeSeat.
func (e *Engine) callerSeat(ctx context.Context, gameID, userID string) (player.Player, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return player.Player{}, errCallerRequired()
	}
	seat, err := e.store.GetPlayerByUser(ctx, gameID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return player.Player{}, apperrors.New(apperrors.CodePlayerMemberRequired, "caller does not hold a seat in this game")
		}
		return player.Player{}, err
	}
	return seat, nil
}

// activeSeat resolves the caller's seat and requires it to be active.
func (e *Engine) activeSeat(ctx context.Context, gameID, userID string) (player.Player, error) {
	seat, err := e.callerSeat(ctx, gameID, userID)
	if err != nil {
		return player.Player{}, err
	}
	if !seat.IsActive {
		return player.Player{}, player.ErrInactive
	}
	return seat, nil
}

// hostSeat resolves the caller's seat and requires the host role.
func (e *Engine) hostSeat(ctx context.Context, gameID, userID string) (player.Player, error) {
	seat, err := e.activeSeat(ctx, gameID, userID)
	if err != nil {
		return player.Player{}, err
	}
	if !seat.IsHost {
		return player.Player{}, apperrors.New(apperrors.CodePlayerHostRequired, "only the host may do this")
	}
	return seat, nil
}

// arbiterSeat resolves the caller's seat and requires the arbiter role. The
// host doubles as the arbiter; there is no separate arbiter flag.
func (e *Engine) arbiterSeat(ctx context.Context, gameID, userID string) (player.Player, error) {
	seat, err := e.activeSeat(ctx, gameID, userID)
	if err != nil {
		return player.Player{}, err
	}
	if !seat.IsHost {
		return player.Player{}, apperrors.New(apperrors.CodeResolutionArbiterRequired, "only the arbiter may do this")
	}
	return seat, nil
}

// requirePhase ensures the game currently sits in the phase an operation needs.
func requirePhase(g game.Game, required game.Phase) error {
	if g.CurrentPhase == required {
		return nil
	}
	currentLabel := game.PhaseLabel(g.CurrentPhase)
	requiredLabel := game.PhaseLabel(required)
	return apperrors.WithMetadata(
		apperrors.CodeGamePhaseDisallowsOp,
		fmt.Sprintf("game phase %s does not allow this operation (requires %s)", currentLabel, requiredLabel),
		map[string]string{"Phase": currentLabel, "RequiredPhase": requiredLabel},
	)
}

// currentAction fetches the action the game is pointing at.
func (e *Engine) currentAction(ctx context.Context, g game.Game) (action.Action, error) {
	if g.CurrentActionID == "" {
		return action.Action{}, apperrors.New(apperrors.CodeActionNotFound, "game has no action in flight")
	}
	return e.store.GetAction(ctx, g.CurrentActionID)
}

// loadAction fetches an action and pins it to the given game.
func (e *Engine) loadAction(ctx context.Context, gameID, actionID string) (action.Action, error) {
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return action.Action{}, apperrors.New(apperrors.CodeActionNotFound, "action id is required")
	}
	a, err := e.store.GetAction(ctx, actionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return action.Action{}, apperrors.New(apperrors.CodeActionNotFound, "action not found")
		}
		return action.Action{}, err
	}
	if a.GameID != gameID {
		return action.Action{}, apperrors.New(apperrors.CodeActionNotFound, "action does not belong to this game")
	}
	return a, nil
}

// commitPhase validates the move against the transition table and applies it.
// A PHASE_CHANGED audit event records the committed move.
func (e *Engine) commitPhase(ctx context.Context, transition storage.PhaseTransition, actorID string) error {
	if !game.IsPhaseTransitionAllowed(transition.FromPhase, transition.ToPhase) {
		return game.NewPhaseTransitionError(transition.FromPhase, transition.ToPhase)
	}
	if err := e.store.TransitionPhase(ctx, transition); err != nil {
		return err
	}
	e.emitPhaseChanged(ctx, transition, actorID)
	return nil
}

func (e *Engine) emitPhaseChanged(ctx context.Context, transition storage.PhaseTransition, actorID string) {
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    transition.GameID,
		ActorID:   actorID,
		EventType: events.PhaseChanged,
		PayloadJSON: audit.Payload(map[string]any{
			"from_phase": game.PhaseLabel(transition.FromPhase),
			"to_phase":   game.PhaseLabel(transition.ToPhase),
		}),
		CreatedAt: transition.At,
	})
}

// emitAudit records an audit event, logging and swallowing write failures so
// the triggering mutation stands.
func (e *Engine) emitAudit(ctx context.Context, evt storage.AuditEvent) {
	if err := e.audit.Emit(ctx, evt); err != nil {
		log.Printf("audit emit %s: %v", evt.EventType, err)
	}
}

// notify publishes a best-effort notification.
func (e *Engine) notify(ctx context.Context, kind, gameID string, payload map[string]string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, kind, gameID, payload); err != nil {
		log.Printf("notify %s: %v", kind, err)
	}
}

func strPtr(value string) *string {
	return &value
}
