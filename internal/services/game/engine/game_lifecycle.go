package engine

import (
	"context"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// CreateGameRequest describes a new game and its host seat.
type CreateGameRequest struct {
	Name     string
	HostName string
	Settings game.Settings
}

// CreateGame creates a game in the lobby and seats the caller as its host. A
// blank host name defaults to "Host".
func (e *Engine) CreateGame(ctx context.Context, userID string, req CreateGameRequest) (game.Game, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return game.Game{}, errCallerRequired()
	}

	g, err := game.CreateGame(game.CreateGameInput{Name: req.Name, Settings: req.Settings}, e.clock, e.idGenerator)
	if err != nil {
		return game.Game{}, err
	}

	hostName := strings.TrimSpace(req.HostName)
	if hostName == "" {
		hostName = "Host"
	}
	host, err := player.CreatePlayer(player.CreatePlayerInput{
		GameID: g.ID,
		UserID: userID,
		Name:   hostName,
		IsHost: true,
	}, e.clock, e.idGenerator)
	if err != nil {
		return game.Game{}, err
	}

	if err := e.store.PutGame(ctx, g); err != nil {
		return game.Game{}, err
	}
	if err := e.store.PutPlayer(ctx, host); err != nil {
		return game.Game{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   host.ID,
		EventType: events.GameCreated,
		PayloadJSON: audit.Payload(map[string]any{
			"name":              g.Name,
			"resolution_method": g.Settings.ResolutionMethod,
		}),
		CreatedAt: g.CreatedAt,
	})
	return g, nil
}

// UpdateSettings replaces the game settings. Host only, lobby only.
func (e *Engine) UpdateSettings(ctx context.Context, userID, gameID string, settings game.Settings) (game.Game, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpLobbyMutate); err != nil {
		return game.Game{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return game.Game{}, err
	}

	normalized, err := game.NormalizeSettings(settings)
	if err != nil {
		return game.Game{}, err
	}

	g.Settings = normalized
	g.UpdatedAt = e.now()
	if err := e.store.PutGame(ctx, g); err != nil {
		return game.Game{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   host.ID,
		EventType: events.SettingsUpdated,
		PayloadJSON: audit.Payload(map[string]any{
			"resolution_method": normalized.ResolutionMethod,
			"voting_mode":       string(normalized.VotingMode),
			"argument_mode":     string(normalized.ArgumentMode),
			"narration_mode":    string(normalized.NarrationMode),
		}),
		CreatedAt: g.UpdatedAt,
	})
	return g, nil
}

// StartGame activates a lobby game: it requires at least two active human
// players, seats the NPC actor when an NPC persona is defined, opens round
// one, and moves the game into its first proposal phase.
func (e *Engine) StartGame(ctx context.Context, userID, gameID string) (game.Game, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpStart); err != nil {
		return game.Game{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return game.Game{}, err
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return game.Game{}, err
	}
	if player.ActiveHumanCount(players) < game.MinPlayersToStart {
		return game.Game{}, game.ErrNotStartable
	}

	players, err = e.seedNPCSeat(ctx, g, players)
	if err != nil {
		return game.Game{}, err
	}

	r, err := e.openRound(ctx, g, 1, unit.RoundActionTotal(players), game.PhaseWaiting, true, host.ID)
	if err != nil {
		return game.Game{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   r.ID,
		ActorID:   host.ID,
		EventType: events.GameStarted,
		PayloadJSON: audit.Payload(map[string]any{
			"active_players":         player.ActiveHumanCount(players),
			"total_actions_required": r.TotalActionsRequired,
		}),
		CreatedAt: r.CreatedAt,
	})
	e.notify(ctx, NotifyGameStarted, g.ID, map[string]string{"game_name": g.Name})

	return e.store.GetGame(ctx, g.ID)
}

// seedNPCSeat creates the system actor's seat for the first NPC persona that
// has none yet. The seat claims the persona as its lead so acting-unit math
// counts it once.
func (e *Engine) seedNPCSeat(ctx context.Context, g game.Game, players []player.Player) ([]player.Player, error) {
	if _, ok := unit.NPCUnit(players); ok {
		return players, nil
	}

	personas, err := e.store.ListPersonasByGame(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range personas {
		if !p.IsNPC {
			continue
		}
		seat, err := player.CreatePlayer(player.CreatePlayerInput{
			GameID: g.ID,
			Name:   p.Name,
			IsNPC:  true,
		}, e.clock, e.idGenerator)
		if err != nil {
			return nil, err
		}
		seat.PersonaID = p.ID
		seat.IsPersonaLead = true
		if err := e.store.PutPlayer(ctx, seat); err != nil {
			return nil, err
		}
		return append(players, seat), nil
	}
	return players, nil
}

// openRound creates the round row and points the game at it, entering
// PROPOSAL in one transaction.
func (e *Engine) openRound(ctx context.Context, g game.Game, roundNumber, totalActions int, from game.Phase, activate bool, actorID string) (round.Round, error) {
	r, err := round.CreateRound(round.CreateRoundInput{
		GameID:               g.ID,
		RoundNumber:          roundNumber,
		TotalActionsRequired: totalActions,
	}, e.clock, e.idGenerator)
	if err != nil {
		return round.Round{}, err
	}

	transition := storage.PhaseTransition{
		GameID:          g.ID,
		FromPhase:       from,
		ToPhase:         game.PhaseProposal,
		At:              e.now(),
		CurrentRoundID:  strPtr(r.ID),
		CurrentActionID: strPtr(""),
	}
	if err := e.store.StartRound(ctx, storage.RoundStart{
		Round:        r,
		ActivateGame: activate,
		Transition:   transition,
	}); err != nil {
		return round.Round{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   r.ID,
		ActorID:   actorID,
		EventType: events.RoundStarted,
		PayloadJSON: audit.Payload(map[string]any{
			"round_number":           r.RoundNumber,
			"total_actions_required": r.TotalActionsRequired,
		}),
		CreatedAt: r.CreatedAt,
	})
	e.emitPhaseChanged(ctx, transition, actorID)
	return r, nil
}

// DeleteGame soft-deletes a lobby game. Host only.
func (e *Engine) DeleteGame(ctx context.Context, userID, gameID string) error {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.ValidateOperation(g.Status, game.OpDelete); err != nil {
		return err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return err
	}

	deletedAt := e.now()
	g.DeletedAt = deletedAt
	g.UpdatedAt = deletedAt
	if err := e.store.PutGame(ctx, g); err != nil {
		return err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   host.ID,
		EventType: events.GameDeleted,
		CreatedAt: deletedAt,
	})
	return nil
}

// TransitionPhase applies a host-triggered phase move, validated against the
// fixed transition table. Moving out of ROUND_SUMMARY opens the next round;
// that is the recovery path when an automatic rollover did not complete.
func (e *Engine) TransitionPhase(ctx context.Context, userID, gameID string, to game.Phase) (game.Game, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return game.Game{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return game.Game{}, err
	}

	if !game.IsPhaseTransitionAllowed(g.CurrentPhase, to) {
		return game.Game{}, game.NewPhaseTransitionError(g.CurrentPhase, to)
	}

	if g.CurrentPhase == game.PhaseRoundSummary && to == game.PhaseProposal {
		if _, err := e.rolloverRound(ctx, g, game.PhaseRoundSummary, host.ID); err != nil {
			return game.Game{}, err
		}
		return e.store.GetGame(ctx, g.ID)
	}

	transition := storage.PhaseTransition{
		GameID:    g.ID,
		FromPhase: g.CurrentPhase,
		ToPhase:   to,
		At:        e.now(),
	}
	// Leaving NARRATION abandons any un-narrated action pointer.
	if g.CurrentPhase == game.PhaseNarration {
		transition.CurrentActionID = strPtr("")
	}
	if err := e.commitPhase(ctx, transition, host.ID); err != nil {
		return game.Game{}, err
	}
	return e.store.GetGame(ctx, g.ID)
}

// rolloverRound opens the round after the game's current one, sized from the
// present roster.
func (e *Engine) rolloverRound(ctx context.Context, g game.Game, from game.Phase, actorID string) (round.Round, error) {
	current, err := e.store.GetRound(ctx, g.CurrentRoundID)
	if err != nil {
		return round.Round{}, err
	}
	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return round.Round{}, err
	}
	return e.openRound(ctx, g, current.RoundNumber+1, unit.RoundActionTotal(players), from, false, actorID)
}

// TimeoutStatus reports where a game stands against its phase deadline.
type TimeoutStatus struct {
	GameID         string
	Phase          game.Phase
	PhaseStartedAt time.Time
	// Timed is false for untimed phases and non-active games.
	Timed bool
	// Infinite marks a timed phase configured to never expire.
	Infinite  bool
	Deadline  time.Time
	Remaining time.Duration
}

// GetTimeoutStatus resolves the deadline the timeout sweep would hold the
// game's current phase to.
func (e *Engine) GetTimeoutStatus(ctx context.Context, userID, gameID string) (TimeoutStatus, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return TimeoutStatus{}, err
	}
	if _, err := e.callerSeat(ctx, g.ID, userID); err != nil {
		return TimeoutStatus{}, err
	}

	status := TimeoutStatus{
		GameID:         g.ID,
		Phase:          g.CurrentPhase,
		PhaseStartedAt: g.PhaseStartedAt,
	}
	if g.Status != game.StatusActive || !game.IsTimedPhase(g.CurrentPhase) {
		return status, nil
	}
	status.Timed = true

	duration, ok := game.TimeoutForPhase(g.Settings, g.CurrentPhase)
	if !ok {
		status.Infinite = true
		return status, nil
	}

	status.Deadline = g.PhaseStartedAt.Add(duration)
	if remaining := status.Deadline.Sub(e.now()); remaining > 0 {
		status.Remaining = remaining
	}
	return status, nil
}
