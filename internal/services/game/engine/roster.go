package engine

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/persona"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// JoinGame seats the caller in a lobby game. Users who left must rejoin
// instead of joining twice.
func (e *Engine) JoinGame(ctx context.Context, userID, gameID, name string) (player.Player, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return player.Player{}, errCallerRequired()
	}
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return player.Player{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpJoin); err != nil {
		return player.Player{}, err
	}

	seat, err := player.CreatePlayer(player.CreatePlayerInput{
		GameID: g.ID,
		UserID: userID,
		Name:   name,
	}, e.clock, e.idGenerator)
	if err != nil {
		return player.Player{}, err
	}

	if err := e.store.PutPlayer(ctx, seat); err != nil {
		if errors.Is(err, storage.ErrPlayerExists) {
			return player.Player{}, apperrors.New(apperrors.CodePlayerAlreadyJoined, "you already hold a seat in this game")
		}
		return player.Player{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:      g.ID,
		ActorID:     seat.ID,
		EventType:   events.PlayerJoined,
		PayloadJSON: audit.Payload(map[string]any{"player_name": seat.Name}),
		CreatedAt:   seat.JoinedAt,
	})
	e.notify(ctx, NotifyPlayerJoined, g.ID, map[string]string{"player_name": seat.Name})
	return seat, nil
}

// LeaveGame marks the caller's seat inactive. A lead who leaves hands their
// persona to the longest-seated remaining claimant.
func (e *Engine) LeaveGame(ctx context.Context, userID, gameID string) error {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.ValidateOperation(g.Status, game.OpLeave); err != nil {
		return err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return err
	}

	wasLead := seat.IsPersonaLead
	personaID := seat.PersonaID
	seat.IsActive = false
	seat.IsPersonaLead = false
	seat.UpdatedAt = e.now()
	if err := e.store.PutPlayer(ctx, seat); err != nil {
		return err
	}
	if wasLead {
		if err := e.reassignLead(ctx, g.ID, personaID); err != nil {
			return err
		}
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:      g.ID,
		ActorID:     seat.ID,
		EventType:   events.PlayerLeft,
		PayloadJSON: audit.Payload(map[string]any{"player_name": seat.Name}),
		CreatedAt:   seat.UpdatedAt,
	})
	e.notify(ctx, NotifyPlayerLeft, g.ID, map[string]string{"player_name": seat.Name})
	return nil
}

// RejoinGame reactivates the caller's seat. If their persona lost its lead
// while they were away, they take it back.
func (e *Engine) RejoinGame(ctx context.Context, userID, gameID string) (player.Player, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return player.Player{}, err
	}
	seat, err := e.callerSeat(ctx, g.ID, userID)
	if err != nil {
		return player.Player{}, err
	}
	if seat.IsActive {
		return seat, nil
	}
	if err := game.ValidateOperation(g.Status, game.OpRejoin); err != nil {
		return player.Player{}, err
	}

	seat.IsActive = true
	seat.UpdatedAt = e.now()
	if seat.PersonaID != "" {
		players, err := e.store.ListPlayersByGame(ctx, g.ID)
		if err != nil {
			return player.Player{}, err
		}
		if !personaHasActiveLead(players, seat.PersonaID) {
			seat.IsPersonaLead = true
		}
	}
	if err := e.store.PutPlayer(ctx, seat); err != nil {
		return player.Player{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:      g.ID,
		ActorID:     seat.ID,
		EventType:   events.PlayerRejoined,
		PayloadJSON: audit.Payload(map[string]any{"player_name": seat.Name}),
		CreatedAt:   seat.UpdatedAt,
	})
	e.notify(ctx, NotifyPlayerJoined, g.ID, map[string]string{"player_name": seat.Name})
	return seat, nil
}

// CreatePersonaRequest describes a persona added to the game's catalog.
type CreatePersonaRequest struct {
	Name  string
	IsNPC bool
	// Scripted fields are the NPC's canned proposal; ignored for human
	// personas.
	ScriptedAction  string
	ScriptedOutcome string
}

// CreatePersona adds a persona to a lobby game's catalog. Host only.
func (e *Engine) CreatePersona(ctx context.Context, userID, gameID string, req CreatePersonaRequest) (persona.Persona, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return persona.Persona{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpLobbyMutate); err != nil {
		return persona.Persona{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return persona.Persona{}, err
	}

	p, err := persona.CreatePersona(persona.CreatePersonaInput{
		GameID:          g.ID,
		Name:            req.Name,
		IsNPC:           req.IsNPC,
		ScriptedAction:  req.ScriptedAction,
		ScriptedOutcome: req.ScriptedOutcome,
	}, e.clock, e.idGenerator)
	if err != nil {
		return persona.Persona{}, err
	}
	if err := e.store.PutPersona(ctx, p); err != nil {
		return persona.Persona{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   host.ID,
		EventType: events.PersonaCreated,
		PayloadJSON: audit.Payload(map[string]any{
			"persona_name": p.Name,
			"is_npc":       p.IsNPC,
		}),
		CreatedAt: p.CreatedAt,
	})
	return p, nil
}

// ClaimPersona attaches the caller's seat to a persona while the game is in
// the lobby. The first claimant becomes the persona lead; later claimants
// need sharing enabled. Claiming a different persona releases the current
// one.
func (e *Engine) ClaimPersona(ctx context.Context, userID, gameID, personaID string) (player.Player, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return player.Player{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpLobbyMutate); err != nil {
		return player.Player{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return player.Player{}, err
	}

	p, err := e.store.GetPersona(ctx, g.ID, personaID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return player.Player{}, apperrors.New(apperrors.CodePersonaNotFound, "persona not found")
		}
		return player.Player{}, err
	}
	if p.IsNPC {
		return player.Player{}, apperrors.New(apperrors.CodePersonaAlreadyClaimed, "npc personas belong to the system actor")
	}
	if seat.PersonaID == p.ID {
		return seat, nil
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return player.Player{}, err
	}
	claimed := false
	for _, other := range players {
		if other.ID != seat.ID && other.IsActive && other.PersonaID == p.ID {
			claimed = true
			break
		}
	}
	if claimed && !g.Settings.PersonaSharingEnabled {
		return player.Player{}, persona.ErrSharingDisabled
	}

	released := seat.PersonaID
	wasLead := seat.IsPersonaLead
	seat.PersonaID = p.ID
	seat.IsPersonaLead = !claimed
	seat.UpdatedAt = e.now()
	if err := e.store.PutPlayer(ctx, seat); err != nil {
		return player.Player{}, err
	}
	if released != "" && wasLead {
		if err := e.reassignLead(ctx, g.ID, released); err != nil {
			return player.Player{}, err
		}
	}

	if released != "" {
		e.emitAudit(ctx, storage.AuditEvent{
			GameID:      g.ID,
			ActorID:     seat.ID,
			EventType:   events.PersonaReleased,
			PayloadJSON: audit.Payload(map[string]any{"persona_id": released}),
			CreatedAt:   seat.UpdatedAt,
		})
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   seat.ID,
		EventType: events.PersonaClaimed,
		PayloadJSON: audit.Payload(map[string]any{
			"persona_name": p.Name,
			"is_lead":      seat.IsPersonaLead,
		}),
		CreatedAt: seat.UpdatedAt,
	})
	return seat, nil
}

// ReleasePersona detaches the caller's seat from its persona. Releasing a
// lead promotes the longest-seated remaining claimant.
func (e *Engine) ReleasePersona(ctx context.Context, userID, gameID string) (player.Player, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return player.Player{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpLobbyMutate); err != nil {
		return player.Player{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return player.Player{}, err
	}
	if seat.PersonaID == "" {
		return seat, nil
	}

	released := seat.PersonaID
	wasLead := seat.IsPersonaLead
	seat.PersonaID = ""
	seat.IsPersonaLead = false
	seat.UpdatedAt = e.now()
	if err := e.store.PutPlayer(ctx, seat); err != nil {
		return player.Player{}, err
	}
	if wasLead {
		if err := e.reassignLead(ctx, g.ID, released); err != nil {
			return player.Player{}, err
		}
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:      g.ID,
		ActorID:     seat.ID,
		EventType:   events.PersonaReleased,
		PayloadJSON: audit.Payload(map[string]any{"persona_id": released}),
		CreatedAt:   seat.UpdatedAt,
	})
	return seat, nil
}

// reassignLead promotes the longest-seated remaining claimant of a persona,
// if any.
func (e *Engine) reassignLead(ctx context.Context, gameID, personaID string) error {
	players, err := e.store.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return err
	}
	leadID, ok := player.NextLead(players, personaID)
	if !ok {
		return nil
	}
	next, ok := player.FindByID(players, leadID)
	if !ok || next.IsPersonaLead {
		return nil
	}
	next.IsPersonaLead = true
	next.UpdatedAt = e.now()
	return e.store.PutPlayer(ctx, next)
}

func personaHasActiveLead(players []player.Player, personaID string) bool {
	for _, p := range players {
		if p.IsActive && p.PersonaID == personaID && p.IsPersonaLead {
			return true
		}
	}
	return false
}
