package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/persona"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

const playerColumns = `id, game_id, user_id, name, persona_id,
	is_persona_lead, is_host, is_npc, is_active, joined_at, updated_at`

func scanPlayer(row rowScanner) (player.Player, error) {
	var (
		p             player.Player
		isPersonaLead int
		isHost        int
		isNPC         int
		isActive      int
		joinedAt      int64
		updatedAt     int64
	)
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.UserID,
		&p.Name,
		&p.PersonaID,
		&isPersonaLead,
		&isHost,
		&isNPC,
		&isActive,
		&joinedAt,
		&updatedAt,
	)
	if err != nil {
		return player.Player{}, err
	}
	p.IsPersonaLead = isPersonaLead != 0
	p.IsHost = isHost != 0
	p.IsNPC = isNPC != 0
	p.IsActive = isActive != 0
	p.JoinedAt = fromMillis(joinedAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

// PutPlayer inserts or updates a seat. The per-game user uniqueness index
// rejects a second seat for the same user as ErrPlayerExists.
func (s *Store) PutPlayer(ctx context.Context, p player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO players (
	id, game_id, user_id, name, persona_id,
	is_persona_lead, is_host, is_npc, is_active, joined_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	persona_id = excluded.persona_id,
	is_persona_lead = excluded.is_persona_lead,
	is_host = excluded.is_host,
	is_active = excluded.is_active,
	updated_at = excluded.updated_at
`,
		p.ID,
		p.GameID,
		p.UserID,
		p.Name,
		p.PersonaID,
		boolToInt(p.IsPersonaLead),
		boolToInt(p.IsHost),
		boolToInt(p.IsNPC),
		boolToInt(p.IsActive),
		toMillis(p.JoinedAt),
		toMillis(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrPlayerExists
		}
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

// GetPlayer retrieves one seat by game and player id.
func (s *Store) GetPlayer(ctx context.Context, gameID, playerID string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	if err := s.ready(); err != nil {
		return player.Player{}, err
	}
	gameID = strings.TrimSpace(gameID)
	playerID = strings.TrimSpace(playerID)
	if gameID == "" {
		return player.Player{}, fmt.Errorf("game id is required")
	}
	if playerID == "" {
		return player.Player{}, fmt.Errorf("player id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+playerColumns+` FROM players WHERE game_id = ? AND id = ?
`, gameID, playerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, storage.ErrNotFound
		}
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// GetPlayerByUser resolves the seat a user holds in a game.
func (s *Store) GetPlayerByUser(ctx context.Context, gameID, userID string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	if err := s.ready(); err != nil {
		return player.Player{}, err
	}
	gameID = strings.TrimSpace(gameID)
	userID = strings.TrimSpace(userID)
	if gameID == "" {
		return player.Player{}, fmt.Errorf("game id is required")
	}
	if userID == "" {
		return player.Player{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+playerColumns+` FROM players WHERE game_id = ? AND user_id = ?
`, gameID, userID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, storage.ErrNotFound
		}
		return player.Player{}, fmt.Errorf("get player by user: %w", err)
	}
	return p, nil
}

// ListPlayersByGame returns all seats in a game ordered by join time.
func (s *Store) ListPlayersByGame(ctx context.Context, gameID string) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+playerColumns+`
FROM players
WHERE game_id = ?
ORDER BY joined_at ASC, id ASC
`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []player.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// ListGameIDsByUser returns ids of games where the user holds a seat.
func (s *Store) ListGameIDsByUser(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT game_id FROM players WHERE user_id = ? ORDER BY game_id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list game ids by user: %w", err)
	}
	defer rows.Close()

	var gameIDs []string
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("list game ids by user: %w", err)
		}
		gameIDs = append(gameIDs, gameID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game ids by user: %w", err)
	}
	return gameIDs, nil
}

const personaColumns = `id, game_id, name, is_npc, scripted_action,
	scripted_outcome, created_at, updated_at`

func scanPersona(row rowScanner) (persona.Persona, error) {
	var (
		p         persona.Persona
		isNPC     int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.Name,
		&isNPC,
		&p.ScriptedAction,
		&p.ScriptedOutcome,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persona.Persona{}, err
	}
	p.IsNPC = isNPC != 0
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

// PutPersona inserts or updates a claimable persona.
func (s *Store) PutPersona(ctx context.Context, p persona.Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("persona id is required")
	}
	if strings.TrimSpace(p.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO personas (
	id, game_id, name, is_npc, scripted_action, scripted_outcome,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	scripted_action = excluded.scripted_action,
	scripted_outcome = excluded.scripted_outcome,
	updated_at = excluded.updated_at
`,
		p.ID,
		p.GameID,
		p.Name,
		boolToInt(p.IsNPC),
		p.ScriptedAction,
		p.ScriptedOutcome,
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put persona: %w", err)
	}
	return nil
}

// GetPersona retrieves one persona by game and persona id.
func (s *Store) GetPersona(ctx context.Context, gameID, personaID string) (persona.Persona, error) {
	if err := ctx.Err(); err != nil {
		return persona.Persona{}, err
	}
	if err := s.ready(); err != nil {
		return persona.Persona{}, err
	}
	gameID = strings.TrimSpace(gameID)
	personaID = strings.TrimSpace(personaID)
	if gameID == "" {
		return persona.Persona{}, fmt.Errorf("game id is required")
	}
	if personaID == "" {
		return persona.Persona{}, fmt.Errorf("persona id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+personaColumns+` FROM personas WHERE game_id = ? AND id = ?
`, gameID, personaID)
	p, err := scanPersona(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persona.Persona{}, storage.ErrNotFound
		}
		return persona.Persona{}, fmt.Errorf("get persona: %w", err)
	}
	return p, nil
}

// ListPersonasByGame returns all personas of a game ordered by creation.
func (s *Store) ListPersonasByGame(ctx context.Context, gameID string) ([]persona.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+personaColumns+`
FROM personas
WHERE game_id = ?
ORDER BY created_at ASC, id ASC
`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var personas []persona.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("list personas: %w", err)
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return personas, nil
}
