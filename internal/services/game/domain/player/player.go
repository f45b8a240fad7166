// Package player models the game roster: hosts, members, persona claims, and
// the NPC system actor.
package player

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

var (
	// ErrEmptyName indicates a missing player name.
	ErrEmptyName = apperrors.New(apperrors.CodePlayerNameEmpty, "player name is required")
	// ErrInactive indicates a soft-left player attempting a roster-gated operation.
	ErrInactive = apperrors.New(apperrors.CodePlayerInactive, "player has left the game")
)

// Player represents one seat in a game. NPC players belong to the system
// actor and have no user identity.
type Player struct {
	ID            string
	GameID        string
	UserID        string
	Name          string
	PersonaID     string
	IsPersonaLead bool
	IsHost        bool
	IsNPC         bool
	IsActive      bool
	JoinedAt      time.Time
	UpdatedAt     time.Time
}

// CreatePlayerInput describes the metadata needed to seat a player.
type CreatePlayerInput struct {
	GameID string
	UserID string
	Name   string
	IsHost bool
	IsNPC  bool
}

// CreatePlayer creates an active player with a generated ID and timestamps.
func CreatePlayer(input CreatePlayerInput, now func() time.Time, idGenerator func() (string, error)) (Player, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Player{}, ErrEmptyName
	}

	playerID, err := idGenerator()
	if err != nil {
		return Player{}, fmt.Errorf("generate player id: %w", err)
	}

	joinedAt := now().UTC()
	return Player{
		ID:        playerID,
		GameID:    input.GameID,
		UserID:    input.UserID,
		Name:      input.Name,
		IsHost:    input.IsHost,
		IsNPC:     input.IsNPC,
		IsActive:  true,
		JoinedAt:  joinedAt,
		UpdatedAt: joinedAt,
	}, nil
}

// NextLead picks the member to promote when a shared persona loses its lead.
// Candidates are the active, non-NPC members still claiming the persona; the
// longest-seated member wins, with the ID as a stable tie-break. The second
// return is false when nobody remains.
func NextLead(players []Player, personaID string) (string, bool) {
	if personaID == "" {
		return "", false
	}

	var candidates []Player
	for _, p := range players {
		if p.PersonaID != personaID || !p.IsActive || p.IsNPC {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].JoinedAt.Equal(candidates[j].JoinedAt) {
			return candidates[i].JoinedAt.Before(candidates[j].JoinedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0].ID, true
}

// FindByID returns the player with the given ID.
func FindByID(players []Player, playerID string) (Player, bool) {
	for _, p := range players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// ActiveHumanCount counts active, non-NPC players.
func ActiveHumanCount(players []Player) int {
	count := 0
	for _, p := range players {
		if p.IsActive && !p.IsNPC {
			count++
		}
	}
	return count
}
