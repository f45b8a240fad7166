// Package game models the game aggregate: lifecycle status, the phase
// pipeline, and the per-game settings the orchestrator consults.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/platform/id"
)

// MinPlayersToStart is the active human roster size required by StartGame.
const MinPlayersToStart = 2

// Game represents one matrix game and its orchestration state.
type Game struct {
	ID              string
	Name            string
	Status          Status
	CurrentPhase    Phase
	PhaseStartedAt  time.Time
	CurrentRoundID  string
	CurrentActionID string
	Settings        Settings
	NPCMomentum     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       time.Time
}

// Deleted reports whether the game has been soft-deleted.
func (g Game) Deleted() bool {
	return !g.DeletedAt.IsZero()
}

// CreateGameInput describes the metadata needed to create a game.
type CreateGameInput struct {
	Name     string
	Settings Settings
}

// CreateGame creates a new game in the lobby with a generated ID, normalized
// settings, and creation timestamps.
func CreateGame(input CreateGameInput, now func() time.Time, idGenerator func() (string, error)) (Game, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Game{}, ErrEmptyName
	}

	settings, err := NormalizeSettings(input.Settings)
	if err != nil {
		return Game{}, err
	}

	gameID, err := idGenerator()
	if err != nil {
		return Game{}, fmt.Errorf("generate game id: %w", err)
	}

	createdAt := now().UTC()
	return Game{
		ID:           gameID,
		Name:         input.Name,
		Status:       StatusLobby,
		CurrentPhase: PhaseWaiting,
		Settings:     settings,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}
