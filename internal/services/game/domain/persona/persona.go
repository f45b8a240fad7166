// Package persona models the claimable identities players act through.
package persona

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

var (
	// ErrEmptyName indicates a missing persona name.
	ErrEmptyName = apperrors.New(apperrors.CodePersonaNameEmpty, "persona name is required")
	// ErrScriptRequired indicates an NPC persona with nothing to act on.
	ErrScriptRequired = apperrors.New(apperrors.CodePersonaScriptRequired, "npc personas require a scripted action")
	// ErrAlreadyClaimed indicates a persona claim that the sharing mode rejects.
	ErrAlreadyClaimed = apperrors.New(apperrors.CodePersonaAlreadyClaimed, "persona is already claimed")
	// ErrSharingDisabled indicates a second claim while persona sharing is off.
	ErrSharingDisabled = apperrors.New(apperrors.CodePersonaSharingOff, "persona sharing is disabled for this game")
)

// Persona represents a claimable identity. NPC personas act on the scripted
// text instead of a human player.
type Persona struct {
	ID              string
	GameID          string
	Name            string
	IsNPC           bool
	ScriptedAction  string
	ScriptedOutcome string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreatePersonaInput describes the metadata needed to create a persona.
type CreatePersonaInput struct {
	GameID          string
	Name            string
	IsNPC           bool
	ScriptedAction  string
	ScriptedOutcome string
}

// CreatePersona creates a persona with a generated ID and timestamps.
func CreatePersona(input CreatePersonaInput, now func() time.Time, idGenerator func() (string, error)) (Persona, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Persona{}, ErrEmptyName
	}
	input.ScriptedAction = strings.TrimSpace(input.ScriptedAction)
	if input.IsNPC && input.ScriptedAction == "" {
		return Persona{}, ErrScriptRequired
	}

	personaID, err := idGenerator()
	if err != nil {
		return Persona{}, fmt.Errorf("generate persona id: %w", err)
	}

	createdAt := now().UTC()
	return Persona{
		ID:              personaID,
		GameID:          input.GameID,
		Name:            input.Name,
		IsNPC:           input.IsNPC,
		ScriptedAction:  input.ScriptedAction,
		ScriptedOutcome: strings.TrimSpace(input.ScriptedOutcome),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}
