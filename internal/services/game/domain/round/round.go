// Package round tracks completed actions against the total a round requires.
package round

import (
	"fmt"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

var (
	// ErrNotOpen indicates a mutation against a completed round.
	ErrNotOpen = apperrors.New(apperrors.CodeRoundNotOpen, "round is not in progress")
	// ErrNoActions indicates a forced round completion with nothing to complete.
	ErrNoActions = apperrors.New(apperrors.CodeRoundNoActions, "round has no actions")
)

// Status describes the round lifecycle label.
type Status string

const (
	StatusUnspecified Status = ""
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
)

// StatusLabel returns a stable label for a round status.
func StatusLabel(status Status) string {
	switch status {
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// Round represents one cycle of actions within a game.
type Round struct {
	ID                   string
	GameID               string
	RoundNumber          int
	Status               Status
	ActionsCompleted     int
	TotalActionsRequired int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsComplete reports whether the round has met its required action total.
func (r Round) IsComplete() bool {
	return r.ActionsCompleted >= r.TotalActionsRequired
}

// CreateRoundInput describes the metadata needed to open a round.
type CreateRoundInput struct {
	GameID               string
	RoundNumber          int
	TotalActionsRequired int
}

// CreateRound opens a round with a generated ID and timestamps. The total is
// the acting-unit count at round start, including the NPC unit when present.
func CreateRound(input CreateRoundInput, now func() time.Time, idGenerator func() (string, error)) (Round, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	roundID, err := idGenerator()
	if err != nil {
		return Round{}, fmt.Errorf("generate round id: %w", err)
	}

	createdAt := now().UTC()
	return Round{
		ID:                   roundID,
		GameID:               input.GameID,
		RoundNumber:          input.RoundNumber,
		Status:               StatusInProgress,
		TotalActionsRequired: input.TotalActionsRequired,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}, nil
}
