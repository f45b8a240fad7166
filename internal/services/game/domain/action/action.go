// Package action models one proposed action and the records attached to it:
// arguments, votes, and the closing narration.
package action

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

var (
	// ErrEmptyDescription indicates a proposal without a description.
	ErrEmptyDescription = apperrors.New(apperrors.CodeActionDescriptionEmpty, "action description is required")
	// ErrAlreadyResolved indicates a second resolution attempt.
	ErrAlreadyResolved = apperrors.New(apperrors.CodeActionAlreadyResolved, "action has already been resolved")
	// ErrInitiatorRequired indicates a caller who is not the action initiator.
	ErrInitiatorRequired = apperrors.New(apperrors.CodeActionInitiatorRequired, "only the action initiator may do this")
)

// Status describes where an action is in its lifecycle.
type Status string

const (
	StatusUnspecified Status = ""
	StatusArguing     Status = "arguing"
	StatusVoting      Status = "voting"
	StatusResolved    Status = "resolved"
	StatusNarrated    Status = "narrated"
)

// IsStatusTransitionAllowed enforces the forward-only action lifecycle.
func IsStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusArguing:
		return to == StatusVoting
	case StatusVoting:
		return to == StatusResolved
	case StatusResolved:
		return to == StatusNarrated
	default:
		return false
	}
}

// ValidateStatus ensures the action is in the status an operation requires.
func ValidateStatus(current, required Status) error {
	if current == required {
		return nil
	}
	currentLabel := StatusLabel(current)
	requiredLabel := StatusLabel(required)
	return apperrors.WithMetadata(
		apperrors.CodeActionStatusDisallowsOp,
		fmt.Sprintf("action status %s does not allow this operation (requires %s)", currentLabel, requiredLabel),
		map[string]string{"Status": currentLabel, "RequiredStatus": requiredLabel},
	)
}

// StatusLabel returns a stable label for an action status.
func StatusLabel(status Status) string {
	switch status {
	case StatusArguing:
		return "ARGUING"
	case StatusVoting:
		return "VOTING"
	case StatusResolved:
		return "RESOLVED"
	case StatusNarrated:
		return "NARRATED"
	default:
		return "UNSPECIFIED"
	}
}

// Action represents one proposed action. Actions are append-only; lifecycle
// state moves forward and the record is never deleted.
type Action struct {
	ID               string
	GameID           string
	RoundID          string
	InitiatorID      string
	InitiatorUnitKey string
	SequenceNumber   int64
	Description      string
	DesiredOutcome   string
	Status           Status

	ArgumentationStartedAt time.Time
	VotingStartedAt        time.Time
	ResolvedAt             time.Time

	ResolutionMethod string
	ResultType       string
	ResultValue      int
	ResolutionData   []byte

	WasArgumentationSkipped bool
	WasVotingSkipped        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resolved reports whether resolution has already been persisted.
func (a Action) Resolved() bool {
	return a.Status == StatusResolved || a.Status == StatusNarrated
}

// CreateActionInput describes the metadata needed to propose an action.
type CreateActionInput struct {
	GameID           string
	RoundID          string
	InitiatorID      string
	InitiatorUnitKey string
	SequenceNumber   int64
	Description      string
	DesiredOutcome   string
}

// CreateAction creates an action in ARGUING with a generated ID. The
// argumentation clock starts immediately.
func CreateAction(input CreateActionInput, now func() time.Time, idGenerator func() (string, error)) (Action, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return Action{}, ErrEmptyDescription
	}

	actionID, err := idGenerator()
	if err != nil {
		return Action{}, fmt.Errorf("generate action id: %w", err)
	}

	createdAt := now().UTC()
	return Action{
		ID:                     actionID,
		GameID:                 input.GameID,
		RoundID:                input.RoundID,
		InitiatorID:            input.InitiatorID,
		InitiatorUnitKey:       input.InitiatorUnitKey,
		SequenceNumber:         input.SequenceNumber,
		Description:            input.Description,
		DesiredOutcome:         strings.TrimSpace(input.DesiredOutcome),
		Status:                 StatusArguing,
		ArgumentationStartedAt: createdAt,
		CreatedAt:              createdAt,
		UpdatedAt:              createdAt,
	}, nil
}
