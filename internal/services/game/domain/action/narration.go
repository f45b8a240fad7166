package action

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

var (
	// ErrEmptyNarrationContent indicates a narration without content.
	ErrEmptyNarrationContent = apperrors.New(apperrors.CodeNarrationContentEmpty, "narration content is required")
	// ErrNarrationExists indicates a second narration for the same action.
	ErrNarrationExists = apperrors.New(apperrors.CodeNarrationExists, "action has already been narrated")
	// ErrNarrationDenied indicates a caller the narration mode does not allow.
	ErrNarrationDenied = apperrors.New(apperrors.CodeNarrationDenied, "caller may not narrate this action")
)

// Narration closes an action with its outcome story. Exactly one exists per
// action, keyed by the action ID.
type Narration struct {
	ActionID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateNarrationInput describes the metadata needed to narrate an action.
type CreateNarrationInput struct {
	ActionID string
	AuthorID string
	Content  string
}

// CreateNarration creates the narration record for an action.
func CreateNarration(input CreateNarrationInput, now func() time.Time) (Narration, error) {
	if now == nil {
		now = time.Now
	}

	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return Narration{}, ErrEmptyNarrationContent
	}

	createdAt := now().UTC()
	return Narration{
		ActionID:  input.ActionID,
		AuthorID:  input.AuthorID,
		Content:   input.Content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}
