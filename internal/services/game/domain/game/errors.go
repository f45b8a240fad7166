package game

import apperrors "github.com/louisbranch/warroom/internal/platform/errors"

var (
	// ErrEmptyName indicates a missing game name.
	ErrEmptyName = apperrors.New(apperrors.CodeGameNameEmpty, "game name is required")
	// ErrInvalidSettings indicates settings outside their allowed ranges.
	ErrInvalidSettings = apperrors.New(apperrors.CodeGameInvalidSettings, "game settings are invalid")
	// ErrNotStartable indicates a game without enough active human players.
	ErrNotStartable = apperrors.New(apperrors.CodeGameNotStartable, "game needs at least two active players to start")
)
