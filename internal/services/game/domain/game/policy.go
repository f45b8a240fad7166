package game

import (
	"fmt"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

// Operation describes a category of game operation for policy checks.
type Operation int

const (
	// OpUnspecified represents an invalid operation.
	OpUnspecified Operation = iota
	// OpRead represents read-only operations.
	OpRead
	// OpLobbyMutate represents lobby-time mutations: settings, personas,
	// invites, persona claims.
	OpLobbyMutate
	// OpJoin represents a new player joining.
	OpJoin
	// OpLeave represents a player soft-leaving.
	OpLeave
	// OpRejoin represents a soft-left player returning.
	OpRejoin
	// OpStart represents starting the game.
	OpStart
	// OpPlay represents round and action lifecycle operations.
	OpPlay
	// OpComplete represents ending the game.
	OpComplete
	// OpDelete represents soft-deleting the game.
	OpDelete
)

// ValidateOperation ensures the game status allows the requested operation.
func ValidateOperation(status Status, op Operation) error {
	if op == OpUnspecified {
		return newStatusOpError(status, op)
	}
	if op == OpRead {
		return nil
	}

	switch status {
	case StatusLobby:
		switch op {
		case OpLobbyMutate, OpJoin, OpLeave, OpRejoin, OpStart, OpDelete:
			return nil
		default:
			return newStatusOpError(status, op)
		}
	case StatusActive:
		switch op {
		case OpLeave, OpRejoin, OpPlay, OpComplete:
			return nil
		default:
			return newStatusOpError(status, op)
		}
	case StatusCompleted:
		return newStatusOpError(status, op)
	default:
		return newStatusOpError(status, op)
	}
}

// newStatusOpError creates metadata for disallowed status/operation combinations.
func newStatusOpError(status Status, op Operation) *apperrors.Error {
	statusLabel := StatusLabel(status)
	opLabel := operationLabel(op)
	return apperrors.WithMetadata(
		apperrors.CodeGameStatusDisallowsOp,
		fmt.Sprintf("game status %s does not allow operation %s", statusLabel, opLabel),
		map[string]string{"Status": statusLabel, "Operation": opLabel},
	)
}

// operationLabel returns a stable label for a game operation.
func operationLabel(op Operation) string {
	switch op {
	case OpRead:
		return "READ"
	case OpLobbyMutate:
		return "LOBBY_MUTATE"
	case OpJoin:
		return "JOIN"
	case OpLeave:
		return "LEAVE"
	case OpRejoin:
		return "REJOIN"
	case OpStart:
		return "START"
	case OpPlay:
		return "PLAY"
	case OpComplete:
		return "COMPLETE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNSPECIFIED"
	}
}
