package action

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

var (
	// ErrEmptyArgumentContent indicates an argument without content.
	ErrEmptyArgumentContent = apperrors.New(apperrors.CodeArgumentContentEmpty, "argument content is required")
	// ErrInvalidArgumentType indicates an unknown argument type.
	ErrInvalidArgumentType = apperrors.New(apperrors.CodeArgumentInvalidType, "argument type is invalid")
)

// ArgumentType classifies an argument's stance.
type ArgumentType string

const (
	ArgumentTypeUnspecified ArgumentType = ""
	// ArgumentTypeInitiatorFor is the opening case recorded with the proposal.
	ArgumentTypeInitiatorFor ArgumentType = "initiator_for"
	ArgumentTypeFor          ArgumentType = "for"
	ArgumentTypeAgainst      ArgumentType = "against"
	// ArgumentTypeClarification answers questions without taking a side. Only
	// the initiator may add one.
	ArgumentTypeClarification ArgumentType = "clarification"
)

// NormalizeArgumentTypeLabel canonicalizes argument type labels.
func NormalizeArgumentTypeLabel(value string) (ArgumentType, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToUpper(trimmed) {
	case "INITIATOR_FOR", "ARGUMENT_TYPE_INITIATOR_FOR":
		return ArgumentTypeInitiatorFor, true
	case "FOR", "ARGUMENT_TYPE_FOR":
		return ArgumentTypeFor, true
	case "AGAINST", "ARGUMENT_TYPE_AGAINST":
		return ArgumentTypeAgainst, true
	case "CLARIFICATION", "ARGUMENT_TYPE_CLARIFICATION":
		return ArgumentTypeClarification, true
	default:
		return "", false
	}
}

// ArgumentTypeLabel returns a stable label for an argument type.
func ArgumentTypeLabel(argType ArgumentType) string {
	switch argType {
	case ArgumentTypeInitiatorFor:
		return "INITIATOR_FOR"
	case ArgumentTypeFor:
		return "FOR"
	case ArgumentTypeAgainst:
		return "AGAINST"
	case ArgumentTypeClarification:
		return "CLARIFICATION"
	default:
		return "UNSPECIFIED"
	}
}

// ValidateArgumentAuthor enforces who may add which argument type: the
// initiator may only clarify, everyone else argues for or against.
func ValidateArgumentAuthor(argType ArgumentType, isInitiator bool) error {
	switch argType {
	case ArgumentTypeFor, ArgumentTypeAgainst:
		if isInitiator {
			return newArgumentRestrictedError(argType, isInitiator)
		}
		return nil
	case ArgumentTypeClarification:
		if !isInitiator {
			return newArgumentRestrictedError(argType, isInitiator)
		}
		return nil
	case ArgumentTypeInitiatorFor:
		// Recorded by the proposal itself, never via addArgument.
		return newArgumentRestrictedError(argType, isInitiator)
	default:
		return ErrInvalidArgumentType
	}
}

func newArgumentRestrictedError(argType ArgumentType, isInitiator bool) *apperrors.Error {
	typeLabel := ArgumentTypeLabel(argType)
	role := "member"
	if isInitiator {
		role = "initiator"
	}
	return apperrors.WithMetadata(
		apperrors.CodeArgumentTypeRestricted,
		fmt.Sprintf("argument type %s is not allowed for the %s", typeLabel, role),
		map[string]string{"Type": typeLabel, "Role": role},
	)
}

// Argument represents one argument attached to an action.
type Argument struct {
	ID        string
	ActionID  string
	PlayerID  string
	Type      ArgumentType
	Content   string
	Sequence  int
	IsStrong  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateArgumentInput describes the metadata needed to record an argument.
type CreateArgumentInput struct {
	ActionID string
	PlayerID string
	Type     ArgumentType
	Content  string
	Sequence int
}

// CreateArgument creates an argument with a generated ID. Authorship rules
// are enforced separately; this validates shape only.
func CreateArgument(input CreateArgumentInput, now func() time.Time, idGenerator func() (string, error)) (Argument, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return Argument{}, ErrEmptyArgumentContent
	}
	if ArgumentTypeLabel(input.Type) == "UNSPECIFIED" {
		return Argument{}, ErrInvalidArgumentType
	}

	argumentID, err := idGenerator()
	if err != nil {
		return Argument{}, fmt.Errorf("generate argument id: %w", err)
	}

	createdAt := now().UTC()
	return Argument{
		ID:        argumentID,
		ActionID:  input.ActionID,
		PlayerID:  input.PlayerID,
		Type:      input.Type,
		Content:   input.Content,
		Sequence:  input.Sequence,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// IsProArgument reports whether the argument argues for the action.
func IsProArgument(argType ArgumentType) bool {
	return argType == ArgumentTypeFor || argType == ArgumentTypeInitiatorFor
}
