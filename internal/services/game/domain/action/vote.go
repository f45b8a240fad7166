package action

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

// ErrInvalidVoteType indicates an unknown vote type.
var ErrInvalidVoteType = apperrors.New(apperrors.CodeVoteInvalidType, "vote type is invalid")

// VoteType is a player's prediction for an action's outcome.
type VoteType string

const (
	VoteTypeUnspecified   VoteType = ""
	VoteTypeLikelySuccess VoteType = "likely_success"
	VoteTypeLikelyFailure VoteType = "likely_failure"
	VoteTypeUncertain     VoteType = "uncertain"
)

// NormalizeVoteTypeLabel canonicalizes vote type labels.
func NormalizeVoteTypeLabel(value string) (VoteType, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToUpper(trimmed) {
	case "LIKELY_SUCCESS", "VOTE_TYPE_LIKELY_SUCCESS":
		return VoteTypeLikelySuccess, true
	case "LIKELY_FAILURE", "VOTE_TYPE_LIKELY_FAILURE":
		return VoteTypeLikelyFailure, true
	case "UNCERTAIN", "VOTE_TYPE_UNCERTAIN":
		return VoteTypeUncertain, true
	default:
		return "", false
	}
}

// VoteTypeLabel returns a stable label for a vote type.
func VoteTypeLabel(voteType VoteType) string {
	switch voteType {
	case VoteTypeLikelySuccess:
		return "LIKELY_SUCCESS"
	case VoteTypeLikelyFailure:
		return "LIKELY_FAILURE"
	case VoteTypeUncertain:
		return "UNCERTAIN"
	default:
		return "UNSPECIFIED"
	}
}

// Vote represents one player's vote on an action. Token weights are assigned
// by the game's resolution strategy when the vote is accepted.
type Vote struct {
	ID            string
	ActionID      string
	PlayerID      string
	Type          VoteType
	SuccessTokens int
	FailureTokens int
	WasSkipped    bool
	CreatedAt     time.Time
}

// CreateVoteInput describes the metadata needed to record a vote.
type CreateVoteInput struct {
	ActionID      string
	PlayerID      string
	Type          VoteType
	SuccessTokens int
	FailureTokens int
	WasSkipped    bool
}

// CreateVote creates a vote with a generated ID.
func CreateVote(input CreateVoteInput, now func() time.Time, idGenerator func() (string, error)) (Vote, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if VoteTypeLabel(input.Type) == "UNSPECIFIED" {
		return Vote{}, ErrInvalidVoteType
	}

	voteID, err := idGenerator()
	if err != nil {
		return Vote{}, fmt.Errorf("generate vote id: %w", err)
	}

	return Vote{
		ID:            voteID,
		ActionID:      input.ActionID,
		PlayerID:      input.PlayerID,
		Type:          input.Type,
		SuccessTokens: input.SuccessTokens,
		FailureTokens: input.FailureTokens,
		WasSkipped:    input.WasSkipped,
		CreatedAt:     now().UTC(),
	}, nil
}
