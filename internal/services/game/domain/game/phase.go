package game

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

// Phase describes the game-wide pipeline stage.
type Phase string

const (
	PhaseUnspecified   Phase = ""
	PhaseWaiting       Phase = "waiting"
	PhaseProposal      Phase = "proposal"
	PhaseArgumentation Phase = "argumentation"
	PhaseVoting        Phase = "voting"
	PhaseResolution    Phase = "resolution"
	PhaseNarration     Phase = "narration"
	PhaseRoundSummary  Phase = "round_summary"
)

// NormalizePhaseLabel canonicalizes phase labels from transport payloads.
func NormalizePhaseLabel(value string) (Phase, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToUpper(trimmed) {
	case "WAITING", "GAME_PHASE_WAITING":
		return PhaseWaiting, true
	case "PROPOSAL", "GAME_PHASE_PROPOSAL":
		return PhaseProposal, true
	case "ARGUMENTATION", "GAME_PHASE_ARGUMENTATION":
		return PhaseArgumentation, true
	case "VOTING", "GAME_PHASE_VOTING":
		return PhaseVoting, true
	case "RESOLUTION", "GAME_PHASE_RESOLUTION":
		return PhaseResolution, true
	case "NARRATION", "GAME_PHASE_NARRATION":
		return PhaseNarration, true
	case "ROUND_SUMMARY", "GAME_PHASE_ROUND_SUMMARY":
		return PhaseRoundSummary, true
	default:
		return "", false
	}
}

// IsPhaseTransitionAllowed enforces the fixed phase table. Phases never skip
// ahead or revert; NARRATION forks to either PROPOSAL or ROUND_SUMMARY.
func IsPhaseTransitionAllowed(from, to Phase) bool {
	switch from {
	case PhaseWaiting:
		return to == PhaseProposal
	case PhaseProposal:
		return to == PhaseArgumentation
	case PhaseArgumentation:
		return to == PhaseVoting
	case PhaseVoting:
		return to == PhaseResolution
	case PhaseResolution:
		return to == PhaseNarration
	case PhaseNarration:
		return to == PhaseProposal || to == PhaseRoundSummary
	case PhaseRoundSummary:
		return to == PhaseProposal
	default:
		return false
	}
}

// NewPhaseTransitionError creates metadata for a disallowed phase change.
func NewPhaseTransitionError(from, to Phase) *apperrors.Error {
	fromLabel := PhaseLabel(from)
	toLabel := PhaseLabel(to)
	return apperrors.WithMetadata(
		apperrors.CodeGameInvalidPhaseTransition,
		fmt.Sprintf("game phase cannot change from %s to %s", fromLabel, toLabel),
		map[string]string{"FromPhase": fromLabel, "ToPhase": toLabel},
	)
}

// IsTimedPhase reports whether the phase waits on human input against a
// deadline. RESOLUTION and ROUND_SUMMARY complete synchronously inside the
// operation that enters them, so the timeout sweep never inspects them.
func IsTimedPhase(phase Phase) bool {
	switch phase {
	case PhaseProposal, PhaseArgumentation, PhaseVoting, PhaseNarration:
		return true
	default:
		return false
	}
}

// PhaseLabel returns a stable label for a game phase.
func PhaseLabel(phase Phase) string {
	switch phase {
	case PhaseWaiting:
		return "WAITING"
	case PhaseProposal:
		return "PROPOSAL"
	case PhaseArgumentation:
		return "ARGUMENTATION"
	case PhaseVoting:
		return "VOTING"
	case PhaseResolution:
		return "RESOLUTION"
	case PhaseNarration:
		return "NARRATION"
	case PhaseRoundSummary:
		return "ROUND_SUMMARY"
	default:
		return "UNSPECIFIED"
	}
}
