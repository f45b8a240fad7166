package game

import (
	"strings"
	"time"
)

// InfiniteTimeoutHours disables the deadline for a timed phase.
const InfiniteTimeoutHours = -1

// VotingMode controls how persona-sharing groups cast votes.
type VotingMode string

const (
	// VotingModeEachMember has every member of a shared persona vote
	// independently.
	VotingModeEachMember VotingMode = "each_member"
	// VotingModeOnePerPersona accepts the first member's vote for the whole
	// persona and rejects later members.
	VotingModeOnePerPersona VotingMode = "one_per_persona"
)

// ArgumentMode controls how the argument limit is counted for shared personas.
type ArgumentMode string

const (
	// ArgumentModeIndependent counts the limit per player.
	ArgumentModeIndependent ArgumentMode = "independent"
	// ArgumentModeSharedPool counts the limit across all members of a persona.
	ArgumentModeSharedPool ArgumentMode = "shared_pool"
)

// NarrationMode controls who may narrate a resolved action.
type NarrationMode string

const (
	// NarrationModeInitiatorOnly restricts narration to the action initiator
	// (or the host).
	NarrationModeInitiatorOnly NarrationMode = "initiator_only"
	// NarrationModeOpen lets any active player narrate.
	NarrationModeOpen NarrationMode = "open"
)

// Settings holds the per-game knobs consumed by the orchestrator.
type Settings struct {
	ArgumentLimit             int
	ProposalTimeoutHours      int
	ArgumentationTimeoutHours int
	VotingTimeoutHours        int
	NarrationTimeoutHours     int
	ResolutionMethod          string
	PersonaSharingEnabled     bool
	VotingMode                VotingMode
	ArgumentMode              ArgumentMode
	NarrationMode             NarrationMode
}

// DefaultSettings returns the settings applied when a game is created without
// explicit overrides.
func DefaultSettings() Settings {
	return Settings{
		ArgumentLimit:             3,
		ProposalTimeoutHours:      24,
		ArgumentationTimeoutHours: 48,
		VotingTimeoutHours:        24,
		NarrationTimeoutHours:     24,
		ResolutionMethod:          "token_draw",
		PersonaSharingEnabled:     false,
		VotingMode:                VotingModeEachMember,
		ArgumentMode:              ArgumentModeIndependent,
		NarrationMode:             NarrationModeInitiatorOnly,
	}
}

// NormalizeSettings fills zero values from defaults and validates the rest.
func NormalizeSettings(settings Settings) (Settings, error) {
	defaults := DefaultSettings()

	if settings.ArgumentLimit == 0 {
		settings.ArgumentLimit = defaults.ArgumentLimit
	}
	if settings.ArgumentLimit < 0 {
		return Settings{}, ErrInvalidSettings
	}

	var err error
	if settings.ProposalTimeoutHours, err = normalizeTimeoutHours(settings.ProposalTimeoutHours, defaults.ProposalTimeoutHours); err != nil {
		return Settings{}, err
	}
	if settings.ArgumentationTimeoutHours, err = normalizeTimeoutHours(settings.ArgumentationTimeoutHours, defaults.ArgumentationTimeoutHours); err != nil {
		return Settings{}, err
	}
	if settings.VotingTimeoutHours, err = normalizeTimeoutHours(settings.VotingTimeoutHours, defaults.VotingTimeoutHours); err != nil {
		return Settings{}, err
	}
	if settings.NarrationTimeoutHours, err = normalizeTimeoutHours(settings.NarrationTimeoutHours, defaults.NarrationTimeoutHours); err != nil {
		return Settings{}, err
	}

	settings.ResolutionMethod = strings.TrimSpace(settings.ResolutionMethod)
	if settings.ResolutionMethod == "" {
		settings.ResolutionMethod = defaults.ResolutionMethod
	}

	switch settings.VotingMode {
	case "":
		settings.VotingMode = defaults.VotingMode
	case VotingModeEachMember, VotingModeOnePerPersona:
	default:
		return Settings{}, ErrInvalidSettings
	}

	switch settings.ArgumentMode {
	case "":
		settings.ArgumentMode = defaults.ArgumentMode
	case ArgumentModeIndependent, ArgumentModeSharedPool:
	default:
		return Settings{}, ErrInvalidSettings
	}

	switch settings.NarrationMode {
	case "":
		settings.NarrationMode = defaults.NarrationMode
	case NarrationModeInitiatorOnly, NarrationModeOpen:
	default:
		return Settings{}, ErrInvalidSettings
	}

	return settings, nil
}

// normalizeTimeoutHours treats a zero value as unset. Hours below -1 have no
// meaning and are rejected.
func normalizeTimeoutHours(value, fallback int) (int, error) {
	if value == 0 {
		value = fallback
	}
	if value < InfiniteTimeoutHours {
		return 0, ErrInvalidSettings
	}
	return value, nil
}

// TimeoutForPhase resolves the configured deadline for a timed phase. The
// second return is false when the phase is untimed or configured infinite.
func TimeoutForPhase(settings Settings, phase Phase) (time.Duration, bool) {
	var hours int
	switch phase {
	case PhaseProposal:
		hours = settings.ProposalTimeoutHours
	case PhaseArgumentation:
		hours = settings.ArgumentationTimeoutHours
	case PhaseVoting:
		hours = settings.VotingTimeoutHours
	case PhaseNarration:
		hours = settings.NarrationTimeoutHours
	default:
		return 0, false
	}
	if hours <= InfiniteTimeoutHours {
		return 0, false
	}
	return time.Duration(hours) * time.Hour, true
}
