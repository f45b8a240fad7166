package scenario

import (
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
)

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) ensureGame(state *scenarioState) error {
	if state.gameID == "" {
		return r.failf("game is required")
	}
	return nil
}

// userIDFor resolves a seat name to its synthetic user id. A blank name
// means the host.
func userIDFor(state *scenarioState, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = state.hostName
	}
	id, ok := state.users[name]
	if !ok {
		for key, value := range state.users {
			if strings.EqualFold(key, name) {
				id = value
				ok = true
				break
			}
		}
	}
	if !ok {
		return "", fmt.Errorf("unknown player %q", name)
	}
	return id, nil
}

func personaIDFor(state *scenarioState, name string) (string, error) {
	id, ok := state.personas[name]
	if !ok {
		for key, value := range state.personas {
			if strings.EqualFold(key, name) {
				id = value
				ok = true
				break
			}
		}
	}
	if !ok {
		return "", fmt.Errorf("unknown persona %q", name)
	}
	return id, nil
}

// settingsFromArgs builds the settings overrides a game step provides. Zero
// values are filled with defaults when the engine normalizes them.
func settingsFromArgs(args map[string]any) game.Settings {
	settings := game.Settings{}
	if value, ok := readInt(args, "argument_limit"); ok {
		settings.ArgumentLimit = value
	}
	if value, ok := readInt(args, "proposal_timeout_hours"); ok {
		settings.ProposalTimeoutHours = value
	}
	if value, ok := readInt(args, "argumentation_timeout_hours"); ok {
		settings.ArgumentationTimeoutHours = value
	}
	if value, ok := readInt(args, "voting_timeout_hours"); ok {
		settings.VotingTimeoutHours = value
	}
	if value, ok := readInt(args, "narration_timeout_hours"); ok {
		settings.NarrationTimeoutHours = value
	}
	if value := optionalString(args, "resolution_method", ""); value != "" {
		settings.ResolutionMethod = strings.ToLower(strings.TrimSpace(value))
	}
	settings.PersonaSharingEnabled = optionalBool(args, "persona_sharing", false)
	if value := optionalString(args, "voting_mode", ""); value != "" {
		settings.VotingMode = game.VotingMode(strings.ToLower(strings.TrimSpace(value)))
	}
	if value := optionalString(args, "argument_mode", ""); value != "" {
		settings.ArgumentMode = game.ArgumentMode(strings.ToLower(strings.TrimSpace(value)))
	}
	if value := optionalString(args, "narration_mode", ""); value != "" {
		settings.NarrationMode = game.NarrationMode(strings.ToLower(strings.TrimSpace(value)))
	}
	return settings
}

// parseArgumentType accepts either label casing and passes unknown values
// through so the engine reports them.
func parseArgumentType(raw string) action.ArgumentType {
	if argType, ok := action.NormalizeArgumentTypeLabel(raw); ok {
		return argType
	}
	return action.ArgumentType(strings.TrimSpace(raw))
}

func parseVoteType(raw string) action.VoteType {
	if voteType, ok := action.NormalizeVoteTypeLabel(raw); ok {
		return voteType
	}
	return action.VoteType(strings.TrimSpace(raw))
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	default:
		return fallback
	}
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		lower := strings.ToLower(strings.TrimSpace(typed))
		if lower == "true" || lower == "yes" || lower == "1" {
			return true
		}
		if lower == "false" || lower == "no" || lower == "0" {
			return false
		}
	}
	return fallback
}
