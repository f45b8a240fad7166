package scenario

import (
	"testing"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
)

func TestUserIDFor(t *testing.T) {
	state := &scenarioState{
		hostName: "Moderator",
		users:    map[string]string{"Moderator": "u-1", "Ana": "u-2"},
	}

	t.Run("exact", func(t *testing.T) {
		id, err := userIDFor(state, "Ana")
		if err != nil || id != "u-2" {
			t.Fatalf("want u-2, got %s, err=%v", id, err)
		}
	})
	t.Run("case_insensitive", func(t *testing.T) {
		id, err := userIDFor(state, "ana")
		if err != nil || id != "u-2" {
			t.Fatalf("want u-2, got %s, err=%v", id, err)
		}
	})
	t.Run("blank_means_host", func(t *testing.T) {
		id, err := userIDFor(state, "")
		if err != nil || id != "u-1" {
			t.Fatalf("want u-1, got %s, err=%v", id, err)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := userIDFor(state, "Charlie")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestPersonaIDFor(t *testing.T) {
	state := &scenarioState{personas: map[string]string{"Defense Ministry": "p-1"}}

	t.Run("exact", func(t *testing.T) {
		id, err := personaIDFor(state, "Defense Ministry")
		if err != nil || id != "p-1" {
			t.Fatalf("want p-1, got %s, err=%v", id, err)
		}
	})
	t.Run("case_insensitive", func(t *testing.T) {
		id, err := personaIDFor(state, "defense ministry")
		if err != nil || id != "p-1" {
			t.Fatalf("want p-1, got %s, err=%v", id, err)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := personaIDFor(state, "Rebel Cell")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSettingsFromArgs(t *testing.T) {
	args := map[string]any{
		"argument_limit":              2,
		"proposal_timeout_hours":      12,
		"argumentation_timeout_hours": -1,
		"voting_timeout_hours":        6,
		"narration_timeout_hours":     8,
		"resolution_method":           " Arbiter ",
		"persona_sharing":             true,
		"voting_mode":                 "One_Per_Persona",
		"argument_mode":               "Shared_Pool",
		"narration_mode":              "Open",
	}
	settings := settingsFromArgs(args)

	if settings.ArgumentLimit != 2 {
		t.Fatalf("argument_limit = %d, want 2", settings.ArgumentLimit)
	}
	if settings.ProposalTimeoutHours != 12 {
		t.Fatalf("proposal_timeout_hours = %d, want 12", settings.ProposalTimeoutHours)
	}
	if settings.ArgumentationTimeoutHours != -1 {
		t.Fatalf("argumentation_timeout_hours = %d, want -1", settings.ArgumentationTimeoutHours)
	}
	if settings.VotingTimeoutHours != 6 {
		t.Fatalf("voting_timeout_hours = %d, want 6", settings.VotingTimeoutHours)
	}
	if settings.NarrationTimeoutHours != 8 {
		t.Fatalf("narration_timeout_hours = %d, want 8", settings.NarrationTimeoutHours)
	}
	if settings.ResolutionMethod != "arbiter" {
		t.Fatalf("resolution_method = %q, want arbiter", settings.ResolutionMethod)
	}
	if !settings.PersonaSharingEnabled {
		t.Fatal("expected persona_sharing")
	}
	if settings.VotingMode != game.VotingModeOnePerPersona {
		t.Fatalf("voting_mode = %q, want one_per_persona", settings.VotingMode)
	}
	if settings.ArgumentMode != game.ArgumentModeSharedPool {
		t.Fatalf("argument_mode = %q, want shared_pool", settings.ArgumentMode)
	}
	if settings.NarrationMode != game.NarrationModeOpen {
		t.Fatalf("narration_mode = %q, want open", settings.NarrationMode)
	}
}

func TestSettingsFromArgs_Empty(t *testing.T) {
	settings := settingsFromArgs(map[string]any{})
	if settings != (game.Settings{}) {
		t.Fatalf("expected zero settings, got %+v", settings)
	}
}

func TestParseArgumentType(t *testing.T) {
	tests := []struct {
		input string
		want  action.ArgumentType
	}{
		{"for", action.ArgumentTypeFor},
		{"FOR", action.ArgumentTypeFor},
		{"against", action.ArgumentTypeAgainst},
		{"clarification", action.ArgumentTypeClarification},
		{" sideways ", action.ArgumentType("sideways")},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := parseArgumentType(tc.input)
			if got != tc.want {
				t.Fatalf("parseArgumentType(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseVoteType(t *testing.T) {
	tests := []struct {
		input string
		want  action.VoteType
	}{
		{"likely_success", action.VoteTypeLikelySuccess},
		{"LIKELY_FAILURE", action.VoteTypeLikelyFailure},
		{"uncertain", action.VoteTypeUncertain},
		{" maybe ", action.VoteType("maybe")},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := parseVoteType(tc.input)
			if got != tc.want {
				t.Fatalf("parseVoteType(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSyntheticIdentities(t *testing.T) {
	identities := newSyntheticIdentities()

	if got := identities.CreateUser("Ana"); got != "scenario-ana-01" {
		t.Fatalf("first id = %q, want scenario-ana-01", got)
	}
	if got := identities.CreateUser("Defense Ministry"); got != "scenario-defense-ministry-02" {
		t.Fatalf("second id = %q, want scenario-defense-ministry-02", got)
	}
	if got := identities.CreateUser("  "); got != "scenario-user-03" {
		t.Fatalf("blank name id = %q, want scenario-user-03", got)
	}
}

func TestClockAdvance(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := newClock(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("now = %v, want %v", got, start)
	}
	moved := c.Advance(49 * time.Hour)
	want := start.Add(49 * time.Hour)
	if !moved.Equal(want) {
		t.Fatalf("advanced = %v, want %v", moved, want)
	}
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("now after advance = %v, want %v", got, want)
	}
}

func TestRequiredString(t *testing.T) {
	if requiredString(map[string]any{"k": "v"}, "k") != "v" {
		t.Fatal("expected v")
	}
	if requiredString(map[string]any{}, "k") != "" {
		t.Fatal("expected empty")
	}
	if requiredString(map[string]any{"k": ""}, "k") != "" {
		t.Fatal("expected empty for empty string")
	}
}

func TestReadInt(t *testing.T) {
	v, ok := readInt(map[string]any{"k": 5}, "k")
	if !ok || v != 5 {
		t.Fatal("expected 5")
	}
	v, ok = readInt(map[string]any{"k": float64(-1)}, "k")
	if !ok || v != -1 {
		t.Fatal("expected -1 from float64")
	}
	_, ok = readInt(map[string]any{}, "k")
	if ok {
		t.Fatal("expected not ok")
	}
	_, ok = readInt(map[string]any{"k": "5"}, "k")
	if ok {
		t.Fatal("expected not ok for string")
	}
}

func TestOptionalString(t *testing.T) {
	args := map[string]any{"key": "value"}
	if optionalString(args, "key", "fb") != "value" {
		t.Fatal("expected value")
	}
	if optionalString(args, "missing", "fb") != "fb" {
		t.Fatal("expected fallback")
	}
	if optionalString(map[string]any{"key": ""}, "key", "fb") != "fb" {
		t.Fatal("expected fallback for empty string")
	}
}

func TestOptionalInt(t *testing.T) {
	if optionalInt(map[string]any{"k": 42}, "k", 0) != 42 {
		t.Fatal("expected 42")
	}
	if optionalInt(map[string]any{"k": float64(42)}, "k", 0) != 42 {
		t.Fatal("expected 42 from float64")
	}
	if optionalInt(map[string]any{}, "k", 99) != 99 {
		t.Fatal("expected fallback 99")
	}
}

func TestOptionalBool(t *testing.T) {
	if !optionalBool(map[string]any{"k": true}, "k", false) {
		t.Fatal("expected true")
	}
	if !optionalBool(map[string]any{"k": "true"}, "k", false) {
		t.Fatal("expected true from string")
	}
	if !optionalBool(map[string]any{"k": "yes"}, "k", false) {
		t.Fatal("expected true from 'yes'")
	}
	if optionalBool(map[string]any{"k": "false"}, "k", true) {
		t.Fatal("expected false from 'false'")
	}
	if !optionalBool(map[string]any{}, "k", true) {
		t.Fatal("expected fallback true")
	}
}
