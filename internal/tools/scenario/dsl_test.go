package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlayerChainingCreatesSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("chain")
scene:game({name = "Crisis Council"})

-- Player + persona claim
scene:player("Ana"):claims("Defense Ministry")

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 3)
	}

	player := scenario.Steps[1]
	if player.Kind != "player" {
		t.Fatalf("step kind = %q, want %q", player.Kind, "player")
	}
	if player.Args["name"] != "Ana" {
		t.Fatalf("player name = %v, want Ana", player.Args["name"])
	}

	claim := scenario.Steps[2]
	if claim.Kind != "claim_persona" {
		t.Fatalf("step kind = %q, want %q", claim.Kind, "claim_persona")
	}
	if claim.Args["player"] != "Ana" {
		t.Fatalf("claim player = %v, want Ana", claim.Args["player"])
	}
	if claim.Args["persona"] != "Defense Ministry" {
		t.Fatalf("claim persona = %v, want Defense Ministry", claim.Args["persona"])
	}
}

func TestGameStepCollectsSettings(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("settings")
scene:game({
	name = "Crisis Council",
	argument_limit = 2,
	voting_timeout_hours = -1,
	resolution_method = "arbiter",
	persona_sharing = true,
})

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 1 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 1)
	}

	step := scenario.Steps[0]
	if step.Kind != "game" {
		t.Fatalf("step kind = %q, want %q", step.Kind, "game")
	}
	if step.Args["argument_limit"] != 2 {
		t.Fatalf("argument_limit = %v, want 2", step.Args["argument_limit"])
	}
	if step.Args["voting_timeout_hours"] != -1 {
		t.Fatalf("voting_timeout_hours = %v, want -1", step.Args["voting_timeout_hours"])
	}
	if step.Args["resolution_method"] != "arbiter" {
		t.Fatalf("resolution_method = %v, want arbiter", step.Args["resolution_method"])
	}
	if step.Args["persona_sharing"] != true {
		t.Fatalf("persona_sharing = %v, want true", step.Args["persona_sharing"])
	}
}

func TestTransitionStepCarriesPhase(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("force")
scene:game({name = "Crisis Council"})

-- Host forces the stuck phase forward
scene:transition("voting", {by = "Ana"})

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 2 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 2)
	}

	step := scenario.Steps[1]
	if step.Kind != "transition" {
		t.Fatalf("step kind = %q, want %q", step.Kind, "transition")
	}
	if step.Args["phase"] != "voting" {
		t.Fatalf("phase = %v, want voting", step.Args["phase"])
	}
	if step.Args["by"] != "Ana" {
		t.Fatalf("by = %v, want Ana", step.Args["by"])
	}
}

func TestAssertStepsCreateSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("asserts")
scene:game({name = "Crisis Council"})

-- Checks
scene:assert_phase("proposal")
scene:assert_action_status("arguing")
scene:assert_round(2)

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 4 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 4)
	}

	phase := scenario.Steps[1]
	if phase.Kind != "assert_phase" || phase.Args["phase"] != "proposal" {
		t.Fatalf("assert_phase step = %+v", phase)
	}
	status := scenario.Steps[2]
	if status.Kind != "assert_action_status" || status.Args["status"] != "arguing" {
		t.Fatalf("assert_action_status step = %+v", status)
	}
	round := scenario.Steps[3]
	if round.Kind != "assert_round" || round.Args["number"] != 2 {
		t.Fatalf("assert_round step = %+v", round)
	}
}

func TestArbiterStepsCreateSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("arbiter")
scene:game({name = "Crisis Council", resolution_method = "arbiter"})

-- Review
scene:mark_strong({argument = 1, strong = false})
scene:complete_review()

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 3)
	}

	mark := scenario.Steps[1]
	if mark.Kind != "mark_strong" {
		t.Fatalf("step kind = %q, want %q", mark.Kind, "mark_strong")
	}
	if mark.Args["argument"] != 1 {
		t.Fatalf("argument = %v, want 1", mark.Args["argument"])
	}
	if mark.Args["strong"] != false {
		t.Fatalf("strong = %v, want false", mark.Args["strong"])
	}
	review := scenario.Steps[2]
	if review.Kind != "complete_review" {
		t.Fatalf("step kind = %q, want %q", review.Kind, "complete_review")
	}
}

func TestFullScriptBuildsOrderedSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("full")
scene:game({name = "Crisis Council", host = "Moderator"})
scene:player("Ana")
scene:player("Luis")
scene:persona("Defense Ministry")
scene:persona("Rebel Cell", {npc = true, scripted_action = "Sabotage the rail line"})
scene:claim_persona({player = "Ana", persona = "Defense Ministry"})
scene:start()

-- One action through its lifecycle
scene:propose({by = "Ana", description = "Fortify the border", outcome = "Border holds"})
scene:argue({by = "Luis", type = "against", content = "Supply lines are too thin"})
scene:complete_argumentation({by = "Ana"})
scene:vote({by = "Luis", vote = "likely_success"})
scene:narrate({by = "Ana", content = "The border holds through winter."})

-- Timeout machinery
scene:advance_hours(30)
scene:sweep()
scene:assert_phase("proposal")

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "full" {
		t.Fatalf("name = %q, want full", scenario.Name)
	}

	wantKinds := []string{
		"game", "player", "player", "persona", "persona", "claim_persona",
		"start", "propose", "argue", "complete_argumentation", "vote",
		"narrate", "advance_hours", "sweep", "assert_phase",
	}
	if len(scenario.Steps) != len(wantKinds) {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), len(wantKinds))
	}
	for i, want := range wantKinds {
		if scenario.Steps[i].Kind != want {
			t.Fatalf("step %d kind = %q, want %q", i, scenario.Steps[i].Kind, want)
		}
	}

	npc := scenario.Steps[4]
	if npc.Args["npc"] != true {
		t.Fatalf("npc persona flag = %v, want true", npc.Args["npc"])
	}
	if npc.Args["scripted_action"] != "Sabotage the rail line" {
		t.Fatalf("scripted_action = %v", npc.Args["scripted_action"])
	}
	hours := scenario.Steps[12]
	if hours.Args["hours"] != 30 {
		t.Fatalf("advance_hours = %v, want 30", hours.Args["hours"])
	}
}

func TestUnnamedScenarioTakesFileName(t *testing.T) {
	path := writeScenarioFixture(t, `return Scenario.new()
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "scenario" {
		t.Fatalf("name = %q, want scenario", scenario.Name)
	}
}

func TestScriptMustReturnScenario(t *testing.T) {
	path := writeScenarioFixture(t, `-- returns a plain table instead
return {}
`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must return Scenario") {
		t.Fatalf("error = %q, want must return Scenario", err.Error())
	}
}

func TestScriptSyntaxErrorSurfaces(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("broken"
return scene
`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "load lua") {
		t.Fatalf("error = %q, want load lua prefix", err.Error())
	}
}

func writeScenarioFixture(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
