// Package scenario runs Lua-scripted games against an in-process engine.
// Scripts build a Scenario value describing setup, play, and assertions;
// the runner executes the steps against a throwaway sqlite store with a
// clock the script advances explicitly.
package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const (
	scenarioTypeName  = "scenario"
	playerRefTypeName = "player_ref"
)

// Scenario is an ordered list of steps produced by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted operation, identified by kind with loosely typed
// arguments straight from the Lua table.
type Step struct {
	Kind string
	Args map[string]any
}

// playerRef lets a player step chain a persona claim onto the seat it
// just declared.
type playerRef struct {
	scenario *Scenario
	name     string
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it built.
// The script must return the Scenario userdata; an unnamed scenario takes
// the file's base name.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerPlayerRefType(state)
	registerScenarioConstructor(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerPlayerRefType(state *lua.State) {
	lua.NewMetaTable(state, playerRefTypeName)
	state.NewTable()
	lua.SetFunctions(state, playerRefMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "game", Function: scenarioGame},
	{Name: "player", Function: scenarioPlayer},
	{Name: "persona", Function: scenarioPersona},
	{Name: "claim_persona", Function: scenarioClaimPersona},
	{Name: "start", Function: scenarioStart},
	{Name: "propose", Function: scenarioPropose},
	{Name: "argue", Function: scenarioArgue},
	{Name: "complete_argumentation", Function: scenarioCompleteArgumentation},
	{Name: "skip_argumentation", Function: scenarioSkipArgumentation},
	{Name: "vote", Function: scenarioVote},
	{Name: "skip_voting", Function: scenarioSkipVoting},
	{Name: "mark_strong", Function: scenarioMarkStrong},
	{Name: "complete_review", Function: scenarioCompleteReview},
	{Name: "narrate", Function: scenarioNarrate},
	{Name: "skip_round", Function: scenarioSkipRound},
	{Name: "transition", Function: scenarioTransition},
	{Name: "advance_hours", Function: scenarioAdvanceHours},
	{Name: "sweep", Function: scenarioSweep},
	{Name: "assert_phase", Function: scenarioAssertPhase},
	{Name: "assert_action_status", Function: scenarioAssertActionStatus},
	{Name: "assert_round", Function: scenarioAssertRound},
}

func scenarioGame(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "game", data)
	return 0
}

func scenarioPlayer(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "player", map[string]any{"name": name})
	state.PushUserData(&playerRef{scenario: scenario, name: name})
	lua.SetMetaTableNamed(state, playerRefTypeName)
	return 1
}

func scenarioPersona(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	opts := optionalTable(state, 3)
	data := map[string]any{"name": name}
	for key, value := range opts {
		data[key] = value
	}
	appendStep(scenario, "persona", data)
	return 0
}

func scenarioClaimPersona(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "claim_persona", data)
	return 0
}

func scenarioStart(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "start", nil)
	return 0
}

func scenarioPropose(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "propose", data)
	return 0
}

func scenarioArgue(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "argue", data)
	return 0
}

func scenarioCompleteArgumentation(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "complete_argumentation", data)
	return 0
}

func scenarioSkipArgumentation(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "skip_argumentation", data)
	return 0
}

func scenarioVote(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "vote", data)
	return 0
}

func scenarioSkipVoting(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "skip_voting", data)
	return 0
}

func scenarioMarkStrong(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "mark_strong", data)
	return 0
}

func scenarioCompleteReview(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "complete_review", data)
	return 0
}

func scenarioNarrate(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "narrate", data)
	return 0
}

func scenarioSkipRound(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 2)
	appendStep(scenario, "skip_round", data)
	return 0
}

func scenarioTransition(state *lua.State) int {
	scenario := checkScenario(state)
	phase := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["phase"] = phase
	appendStep(scenario, "transition", data)
	return 0
}

func scenarioAdvanceHours(state *lua.State) int {
	scenario := checkScenario(state)
	hours := lua.CheckNumber(state, 2)
	appendStep(scenario, "advance_hours", map[string]any{"hours": normalizeNumber(hours)})
	return 0
}

func scenarioSweep(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "sweep", nil)
	return 0
}

func scenarioAssertPhase(state *lua.State) int {
	scenario := checkScenario(state)
	phase := lua.CheckString(state, 2)
	appendStep(scenario, "assert_phase", map[string]any{"phase": phase})
	return 0
}

func scenarioAssertActionStatus(state *lua.State) int {
	scenario := checkScenario(state)
	status := lua.CheckString(state, 2)
	appendStep(scenario, "assert_action_status", map[string]any{"status": status})
	return 0
}

func scenarioAssertRound(state *lua.State) int {
	scenario := checkScenario(state)
	number := int(lua.CheckNumber(state, 2))
	appendStep(scenario, "assert_round", map[string]any{"number": number})
	return 0
}

var playerRefMethods = []lua.RegistryFunction{
	{Name: "claims", Function: playerRefClaims},
}

func playerRefClaims(state *lua.State) int {
	ud := lua.CheckUserData(state, 1, playerRefTypeName)
	ref, ok := ud.(*playerRef)
	if !ok || ref == nil {
		lua.Errorf(state, "invalid player reference")
		return 0
	}
	persona := lua.CheckString(state, 2)
	appendStep(ref.scenario, "claim_persona", map[string]any{
		"player":  ref.name,
		"persona": persona,
	})
	state.PushUserData(ref)
	lua.SetMetaTableNamed(state, playerRefTypeName)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
