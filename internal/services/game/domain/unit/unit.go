// Package unit derives acting units from the player roster. An acting unit is
// one independently-acting entity in a round: a solo player, or every player
// sharing one persona counted together. Thresholds for proposal uniqueness,
// argumentation completion, and voting all consult the same grouping.
package unit

import (
	"sort"

	"github.com/louisbranch/warroom/internal/services/game/domain/player"
)

// Unit is one acting unit derived from the roster.
type Unit struct {
	// Key identifies the unit: "persona:<id>" for persona groups,
	// "player:<id>" for solo players.
	Key string
	// PersonaID is set for persona groups.
	PersonaID string
	// MemberIDs lists the active players belonging to the unit.
	MemberIDs []string
	// LeadID is the player acting for the unit when one must be chosen:
	// the persona lead, or the solo player.
	LeadID string
	// IsNPC marks the system actor's unit.
	IsNPC bool
}

// KeyFor returns the acting-unit key a player belongs to.
func KeyFor(p player.Player) string {
	if p.PersonaID != "" {
		return "persona:" + p.PersonaID
	}
	return "player:" + p.ID
}

// ActingUnits groups active, non-NPC players into acting units, ordered by
// key for stable iteration. NPC seats are excluded; they never argue or vote.
func ActingUnits(players []player.Player) []Unit {
	byKey := make(map[string]*Unit)
	for _, p := range players {
		if !p.IsActive || p.IsNPC {
			continue
		}
		key := KeyFor(p)
		u, ok := byKey[key]
		if !ok {
			u = &Unit{Key: key, PersonaID: p.PersonaID}
			byKey[key] = u
		}
		u.MemberIDs = append(u.MemberIDs, p.ID)
		if p.PersonaID == "" || p.IsPersonaLead {
			u.LeadID = p.ID
		}
	}

	units := make([]Unit, 0, len(byKey))
	for _, u := range byKey {
		sort.Strings(u.MemberIDs)
		if u.LeadID == "" {
			u.LeadID = u.MemberIDs[0]
		}
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].Key < units[j].Key
	})
	return units
}

// CountActingUnits counts the human acting units in the roster.
func CountActingUnits(players []player.Player) int {
	return len(ActingUnits(players))
}

// PersonaMemberIDs lists the active, non-NPC players claiming a persona.
func PersonaMemberIDs(players []player.Player, personaID string) []string {
	if personaID == "" {
		return nil
	}
	var members []string
	for _, p := range players {
		if p.PersonaID == personaID && p.IsActive && !p.IsNPC {
			members = append(members, p.ID)
		}
	}
	sort.Strings(members)
	return members
}

// NPCUnit returns the system actor's unit when an active NPC seat exists.
func NPCUnit(players []player.Player) (Unit, bool) {
	for _, p := range players {
		if !p.IsActive || !p.IsNPC {
			continue
		}
		return Unit{
			Key:       KeyFor(p),
			PersonaID: p.PersonaID,
			MemberIDs: []string{p.ID},
			LeadID:    p.ID,
			IsNPC:     true,
		}, true
	}
	return Unit{}, false
}

// RoundActionTotal counts the actions a round requires: one per human acting
// unit, plus one for the NPC unit when present.
func RoundActionTotal(players []player.Player) int {
	total := CountActingUnits(players)
	if _, ok := NPCUnit(players); ok {
		total++
	}
	return total
}

// Uncovered returns the units with no member in actedPlayerIDs, preserving
// unit order. The timeout sweep and host skips act on these.
func Uncovered(units []Unit, actedPlayerIDs []string) []Unit {
	acted := make(map[string]bool, len(actedPlayerIDs))
	for _, playerID := range actedPlayerIDs {
		acted[playerID] = true
	}

	var remaining []Unit
	for _, u := range units {
		covered := false
		for _, memberID := range u.MemberIDs {
			if acted[memberID] {
				covered = true
				break
			}
		}
		if !covered {
			remaining = append(remaining, u)
		}
	}
	return remaining
}

// AllCovered reports whether every unit has at least one member in
// actedPlayerIDs.
func AllCovered(units []Unit, actedPlayerIDs []string) bool {
	return len(Uncovered(units, actedPlayerIDs)) == 0
}
