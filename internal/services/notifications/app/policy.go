package app

import (
	"strings"

	"github.com/louisbranch/warroom/internal/services/notifications/render"
)

// audienceScope selects which seats of a game receive a notification kind.
type audienceScope int

const (
	audienceMembers audienceScope = iota
	audienceHosts
)

// route is the delivery policy for one notification kind.
type route struct {
	scope audienceScope
	// dedupe derives a stable key for kinds that re-fire while the same
	// condition holds. Nil means every event stores a new row.
	dedupe func(gameID string, payload map[string]string) string
}

// routeFor maps an engine kind to its delivery policy. Host nudges re-fire on
// every sweep pass while a phase stalls, so they collapse onto one row per
// game and phase. Everything else goes to every active member once.
func routeFor(kind string) route {
	switch kind {
	case render.KindHostActionRequired:
		return route{scope: audienceHosts, dedupe: hostPhaseKey}
	default:
		return route{scope: audienceMembers}
	}
}

func hostPhaseKey(gameID string, payload map[string]string) string {
	phase := strings.TrimSpace(payload["phase"])
	if phase == "" {
		phase = "unknown"
	}
	return render.KindHostActionRequired + "/" + gameID + "/" + phase
}

func (r route) audience(recipients Recipients) []string {
	pool := recipients.MemberUserIDs
	if r.scope == audienceHosts {
		pool = recipients.HostUserIDs
	}

	seen := make(map[string]struct{}, len(pool))
	targets := make([]string, 0, len(pool))
	for _, userID := range pool {
		trimmed := strings.TrimSpace(userID)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		targets = append(targets, trimmed)
	}
	return targets
}

func (r route) dedupeKey(gameID string, payload map[string]string) string {
	if r.dedupe == nil {
		return ""
	}
	return r.dedupe(gameID, payload)
}
