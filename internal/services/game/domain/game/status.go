package game

import "strings"

// Status describes the game lifecycle label used by domain decisions.
type Status string

const (
	StatusUnspecified Status = ""
	StatusLobby       Status = "lobby"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
)

// NormalizeStatusLabel canonicalizes status labels from transport payloads.
func NormalizeStatusLabel(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToUpper(trimmed) {
	case "LOBBY", "GAME_STATUS_LOBBY":
		return StatusLobby, true
	case "ACTIVE", "GAME_STATUS_ACTIVE":
		return StatusActive, true
	case "COMPLETED", "GAME_STATUS_COMPLETED":
		return StatusCompleted, true
	default:
		return "", false
	}
}

// IsStatusTransitionAllowed reports whether a lifecycle transition is permitted.
func IsStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusLobby:
		return to == StatusActive
	case StatusActive:
		return to == StatusCompleted
	default:
		return false
	}
}

// StatusLabel returns a stable label for a game status.
func StatusLabel(status Status) string {
	switch status {
	case StatusLobby:
		return "LOBBY"
	case StatusActive:
		return "ACTIVE"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}
