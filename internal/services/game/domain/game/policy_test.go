package game

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		op      Operation
		allowed bool
	}{
		{name: "lobby read allowed", status: StatusLobby, op: OpRead, allowed: true},
		{name: "lobby mutate allowed", status: StatusLobby, op: OpLobbyMutate, allowed: true},
		{name: "lobby join allowed", status: StatusLobby, op: OpJoin, allowed: true},
		{name: "lobby leave allowed", status: StatusLobby, op: OpLeave, allowed: true},
		{name: "lobby rejoin allowed", status: StatusLobby, op: OpRejoin, allowed: true},
		{name: "lobby start allowed", status: StatusLobby, op: OpStart, allowed: true},
		{name: "lobby delete allowed", status: StatusLobby, op: OpDelete, allowed: true},
		{name: "lobby play blocked", status: StatusLobby, op: OpPlay, allowed: false},
		{name: "lobby complete blocked", status: StatusLobby, op: OpComplete, allowed: false},
		{name: "active read allowed", status: StatusActive, op: OpRead, allowed: true},
		{name: "active play allowed", status: StatusActive, op: OpPlay, allowed: true},
		{name: "active leave allowed", status: StatusActive, op: OpLeave, allowed: true},
		{name: "active rejoin allowed", status: StatusActive, op: OpRejoin, allowed: true},
		{name: "active complete allowed", status: StatusActive, op: OpComplete, allowed: true},
		{name: "active join blocked", status: StatusActive, op: OpJoin, allowed: false},
		{name: "active mutate blocked", status: StatusActive, op: OpLobbyMutate, allowed: false},
		{name: "active start blocked", status: StatusActive, op: OpStart, allowed: false},
		{name: "active delete blocked", status: StatusActive, op: OpDelete, allowed: false},
		{name: "completed read allowed", status: StatusCompleted, op: OpRead, allowed: true},
		{name: "completed play blocked", status: StatusCompleted, op: OpPlay, allowed: false},
		{name: "completed rejoin blocked", status: StatusCompleted, op: OpRejoin, allowed: false},
		{name: "completed delete blocked", status: StatusCompleted, op: OpDelete, allowed: false},
		{name: "unspecified op blocked", status: StatusLobby, op: OpUnspecified, allowed: false},
		{name: "unknown op blocked", status: StatusActive, op: Operation(99), allowed: false},
		{name: "invalid status read allowed", status: Status("paused"), op: OpRead, allowed: true},
		{name: "invalid status play blocked", status: Status("paused"), op: OpPlay, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOperation(tt.status, tt.op)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateOperationMetadata(t *testing.T) {
	err := ValidateOperation(StatusActive, OpDelete)
	if err == nil {
		t.Fatal("expected error")
	}

	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if domainErr.Code != apperrors.CodeGameStatusDisallowsOp {
		t.Fatalf("expected code %s, got %s", apperrors.CodeGameStatusDisallowsOp, domainErr.Code)
	}
	if domainErr.Metadata["Status"] != "ACTIVE" {
		t.Fatalf("expected status metadata ACTIVE, got %s", domainErr.Metadata["Status"])
	}
	if domainErr.Metadata["Operation"] != "DELETE" {
		t.Fatalf("expected operation metadata DELETE, got %s", domainErr.Metadata["Operation"])
	}
}

func TestOperationLabels(t *testing.T) {
	labels := map[Operation]string{
		OpRead:        "READ",
		OpLobbyMutate: "LOBBY_MUTATE",
		OpJoin:        "JOIN",
		OpLeave:       "LEAVE",
		OpRejoin:      "REJOIN",
		OpStart:       "START",
		OpPlay:        "PLAY",
		OpComplete:    "COMPLETE",
		OpDelete:      "DELETE",
		OpUnspecified: "UNSPECIFIED",
	}
	for op, label := range labels {
		if got := operationLabel(op); got != label {
			t.Fatalf("label for %v = %q, want %q", op, got, label)
		}
	}
}
