package round

import (
	"testing"
	"time"
)

func TestCreateRound(t *testing.T) {
	fixedNow := func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	fixedID := func() (string, error) {
		return "round-1", nil
	}

	created, err := CreateRound(CreateRoundInput{
		GameID:               "game-1",
		RoundNumber:          1,
		TotalActionsRequired: 3,
	}, fixedNow, fixedID)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	if created.ID != "round-1" {
		t.Fatalf("expected id round-1, got %s", created.ID)
	}
	if created.Status != StatusInProgress {
		t.Fatalf("expected in progress status, got %s", created.Status)
	}
	if created.ActionsCompleted != 0 {
		t.Fatalf("expected no completed actions, got %d", created.ActionsCompleted)
	}
	if created.TotalActionsRequired != 3 {
		t.Fatalf("expected total 3, got %d", created.TotalActionsRequired)
	}
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name  string
		round Round
		want  bool
	}{
		{name: "no actions yet", round: Round{ActionsCompleted: 0, TotalActionsRequired: 2}, want: false},
		{name: "partial", round: Round{ActionsCompleted: 1, TotalActionsRequired: 2}, want: false},
		{name: "exact", round: Round{ActionsCompleted: 2, TotalActionsRequired: 2}, want: true},
		{name: "over", round: Round{ActionsCompleted: 3, TotalActionsRequired: 2}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.round.IsComplete(); got != tt.want {
				t.Fatalf("IsComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(StatusInProgress) != "IN_PROGRESS" {
		t.Fatal("expected IN_PROGRESS label")
	}
	if StatusLabel(StatusCompleted) != "COMPLETED" {
		t.Fatal("expected COMPLETED label")
	}
	if StatusLabel(StatusUnspecified) != "UNSPECIFIED" {
		t.Fatal("expected UNSPECIFIED label")
	}
}
