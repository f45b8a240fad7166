package engine

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
)

func TestGetGameSnapshotsActionInFlight(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "host-user", g.ID, "Blockade the northern strait.")
	if _, err := h.engine.AddArgument(context.Background(), "guest-user", AddArgumentRequest{
		GameID:  g.ID,
		Type:    action.ArgumentTypeAgainst,
		Content: "The strait is mined.",
	}); err != nil {
		t.Fatalf("AddArgument() error = %v, want nil", err)
	}
	h.completeArgumentation(t, "host-user", g.ID)
	h.completeArgumentation(t, "guest-user", g.ID)
	h.vote(t, "host-user", g.ID, action.VoteTypeLikelySuccess)

	snap, err := h.engine.GetGame(context.Background(), "guest-user", g.ID)
	if err != nil {
		t.Fatalf("GetGame() error = %v, want nil", err)
	}
	if snap.Game.ID != g.ID {
		t.Errorf("snapshot game = %s, want %s", snap.Game.ID, g.ID)
	}
	if len(snap.Players) != 2 {
		t.Errorf("players = %d, want 2", len(snap.Players))
	}
	if snap.Round.RoundNumber != 1 {
		t.Errorf("round number = %d, want 1", snap.Round.RoundNumber)
	}
	if snap.Action.ID != a.ID {
		t.Errorf("snapshot action = %s, want %s", snap.Action.ID, a.ID)
	}
	if len(snap.Arguments) != 2 {
		t.Errorf("arguments = %d, want 2", len(snap.Arguments))
	}
	if len(snap.Votes) != 1 {
		t.Errorf("votes = %d, want 1", len(snap.Votes))
	}
}

func TestGetGameRequiresSeat(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)

	_, err := h.engine.GetGame(context.Background(), "drifter-user", g.ID)
	if !apperrors.HasCode(err, apperrors.CodePlayerMemberRequired) {
		t.Fatalf("GetGame(non-member) error = %v, want %s", err, apperrors.CodePlayerMemberRequired)
	}
}

func TestGetGameReadableAfterLeaving(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	if err := h.engine.LeaveGame(context.Background(), "guest-user", g.ID); err != nil {
		t.Fatalf("LeaveGame() error = %v, want nil", err)
	}

	snap, err := h.engine.GetGame(context.Background(), "guest-user", g.ID)
	if err != nil {
		t.Fatalf("GetGame(after leave) error = %v, want nil", err)
	}
	if snap.Game.ID != g.ID {
		t.Errorf("snapshot game = %s, want %s", snap.Game.ID, g.ID)
	}
}

func TestListGamesFiltersToMembership(t *testing.T) {
	h := newTestEngine(t)
	mine := h.createGame(t, "host-user", game.DefaultSettings())
	h.createGame(t, "other-user", game.DefaultSettings())
	deleted := h.createGame(t, "host-user", game.DefaultSettings())
	if err := h.engine.DeleteGame(context.Background(), "host-user", deleted.ID); err != nil {
		t.Fatalf("DeleteGame() error = %v, want nil", err)
	}

	list, err := h.engine.ListGames(context.Background(), "host-user", 50, "")
	if err != nil {
		t.Fatalf("ListGames() error = %v, want nil", err)
	}
	if len(list.Games) != 1 {
		t.Fatalf("games = %d, want 1 (membership only, deleted excluded)", len(list.Games))
	}
	if list.Games[0].ID != mine.ID {
		t.Errorf("game = %s, want %s", list.Games[0].ID, mine.ID)
	}
}

func TestListAuditEventsPages(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	first, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:   g.ID,
		PageSize: 3,
	})
	if err != nil {
		t.Fatalf("ListAuditEvents() error = %v, want nil", err)
	}
	if len(first.Events) != 3 {
		t.Fatalf("first page = %d events, want 3", len(first.Events))
	}
	if first.NextPageToken == "" {
		t.Fatal("NextPageToken empty, want cursor to the next page")
	}
	if first.TotalCount <= 3 {
		t.Errorf("TotalCount = %d, want the full log size", first.TotalCount)
	}

	second, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:    g.ID,
		PageSize:  3,
		PageToken: first.NextPageToken,
	})
	if err != nil {
		t.Fatalf("ListAuditEvents(page 2) error = %v, want nil", err)
	}
	if len(second.Events) == 0 {
		t.Fatal("second page empty, want continuation")
	}
	if second.Events[0].ID <= first.Events[len(first.Events)-1].ID {
		t.Error("second page did not advance past the first page's cursor")
	}
	if second.TotalCount != first.TotalCount {
		t.Errorf("TotalCount changed between pages: %d then %d", first.TotalCount, second.TotalCount)
	}
}

func TestListAuditEventsFiltersByKind(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	page, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID: g.ID,
		Filter: `kind = "VOTE_SUBMITTED"`,
	})
	if err != nil {
		t.Fatalf("ListAuditEvents() error = %v, want nil", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("filtered events = %d, want 2 votes", len(page.Events))
	}
	for _, evt := range page.Events {
		if evt.EventType != "VOTE_SUBMITTED" {
			t.Errorf("event type = %s, want VOTE_SUBMITTED", evt.EventType)
		}
	}
	if page.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", page.TotalCount)
	}
}

func TestListAuditEventsDescending(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	page, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:     g.ID,
		Descending: true,
	})
	if err != nil {
		t.Fatalf("ListAuditEvents() error = %v, want nil", err)
	}
	if len(page.Events) < 2 {
		t.Fatalf("events = %d, want the full log", len(page.Events))
	}
	if page.Events[0].ID < page.Events[len(page.Events)-1].ID {
		t.Error("events not in descending order")
	}
}

func TestListAuditEventsRejectsBadToken(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)

	_, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:    g.ID,
		PageToken: "not-a-cursor",
	})
	if !apperrors.HasCode(err, apperrors.CodePageTokenInvalid) {
		t.Fatalf("ListAuditEvents() error = %v, want %s", err, apperrors.CodePageTokenInvalid)
	}
}

func TestListAuditEventsRejectsTokenFromOtherFilter(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "host-user", "guest-user", "Blockade the northern strait.")

	first, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:   g.ID,
		PageSize: 2,
		Filter:   `kind = "PHASE_CHANGED"`,
	})
	if err != nil {
		t.Fatalf("ListAuditEvents() error = %v, want nil", err)
	}
	if first.NextPageToken == "" {
		t.Fatal("NextPageToken empty, want a continuation under the filter")
	}

	_, err = h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID:    g.ID,
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	if !apperrors.HasCode(err, apperrors.CodePageTokenInvalid) {
		t.Fatalf("ListAuditEvents(token under other filter) error = %v, want %s", err, apperrors.CodePageTokenInvalid)
	}
}

func TestListAuditEventsRejectsBadFilter(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)

	_, err := h.engine.ListAuditEvents(context.Background(), "host-user", ListAuditEventsRequest{
		GameID: g.ID,
		Filter: `flavor = "salt"`,
	})
	if !apperrors.HasCode(err, apperrors.CodeAuditFilterInvalid) {
		t.Fatalf("ListAuditEvents() error = %v, want %s", err, apperrors.CodeAuditFilterInvalid)
	}
}
