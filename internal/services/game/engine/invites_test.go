package engine

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
)

func TestInviteFlowSeatsGrantee(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())

	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}
	if !inv.ExpiresAt.Equal(inv.CreatedAt.Add(72 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want the 72h default TTL", inv.ExpiresAt)
	}

	grant, err := h.engine.IssueJoinGrant(context.Background(), "host-user", g.ID, inv.ID, "friend-user")
	if err != nil {
		t.Fatalf("IssueJoinGrant() error = %v, want nil", err)
	}
	if grant == "" {
		t.Fatal("IssueJoinGrant() returned an empty grant")
	}

	seat, err := h.engine.RedeemInvite(context.Background(), "friend-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    grant,
		Name:     "Friend",
	})
	if err != nil {
		t.Fatalf("RedeemInvite() error = %v, want nil", err)
	}
	if seat.UserID != "friend-user" || seat.Name != "Friend" {
		t.Errorf("seat = %s/%s, want friend-user/Friend", seat.UserID, seat.Name)
	}

	spent, err := h.store.GetInvite(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("GetInvite() error = %v, want nil", err)
	}
	if spent.RedeemedBy != "friend-user" || spent.RedeemedAt.IsZero() {
		t.Errorf("invite redeemed by %q at %v, want friend-user with a timestamp", spent.RedeemedBy, spent.RedeemedAt)
	}
	if !h.hasEvent(t, g.ID, "INVITE_CREATED") {
		t.Error("audit log missing INVITE_CREATED event")
	}
	if !h.hasEvent(t, g.ID, "INVITE_REDEEMED") {
		t.Error("audit log missing INVITE_REDEEMED event")
	}
}

func TestIssueJoinGrantHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	h.join(t, "guest-user", g.ID, "Guest")
	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}

	_, err = h.engine.IssueJoinGrant(context.Background(), "guest-user", g.ID, inv.ID, "friend-user")
	if !apperrors.HasCode(err, apperrors.CodePlayerHostRequired) {
		t.Fatalf("IssueJoinGrant(guest) error = %v, want %s", err, apperrors.CodePlayerHostRequired)
	}
}

func TestRedeemInviteRejectsWrongUser(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}
	grant, err := h.engine.IssueJoinGrant(context.Background(), "host-user", g.ID, inv.ID, "friend-user")
	if err != nil {
		t.Fatalf("IssueJoinGrant() error = %v, want nil", err)
	}

	_, err = h.engine.RedeemInvite(context.Background(), "impostor-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    grant,
		Name:     "Impostor",
	})
	if !apperrors.HasCode(err, apperrors.CodeInviteJoinGrantMismatch) {
		t.Fatalf("RedeemInvite(impostor) error = %v, want %s", err, apperrors.CodeInviteJoinGrantMismatch)
	}
}

func TestRedeemInviteSingleUse(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}
	firstGrant, err := h.engine.IssueJoinGrant(context.Background(), "host-user", g.ID, inv.ID, "friend-user")
	if err != nil {
		t.Fatalf("IssueJoinGrant(friend) error = %v, want nil", err)
	}
	secondGrant, err := h.engine.IssueJoinGrant(context.Background(), "host-user", g.ID, inv.ID, "other-user")
	if err != nil {
		t.Fatalf("IssueJoinGrant(other) error = %v, want nil", err)
	}

	if _, err := h.engine.RedeemInvite(context.Background(), "friend-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    firstGrant,
		Name:     "Friend",
	}); err != nil {
		t.Fatalf("RedeemInvite(friend) error = %v, want nil", err)
	}

	_, err = h.engine.RedeemInvite(context.Background(), "other-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    secondGrant,
		Name:     "Other",
	})
	if !apperrors.HasCode(err, apperrors.CodeInviteJoinGrantUsed) {
		t.Fatalf("RedeemInvite(second) error = %v, want %s", err, apperrors.CodeInviteJoinGrantUsed)
	}
}

func TestRedeemInviteExpired(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}
	grant, err := h.engine.IssueJoinGrant(context.Background(), "host-user", g.ID, inv.ID, "friend-user")
	if err != nil {
		t.Fatalf("IssueJoinGrant() error = %v, want nil", err)
	}

	h.clock.Advance(2 * time.Hour)

	_, err = h.engine.RedeemInvite(context.Background(), "friend-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    grant,
		Name:     "Friend",
	})
	if !apperrors.HasCode(err, apperrors.CodeInviteJoinGrantExpired) {
		t.Fatalf("RedeemInvite(expired) error = %v, want %s", err, apperrors.CodeInviteJoinGrantExpired)
	}
}

func TestRedeemInviteRejectsGarbageGrant(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	inv, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}

	_, err = h.engine.RedeemInvite(context.Background(), "friend-user", RedeemInviteRequest{
		GameID:   g.ID,
		InviteID: inv.ID,
		Grant:    "not-a-jwt",
		Name:     "Friend",
	})
	if !apperrors.HasCode(err, apperrors.CodeInviteJoinGrantInvalid) {
		t.Fatalf("RedeemInvite(garbage) error = %v, want %s", err, apperrors.CodeInviteJoinGrantInvalid)
	}
}

func TestListInvitesHostOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.createGame(t, "host-user", game.DefaultSettings())
	h.join(t, "guest-user", g.ID, "Guest")
	if _, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0); err != nil {
		t.Fatalf("CreateInvite() error = %v, want nil", err)
	}

	if _, err := h.engine.ListInvites(context.Background(), "guest-user", g.ID); !apperrors.HasCode(err, apperrors.CodePlayerHostRequired) {
		t.Fatalf("ListInvites(guest) error = %v, want %s", err, apperrors.CodePlayerHostRequired)
	}

	invites, err := h.engine.ListInvites(context.Background(), "host-user", g.ID)
	if err != nil {
		t.Fatalf("ListInvites(host) error = %v, want nil", err)
	}
	if len(invites) != 1 {
		t.Errorf("invites = %d, want 1", len(invites))
	}
}

func TestCreateInviteLobbyOnly(t *testing.T) {
	h := newTestEngine(t)
	g := h.twoPlayerGame(t)

	_, err := h.engine.CreateInvite(context.Background(), "host-user", g.ID, 0)
	if !apperrors.HasCode(err, apperrors.CodeGameStatusDisallowsOp) {
		t.Fatalf("CreateInvite(active game) error = %v, want %s", err, apperrors.CodeGameStatusDisallowsOp)
	}
}
