package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// CreateInvite mints a seat offer for a lobby game. Host only. A non-positive
// TTL takes the invite default.
func (e *Engine) CreateInvite(ctx context.Context, userID, gameID string, ttl time.Duration) (invite.Invite, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return invite.Invite{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpLobbyMutate); err != nil {
		return invite.Invite{}, err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return invite.Invite{}, err
	}

	inv, err := invite.CreateInvite(invite.CreateInviteInput{
		GameID:    g.ID,
		CreatedBy: host.ID,
		TTL:       ttl,
	}, e.clock, e.idGenerator)
	if err != nil {
		return invite.Invite{}, err
	}
	if err := e.store.PutInvite(ctx, inv); err != nil {
		return invite.Invite{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   host.ID,
		EventType: events.InviteCreated,
		PayloadJSON: audit.Payload(map[string]any{
			"invite_id":  inv.ID,
			"expires_at": inv.ExpiresAt.Format(time.RFC3339),
		}),
		CreatedAt: inv.CreatedAt,
	})
	return inv, nil
}

// ListInvites returns a game's invites. Host only.
func (e *Engine) ListInvites(ctx context.Context, userID, gameID string) ([]invite.Invite, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if _, err := e.hostSeat(ctx, g.ID, userID); err != nil {
		return nil, err
	}
	return e.store.ListInvitesByGame(ctx, g.ID)
}

// IssueJoinGrant signs a grant binding an invite to the user expected to
// redeem it. Host only; requires the engine's signing key.
func (e *Engine) IssueJoinGrant(ctx context.Context, userID, gameID, inviteID, granteeUserID string) (string, error) {
	granteeUserID = strings.TrimSpace(granteeUserID)
	if granteeUserID == "" {
		return "", apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "grantee user id is required")
	}
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	if _, err := e.hostSeat(ctx, g.ID, userID); err != nil {
		return "", err
	}

	inv, err := e.getInvite(ctx, g.ID, inviteID)
	if err != nil {
		return "", err
	}
	if err := inv.Redeemable(e.now()); err != nil {
		return "", err
	}

	jwtID, err := e.idGenerator()
	if err != nil {
		return "", err
	}
	return invite.IssueJoinGrant(invite.JoinGrantExpectation{
		GameID:   g.ID,
		InviteID: inv.ID,
		UserID:   granteeUserID,
	}, inv.ExpiresAt.Sub(e.now()), jwtID, e.grants)
}

// RedeemInviteRequest redeems an invite with its signed join grant.
type RedeemInviteRequest struct {
	GameID   string
	InviteID string
	Grant    string
	Name     string
}

// RedeemInvite validates the caller's join grant, consumes the invite, and
// seats them. The invite is single-use; concurrent redeems settle on the
// store's redeemed-at guard.
func (e *Engine) RedeemInvite(ctx context.Context, userID string, req RedeemInviteRequest) (player.Player, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return player.Player{}, errCallerRequired()
	}
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return player.Player{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpJoin); err != nil {
		return player.Player{}, err
	}

	inv, err := e.getInvite(ctx, g.ID, req.InviteID)
	if err != nil {
		return player.Player{}, err
	}
	if _, err := invite.ValidateJoinGrant(req.Grant, invite.JoinGrantExpectation{
		GameID:   g.ID,
		InviteID: inv.ID,
		UserID:   userID,
	}, e.grants); err != nil {
		return player.Player{}, err
	}
	if err := inv.Redeemable(e.now()); err != nil {
		return player.Player{}, err
	}

	redeemedAt := e.now()
	if err := e.store.MarkInviteRedeemed(ctx, inv.ID, userID, redeemedAt); err != nil {
		return player.Player{}, err
	}

	seat, err := player.CreatePlayer(player.CreatePlayerInput{
		GameID: g.ID,
		UserID: userID,
		Name:   req.Name,
	}, e.clock, e.idGenerator)
	if err != nil {
		return player.Player{}, err
	}
	if err := e.store.PutPlayer(ctx, seat); err != nil {
		// The grant holder already sat down; the invite is spent either way.
		if errors.Is(err, storage.ErrPlayerExists) {
			return e.callerSeat(ctx, g.ID, userID)
		}
		return player.Player{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		ActorID:   seat.ID,
		EventType: events.InviteRedeemed,
		PayloadJSON: audit.Payload(map[string]any{
			"invite_id":   inv.ID,
			"player_name": seat.Name,
		}),
		CreatedAt: redeemedAt,
	})
	e.notify(ctx, NotifyPlayerJoined, g.ID, map[string]string{"player_name": seat.Name})
	return seat, nil
}

// getInvite fetches an invite and pins it to the game it was minted for.
func (e *Engine) getInvite(ctx context.Context, gameID, inviteID string) (invite.Invite, error) {
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite id is required")
	}
	inv, err := e.store.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite not found")
		}
		return invite.Invite{}, err
	}
	if inv.GameID != gameID {
		return invite.Invite{}, apperrors.New(apperrors.CodeInviteNotFound, "invite does not belong to this game")
	}
	return inv, nil
}
