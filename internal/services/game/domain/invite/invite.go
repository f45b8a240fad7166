// Package invite models game invites and the signed join grants that redeem
// them.
package invite

import (
	"fmt"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/id"
)

// DefaultTTL is how long an invite stays redeemable.
const DefaultTTL = 72 * time.Hour

var (
	// ErrEmptyGameID indicates an invite without a game.
	ErrEmptyGameID = apperrors.New(apperrors.CodeInviteEmptyGameID, "invite game id is required")
	// ErrUsed indicates an invite that was already redeemed.
	ErrUsed = apperrors.New(apperrors.CodeInviteJoinGrantUsed, "invite has already been redeemed")
	// ErrExpired indicates an invite past its redeem-by time.
	ErrExpired = apperrors.New(apperrors.CodeInviteJoinGrantExpired, "invite has expired")
)

// Invite represents one open seat offer for a game.
type Invite struct {
	ID         string
	GameID     string
	CreatedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RedeemedAt time.Time
	RedeemedBy string
}

// CreateInviteInput describes the metadata needed to create an invite.
type CreateInviteInput struct {
	GameID    string
	CreatedBy string
	TTL       time.Duration
}

// CreateInvite creates an invite with a generated ID and expiry.
func CreateInvite(input CreateInviteInput, now func() time.Time, idGenerator func() (string, error)) (Invite, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.GameID == "" {
		return Invite{}, ErrEmptyGameID
	}
	if input.TTL <= 0 {
		input.TTL = DefaultTTL
	}

	inviteID, err := idGenerator()
	if err != nil {
		return Invite{}, fmt.Errorf("generate invite id: %w", err)
	}

	createdAt := now().UTC()
	return Invite{
		ID:        inviteID,
		GameID:    input.GameID,
		CreatedBy: input.CreatedBy,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(input.TTL),
	}, nil
}

// Redeemable reports whether the invite can still be redeemed at now.
func (i Invite) Redeemable(now time.Time) error {
	if !i.RedeemedAt.IsZero() {
		return ErrUsed
	}
	if !now.Before(i.ExpiresAt) {
		return ErrExpired
	}
	return nil
}
