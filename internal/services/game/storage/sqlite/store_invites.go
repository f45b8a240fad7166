package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

const inviteColumns = `id, game_id, created_by, created_at, expires_at,
	redeemed_at, redeemed_by`

func scanInvite(row rowScanner) (invite.Invite, error) {
	var (
		inv        invite.Invite
		createdAt  int64
		expiresAt  int64
		redeemedAt sql.NullInt64
	)
	err := row.Scan(
		&inv.ID,
		&inv.GameID,
		&inv.CreatedBy,
		&createdAt,
		&expiresAt,
		&redeemedAt,
		&inv.RedeemedBy,
	)
	if err != nil {
		return invite.Invite{}, err
	}
	inv.CreatedAt = fromMillis(createdAt)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.RedeemedAt = fromNullMillis(redeemedAt)
	return inv, nil
}

// PutInvite inserts or updates a join invite.
func (s *Store) PutInvite(ctx context.Context, inv invite.Invite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(inv.ID) == "" {
		return fmt.Errorf("invite id is required")
	}
	if strings.TrimSpace(inv.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO invites (
	id, game_id, created_by, created_at, expires_at, redeemed_at, redeemed_by
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	expires_at = excluded.expires_at,
	redeemed_at = excluded.redeemed_at,
	redeemed_by = excluded.redeemed_by
`,
		inv.ID,
		inv.GameID,
		inv.CreatedBy,
		toMillis(inv.CreatedAt),
		toMillis(inv.ExpiresAt),
		toNullMillis(inv.RedeemedAt),
		inv.RedeemedBy,
	)
	if err != nil {
		return fmt.Errorf("put invite: %w", err)
	}
	return nil
}

// GetInvite retrieves an invite by id.
func (s *Store) GetInvite(ctx context.Context, inviteID string) (invite.Invite, error) {
	if err := ctx.Err(); err != nil {
		return invite.Invite{}, err
	}
	if err := s.ready(); err != nil {
		return invite.Invite{}, err
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return invite.Invite{}, fmt.Errorf("invite id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, inviteID)
	inv, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invite.Invite{}, storage.ErrNotFound
		}
		return invite.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}

// ListInvitesByGame returns a game's invites newest first.
func (s *Store) ListInvitesByGame(ctx context.Context, gameID string) ([]invite.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+inviteColumns+`
FROM invites
WHERE game_id = ?
ORDER BY created_at DESC, id DESC
`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var invites []invite.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("list invites: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// MarkInviteRedeemed stamps redemption exactly once. A second redemption
// returns invite.ErrUsed; a missing invite returns ErrNotFound.
func (s *Store) MarkInviteRedeemed(ctx context.Context, inviteID, redeemedBy string, redeemedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	inviteID = strings.TrimSpace(inviteID)
	redeemedBy = strings.TrimSpace(redeemedBy)
	if inviteID == "" {
		return fmt.Errorf("invite id is required")
	}
	if redeemedBy == "" {
		return fmt.Errorf("redeeming user id is required")
	}
	if redeemedAt.IsZero() {
		redeemedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE invites SET redeemed_at = ?, redeemed_by = ?
WHERE id = ? AND redeemed_at IS NULL
`, toMillis(redeemedAt), redeemedBy, inviteID)
	if err != nil {
		return fmt.Errorf("mark invite redeemed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite redeemed rows: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetInvite(ctx, inviteID); errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return invite.ErrUsed
	}
	return nil
}
