package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// CreateVote records one ballot. The (action, player) uniqueness index turns
// a repeat vote into ErrDuplicateVote; votes are never overwritten.
func (s *Store) CreateVote(ctx context.Context, v action.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("vote id is required")
	}
	if strings.TrimSpace(v.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}
	if strings.TrimSpace(v.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO votes (
	id, action_id, player_id, type, success_tokens, failure_tokens,
	was_skipped, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		v.ID,
		v.ActionID,
		v.PlayerID,
		string(v.Type),
		v.SuccessTokens,
		v.FailureTokens,
		boolToInt(v.WasSkipped),
		toMillis(v.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateVote
		}
		return fmt.Errorf("create vote: %w", err)
	}
	return nil
}

// ListVotesByAction returns an action's ballots in cast order.
func (s *Store) ListVotesByAction(ctx context.Context, actionID string) ([]action.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return nil, fmt.Errorf("action id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, action_id, player_id, type, success_tokens, failure_tokens,
	was_skipped, created_at
FROM votes
WHERE action_id = ?
ORDER BY created_at ASC, id ASC
`, actionID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []action.Vote
	for rows.Next() {
		var (
			v          action.Vote
			wasSkipped int
			createdAt  int64
		)
		if err := rows.Scan(
			&v.ID,
			&v.ActionID,
			&v.PlayerID,
			&v.Type,
			&v.SuccessTokens,
			&v.FailureTokens,
			&wasSkipped,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list votes: %w", err)
		}
		v.WasSkipped = wasSkipped != 0
		v.CreatedAt = fromMillis(createdAt)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}
