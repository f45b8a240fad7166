package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// RecordNarration applies the full narration commit in one transaction: the
// narration row, the action's move to NARRATED, the round progress bump, and
// the phase move out of NARRATION. A second narration for the action returns
// ErrDuplicateNarration and leaves everything untouched.
func (s *Store) RecordNarration(ctx context.Context, commit storage.NarrationCommit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	n := commit.Narration
	if strings.TrimSpace(n.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}
	if strings.TrimSpace(commit.RoundID) == "" {
		return fmt.Errorf("round id is required")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO narrations (action_id, author_id, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
`,
			n.ActionID,
			n.AuthorID,
			n.Content,
			toMillis(n.CreatedAt),
			toMillis(n.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateNarration
			}
			return fmt.Errorf("insert narration: %w", err)
		}

		if err := applyActionStatusMove(ctx, tx, n.ActionID, action.StatusResolved, action.StatusNarrated,
			[]string{"updated_at = ?"},
			[]any{toMillis(n.CreatedAt)},
		); err != nil {
			return err
		}

		set := "actions_completed = actions_completed + 1, updated_at = ?"
		if commit.CompleteRound {
			set += ", status = 'completed'"
		}
		res, err := tx.ExecContext(ctx, `
UPDATE rounds SET `+set+` WHERE id = ?
`, toMillis(n.CreatedAt), commit.RoundID)
		if err != nil {
			return fmt.Errorf("bump round progress: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("bump round progress rows: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}

		return applyPhaseTransition(ctx, tx, commit.Transition)
	})
}

// GetNarration retrieves the narration of an action.
func (s *Store) GetNarration(ctx context.Context, actionID string) (action.Narration, error) {
	if err := ctx.Err(); err != nil {
		return action.Narration{}, err
	}
	if err := s.ready(); err != nil {
		return action.Narration{}, err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return action.Narration{}, fmt.Errorf("action id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT action_id, author_id, content, created_at, updated_at
FROM narrations
WHERE action_id = ?
`, actionID)
	var (
		n         action.Narration
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&n.ActionID, &n.AuthorID, &n.Content, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return action.Narration{}, storage.ErrNotFound
		}
		return action.Narration{}, fmt.Errorf("get narration: %w", err)
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return n, nil
}

// UpdateNarrationContent rewrites narration text without lifecycle effect.
func (s *Store) UpdateNarrationContent(ctx context.Context, actionID, content string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return fmt.Errorf("action id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE narrations SET content = ?, updated_at = ? WHERE action_id = ?
`, content, toMillis(updatedAt), actionID)
	if err != nil {
		return fmt.Errorf("update narration content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update narration content rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
