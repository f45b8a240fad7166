package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

const roundColumns = `id, game_id, round_number, status, actions_completed,
	total_actions_required, created_at, updated_at`

func scanRound(row rowScanner) (round.Round, error) {
	var (
		r         round.Round
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&r.ID,
		&r.GameID,
		&r.RoundNumber,
		&r.Status,
		&r.ActionsCompleted,
		&r.TotalActionsRequired,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return round.Round{}, err
	}
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}

func insertRound(ctx context.Context, ex execer, r round.Round) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := ex.ExecContext(ctx, `
INSERT INTO rounds (
	id, game_id, round_number, status, actions_completed,
	total_actions_required, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		r.ID,
		r.GameID,
		r.RoundNumber,
		string(r.Status),
		r.ActionsCompleted,
		r.TotalActionsRequired,
		toMillis(r.CreatedAt),
		toMillis(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// PutRound inserts or updates a round row.
func (s *Store) PutRound(ctx context.Context, r round.Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO rounds (
	id, game_id, round_number, status, actions_completed,
	total_actions_required, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status,
	actions_completed = excluded.actions_completed,
	total_actions_required = excluded.total_actions_required,
	updated_at = excluded.updated_at
`,
		r.ID,
		r.GameID,
		r.RoundNumber,
		string(r.Status),
		r.ActionsCompleted,
		r.TotalActionsRequired,
		toMillis(r.CreatedAt),
		toMillis(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put round: %w", err)
	}
	return nil
}

// GetRound retrieves a round by id.
func (s *Store) GetRound(ctx context.Context, roundID string) (round.Round, error) {
	if err := ctx.Err(); err != nil {
		return round.Round{}, err
	}
	if err := s.ready(); err != nil {
		return round.Round{}, err
	}
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return round.Round{}, fmt.Errorf("round id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = ?`, roundID)
	r, err := scanRound(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return round.Round{}, storage.ErrNotFound
		}
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	return r, nil
}

// ListRoundsByGame returns all rounds of a game ordered by round number.
func (s *Store) ListRoundsByGame(ctx context.Context, gameID string) ([]round.Round, error) {
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
SELECT `+roundColumns+`
FROM rounds
WHERE game_id = ?
ORDER BY round_number ASC
`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []round.Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("list rounds: %w", err)
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

// StartRound creates the round row and moves the game into its proposal
// phase in one transaction. ActivateGame additionally flips a lobby game to
// active, which only the first round does.
func (s *Store) StartRound(ctx context.Context, start storage.RoundStart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertRound(ctx, tx, start.Round); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrStalePhase
			}
			return err
		}
		if start.ActivateGame {
			res, err := tx.ExecContext(ctx, `
UPDATE games SET status = 'active', updated_at = ?
WHERE id = ? AND status = 'lobby' AND deleted_at IS NULL
`, toMillis(start.Transition.At), start.Transition.GameID)
			if err != nil {
				return fmt.Errorf("activate game: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("activate game rows: %w", err)
			}
			if affected == 0 {
				return storage.ErrStalePhase
			}
		}
		return applyPhaseTransition(ctx, tx, start.Transition)
	})
}
