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

const actionColumns = `id, game_id, round_id, initiator_id, initiator_unit_key,
	sequence_number, description, desired_outcome, status,
	argumentation_started_at, voting_started_at, resolved_at,
	resolution_method, result_type, result_value, resolution_data,
	was_argumentation_skipped, was_voting_skipped, created_at, updated_at`

func scanAction(row rowScanner) (action.Action, error) {
	var (
		a                      action.Action
		argumentationStartedAt sql.NullInt64
		votingStartedAt        sql.NullInt64
		resolvedAt             sql.NullInt64
		resolutionData         []byte
		argumentationSkipped   int
		votingSkipped          int
		createdAt              int64
		updatedAt              int64
	)
	err := row.Scan(
		&a.ID,
		&a.GameID,
		&a.RoundID,
		&a.InitiatorID,
		&a.InitiatorUnitKey,
		&a.SequenceNumber,
		&a.Description,
		&a.DesiredOutcome,
		&a.Status,
		&argumentationStartedAt,
		&votingStartedAt,
		&resolvedAt,
		&a.ResolutionMethod,
		&a.ResultType,
		&a.ResultValue,
		&resolutionData,
		&argumentationSkipped,
		&votingSkipped,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return action.Action{}, err
	}
	a.ArgumentationStartedAt = fromNullMillis(argumentationStartedAt)
	a.VotingStartedAt = fromNullMillis(votingStartedAt)
	a.ResolvedAt = fromNullMillis(resolvedAt)
	a.ResolutionData = resolutionData
	a.WasArgumentationSkipped = argumentationSkipped != 0
	a.WasVotingSkipped = votingSkipped != 0
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func insertAction(ctx context.Context, ex execer, a action.Action) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("action id is required")
	}
	if strings.TrimSpace(a.RoundID) == "" {
		return fmt.Errorf("round id is required")
	}
	if strings.TrimSpace(a.InitiatorUnitKey) == "" {
		return fmt.Errorf("initiator unit key is required")
	}

	_, err := ex.ExecContext(ctx, `
INSERT INTO actions (
	id, game_id, round_id, initiator_id, initiator_unit_key,
	sequence_number, description, desired_outcome, status,
	argumentation_started_at, voting_started_at, resolved_at,
	resolution_method, result_type, result_value, resolution_data,
	was_argumentation_skipped, was_voting_skipped, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		a.ID,
		a.GameID,
		a.RoundID,
		a.InitiatorID,
		a.InitiatorUnitKey,
		a.SequenceNumber,
		a.Description,
		a.DesiredOutcome,
		string(a.Status),
		toNullMillis(a.ArgumentationStartedAt),
		toNullMillis(a.VotingStartedAt),
		toNullMillis(a.ResolvedAt),
		a.ResolutionMethod,
		a.ResultType,
		a.ResultValue,
		a.ResolutionData,
		boolToInt(a.WasArgumentationSkipped),
		boolToInt(a.WasVotingSkipped),
		toMillis(a.CreatedAt),
		toMillis(a.UpdatedAt),
	)
	return err
}

// CreateProposal inserts the proposed action and advances the game into
// argumentation in one transaction. The (round, unit) uniqueness index turns
// a repeat proposal into ErrDuplicateProposal.
func (s *Store) CreateProposal(ctx context.Context, a action.Action, transition storage.PhaseTransition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertAction(ctx, tx, a); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateProposal
			}
			return fmt.Errorf("insert action: %w", err)
		}
		return applyPhaseTransition(ctx, tx, transition)
	})
}

// GetAction retrieves an action by id.
func (s *Store) GetAction(ctx context.Context, actionID string) (action.Action, error) {
	if err := ctx.Err(); err != nil {
		return action.Action{}, err
	}
	if err := s.ready(); err != nil {
		return action.Action{}, err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return action.Action{}, fmt.Errorf("action id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM actions WHERE id = ?`, actionID)
	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return action.Action{}, storage.ErrNotFound
		}
		return action.Action{}, fmt.Errorf("get action: %w", err)
	}
	return a, nil
}

// ListActionsByRound returns a round's actions in proposal order.
func (s *Store) ListActionsByRound(ctx context.Context, roundID string) ([]action.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return nil, fmt.Errorf("round id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+actionColumns+`
FROM actions
WHERE round_id = ?
ORDER BY sequence_number ASC, id ASC
`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []action.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("list actions: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// NextActionSequence returns one past the game's highest action sequence
// number.
func (s *Store) NextActionSequence(ctx context.Context, gameID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return 0, fmt.Errorf("game id is required")
	}

	var next int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COALESCE(MAX(sequence_number), 0) + 1
FROM actions
WHERE game_id = ?
`, gameID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next action sequence: %w", err)
	}
	return next, nil
}

// UpdateActionContent rewrites the action's description fields without
// touching lifecycle state.
func (s *Store) UpdateActionContent(ctx context.Context, actionID, description, desiredOutcome string, updatedAt time.Time) error {
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
UPDATE actions SET description = ?, desired_outcome = ?, updated_at = ?
WHERE id = ?
`, description, desiredOutcome, toMillis(updatedAt), actionID)
	if err != nil {
		return fmt.Errorf("update action content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update action content rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// applyActionStatusMove performs a guarded lifecycle move against ex.
func applyActionStatusMove(ctx context.Context, ex execer, actionID string, from, to action.Status, set []string, args []any) error {
	query := `UPDATE actions SET status = ?, ` + strings.Join(set, ", ") + ` WHERE id = ? AND status = ?`
	execArgs := append([]any{string(to)}, args...)
	execArgs = append(execArgs, actionID, string(from))
	res, err := ex.ExecContext(ctx, query, execArgs...)
	if err != nil {
		return fmt.Errorf("update action status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update action status rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrStaleAction
	}
	return nil
}

// StartActionVoting moves the action from ARGUING to VOTING exactly once.
func (s *Store) StartActionVoting(ctx context.Context, actionID string, votingStartedAt time.Time, argumentationSkipped bool) error {
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
	if votingStartedAt.IsZero() {
		votingStartedAt = time.Now().UTC()
	}

	return applyActionStatusMove(ctx, s.sqlDB, actionID, action.StatusArguing, action.StatusVoting,
		[]string{"voting_started_at = ?", "was_argumentation_skipped = ?", "updated_at = ?"},
		[]any{toMillis(votingStartedAt), boolToInt(argumentationSkipped), toMillis(votingStartedAt)},
	)
}

// ResolveAction records the outcome while the action is still in VOTING.
// The status guard makes resolution happen exactly once; the loser of a
// concurrent resolve sees ErrStaleAction.
func (s *Store) ResolveAction(ctx context.Context, actionID string, res storage.ActionResolution) error {
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
	if strings.TrimSpace(res.Method) == "" {
		return fmt.Errorf("resolution method is required")
	}
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now().UTC()
	}

	return applyActionStatusMove(ctx, s.sqlDB, actionID, action.StatusVoting, action.StatusResolved,
		[]string{
			"resolved_at = ?", "resolution_method = ?", "result_type = ?",
			"result_value = ?", "resolution_data = ?", "was_voting_skipped = ?",
			"updated_at = ?",
		},
		[]any{
			toMillis(res.ResolvedAt), res.Method, res.ResultType,
			res.ResultValue, res.Data, boolToInt(res.VotingSkipped),
			toMillis(res.ResolvedAt),
		},
	)
}
