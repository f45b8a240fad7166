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

const argumentColumns = `id, action_id, player_id, type, content, sequence,
	is_strong, created_at, updated_at`

func scanArgument(row rowScanner) (action.Argument, error) {
	var (
		a         action.Argument
		isStrong  int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&a.ID,
		&a.ActionID,
		&a.PlayerID,
		&a.Type,
		&a.Content,
		&a.Sequence,
		&isStrong,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return action.Argument{}, err
	}
	a.IsStrong = isStrong != 0
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

// CreateArgument appends one debate contribution.
func (s *Store) CreateArgument(ctx context.Context, a action.Argument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("argument id is required")
	}
	if strings.TrimSpace(a.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO arguments (
	id, action_id, player_id, type, content, sequence, is_strong,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		a.ID,
		a.ActionID,
		a.PlayerID,
		string(a.Type),
		a.Content,
		a.Sequence,
		boolToInt(a.IsStrong),
		toMillis(a.CreatedAt),
		toMillis(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create argument: %w", err)
	}
	return nil
}

// GetArgument retrieves one argument by id.
func (s *Store) GetArgument(ctx context.Context, argumentID string) (action.Argument, error) {
	if err := ctx.Err(); err != nil {
		return action.Argument{}, err
	}
	if err := s.ready(); err != nil {
		return action.Argument{}, err
	}
	argumentID = strings.TrimSpace(argumentID)
	if argumentID == "" {
		return action.Argument{}, fmt.Errorf("argument id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+argumentColumns+` FROM arguments WHERE id = ?`, argumentID)
	a, err := scanArgument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return action.Argument{}, storage.ErrNotFound
		}
		return action.Argument{}, fmt.Errorf("get argument: %w", err)
	}
	return a, nil
}

// ListArgumentsByAction returns an action's arguments in submission order.
func (s *Store) ListArgumentsByAction(ctx context.Context, actionID string) ([]action.Argument, error) {
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
SELECT `+argumentColumns+`
FROM arguments
WHERE action_id = ?
ORDER BY sequence ASC, id ASC
`, actionID)
	if err != nil {
		return nil, fmt.Errorf("list arguments: %w", err)
	}
	defer rows.Close()

	var arguments []action.Argument
	for rows.Next() {
		a, err := scanArgument(rows)
		if err != nil {
			return nil, fmt.Errorf("list arguments: %w", err)
		}
		arguments = append(arguments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list arguments: %w", err)
	}
	return arguments, nil
}

// UpdateArgumentContent rewrites argument text without lifecycle effect.
func (s *Store) UpdateArgumentContent(ctx context.Context, argumentID, content string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	argumentID = strings.TrimSpace(argumentID)
	if argumentID == "" {
		return fmt.Errorf("argument id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE arguments SET content = ?, updated_at = ? WHERE id = ?
`, content, toMillis(updatedAt), argumentID)
	if err != nil {
		return fmt.Errorf("update argument content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update argument content rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetArgumentStrength flags or unflags an argument for arbiter tallies.
func (s *Store) SetArgumentStrength(ctx context.Context, argumentID string, isStrong bool, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	argumentID = strings.TrimSpace(argumentID)
	if argumentID == "" {
		return fmt.Errorf("argument id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE arguments SET is_strong = ?, updated_at = ? WHERE id = ?
`, boolToInt(isStrong), toMillis(updatedAt), argumentID)
	if err != nil {
		return fmt.Errorf("set argument strength: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set argument strength rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PutArgumentationSignal records one unit's done signal. Repeats for the
// same unit are ignored, so the call is idempotent for retries and for
// multiple members of one persona.
func (s *Store) PutArgumentationSignal(ctx context.Context, sig storage.ArgumentationSignal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(sig.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}
	if strings.TrimSpace(sig.UnitKey) == "" {
		return fmt.Errorf("unit key is required")
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO argumentation_signals (action_id, unit_key, player_id, created_at)
VALUES (?, ?, ?, ?)
`,
		sig.ActionID,
		sig.UnitKey,
		sig.PlayerID,
		toMillis(sig.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put argumentation signal: %w", err)
	}
	return nil
}

// ListArgumentationSignals returns the units done arguing an action.
func (s *Store) ListArgumentationSignals(ctx context.Context, actionID string) ([]storage.ArgumentationSignal, error) {
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
SELECT action_id, unit_key, player_id, created_at
FROM argumentation_signals
WHERE action_id = ?
ORDER BY created_at ASC, unit_key ASC
`, actionID)
	if err != nil {
		return nil, fmt.Errorf("list argumentation signals: %w", err)
	}
	defer rows.Close()

	var signals []storage.ArgumentationSignal
	for rows.Next() {
		var (
			sig       storage.ArgumentationSignal
			createdAt int64
		)
		if err := rows.Scan(&sig.ActionID, &sig.UnitKey, &sig.PlayerID, &createdAt); err != nil {
			return nil, fmt.Errorf("list argumentation signals: %w", err)
		}
		sig.CreatedAt = fromMillis(createdAt)
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list argumentation signals: %w", err)
	}
	return signals, nil
}
