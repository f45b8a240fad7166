package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

const gameColumns = `id, name, status, current_phase, phase_started_at,
	current_round_id, current_action_id, argument_limit,
	proposal_timeout_hours, argumentation_timeout_hours,
	voting_timeout_hours, narration_timeout_hours, resolution_method,
	persona_sharing_enabled, voting_mode, argument_mode, narration_mode,
	npc_momentum, created_at, updated_at, deleted_at`

// rowScanner covers *sql.Row and *sql.Rows so one scan helper serves both.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (game.Game, error) {
	var (
		g              game.Game
		phaseStartedAt int64
		sharingEnabled int
		createdAt      int64
		updatedAt      int64
		deletedAt      sql.NullInt64
	)
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Status,
		&g.CurrentPhase,
		&phaseStartedAt,
		&g.CurrentRoundID,
		&g.CurrentActionID,
		&g.Settings.ArgumentLimit,
		&g.Settings.ProposalTimeoutHours,
		&g.Settings.ArgumentationTimeoutHours,
		&g.Settings.VotingTimeoutHours,
		&g.Settings.NarrationTimeoutHours,
		&g.Settings.ResolutionMethod,
		&sharingEnabled,
		&g.Settings.VotingMode,
		&g.Settings.ArgumentMode,
		&g.Settings.NarrationMode,
		&g.NPCMomentum,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return game.Game{}, err
	}
	g.PhaseStartedAt = fromMillis(phaseStartedAt)
	g.Settings.PersonaSharingEnabled = sharingEnabled != 0
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	g.DeletedAt = fromNullMillis(deletedAt)
	return g, nil
}

// PutGame inserts or fully rewrites a game row. Phase moves go through
// TransitionPhase instead so concurrent transitions stay guarded.
func (s *Store) PutGame(ctx context.Context, g game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO games (
	id, name, status, current_phase, phase_started_at,
	current_round_id, current_action_id, argument_limit,
	proposal_timeout_hours, argumentation_timeout_hours,
	voting_timeout_hours, narration_timeout_hours, resolution_method,
	persona_sharing_enabled, voting_mode, argument_mode, narration_mode,
	npc_momentum, created_at, updated_at, deleted_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	status = excluded.status,
	current_phase = excluded.current_phase,
	phase_started_at = excluded.phase_started_at,
	current_round_id = excluded.current_round_id,
	current_action_id = excluded.current_action_id,
	argument_limit = excluded.argument_limit,
	proposal_timeout_hours = excluded.proposal_timeout_hours,
	argumentation_timeout_hours = excluded.argumentation_timeout_hours,
	voting_timeout_hours = excluded.voting_timeout_hours,
	narration_timeout_hours = excluded.narration_timeout_hours,
	resolution_method = excluded.resolution_method,
	persona_sharing_enabled = excluded.persona_sharing_enabled,
	voting_mode = excluded.voting_mode,
	argument_mode = excluded.argument_mode,
	narration_mode = excluded.narration_mode,
	npc_momentum = excluded.npc_momentum,
	updated_at = excluded.updated_at,
	deleted_at = excluded.deleted_at
`,
		g.ID,
		g.Name,
		string(g.Status),
		string(g.CurrentPhase),
		toMillis(g.PhaseStartedAt),
		g.CurrentRoundID,
		g.CurrentActionID,
		g.Settings.ArgumentLimit,
		g.Settings.ProposalTimeoutHours,
		g.Settings.ArgumentationTimeoutHours,
		g.Settings.VotingTimeoutHours,
		g.Settings.NarrationTimeoutHours,
		g.Settings.ResolutionMethod,
		boolToInt(g.Settings.PersonaSharingEnabled),
		string(g.Settings.VotingMode),
		string(g.Settings.ArgumentMode),
		string(g.Settings.NarrationMode),
		g.NPCMomentum,
		toMillis(g.CreatedAt),
		toMillis(g.UpdatedAt),
		toNullMillis(g.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

// GetGame retrieves a game by id, including soft-deleted rows.
func (s *Store) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	if err := ctx.Err(); err != nil {
		return game.Game{}, err
	}
	if err := s.ready(); err != nil {
		return game.Game{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, gameID)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Game{}, storage.ErrNotFound
		}
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// ListGames returns one page of undeleted games ordered by id.
func (s *Store) ListGames(ctx context.Context, pageSize int, pageToken string) (storage.GamePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.GamePage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.GamePage{}, err
	}
	if pageSize <= 0 {
		return storage.GamePage{}, fmt.Errorf("page size must be greater than zero")
	}

	page := storage.GamePage{
		Games: make([]game.Game, 0, pageSize),
	}
	pageToken = strings.TrimSpace(pageToken)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+gameColumns+`
FROM games
WHERE deleted_at IS NULL AND id > ?
ORDER BY id ASC
LIMIT ?
`, pageToken, pageSize+1)
	if err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return storage.GamePage{}, fmt.Errorf("list games: %w", err)
		}
		page.Games = append(page.Games, g)
	}
	if err := rows.Err(); err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	if len(page.Games) > pageSize {
		page.NextPageToken = page.Games[pageSize-1].ID
		page.Games = page.Games[:pageSize]
	}
	return page, nil
}

// execer abstracts *sql.DB and *sql.Tx for writes shared with transactions.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// applyPhaseTransition performs the guarded phase move against ex. Zero
// affected rows means the stored phase no longer matches FromPhase.
func applyPhaseTransition(ctx context.Context, ex execer, t storage.PhaseTransition) error {
	if strings.TrimSpace(t.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(string(t.FromPhase)) == "" || strings.TrimSpace(string(t.ToPhase)) == "" {
		return fmt.Errorf("transition phases are required")
	}
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}

	set := []string{"current_phase = ?", "phase_started_at = ?", "updated_at = ?"}
	args := []any{string(t.ToPhase), toMillis(t.At), toMillis(t.At)}
	if t.CurrentRoundID != nil {
		set = append(set, "current_round_id = ?")
		args = append(args, *t.CurrentRoundID)
	}
	if t.CurrentActionID != nil {
		set = append(set, "current_action_id = ?")
		args = append(args, *t.CurrentActionID)
	}
	args = append(args, t.GameID, string(t.FromPhase))

	res, err := ex.ExecContext(ctx, `
UPDATE games SET `+strings.Join(set, ", ")+`
WHERE id = ? AND current_phase = ? AND deleted_at IS NULL
`, args...)
	if err != nil {
		return fmt.Errorf("transition phase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition phase rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrStalePhase
	}
	return nil
}

// TransitionPhase applies one guarded phase move. A missing game reports
// ErrNotFound; a phase mismatch reports ErrStalePhase.
func (s *Store) TransitionPhase(ctx context.Context, transition storage.PhaseTransition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	err := applyPhaseTransition(ctx, s.sqlDB, transition)
	if errors.Is(err, storage.ErrStalePhase) {
		if _, getErr := s.GetGame(ctx, transition.GameID); errors.Is(getErr, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
	}
	return err
}

// AdjustNPCMomentum shifts the game's NPC momentum track by delta.
func (s *Store) AdjustNPCMomentum(ctx context.Context, gameID string, delta int, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE games SET npc_momentum = npc_momentum + ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL
`, delta, toMillis(updatedAt), gameID)
	if err != nil {
		return fmt.Errorf("adjust npc momentum: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust npc momentum rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListActiveGamesByPhase returns active, undeleted games in any of the given
// phases, oldest phase entry first so the sweep drains the stalest games.
func (s *Store) ListActiveGamesByPhase(ctx context.Context, phases ...game.Phase) ([]game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("at least one phase is required")
	}

	placeholders := make([]string, 0, len(phases))
	args := make([]any, 0, len(phases))
	for _, phase := range phases {
		placeholders = append(placeholders, "?")
		args = append(args, string(phase))
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+gameColumns+`
FROM games
WHERE status = 'active' AND deleted_at IS NULL
  AND current_phase IN (`+strings.Join(placeholders, ", ")+`)
ORDER BY phase_started_at ASC, id ASC
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list active games by phase: %w", err)
	}
	defer rows.Close()

	var games []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("list active games by phase: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active games by phase: %w", err)
	}
	return games, nil
}
