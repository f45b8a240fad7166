package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/storage"
)

const (
	auditDefaultPageSize = 50
	auditMaxPageSize     = 200
)

// AppendAuditEvent records one game log entry. The ID is assigned by the
// database.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	evt.GameID = strings.TrimSpace(evt.GameID)
	evt.EventType = strings.TrimSpace(evt.EventType)
	if evt.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if evt.EventType == "" {
		return fmt.Errorf("event type is required")
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (
	game_id, round_id, action_id, actor_id, event_type, payload_json, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		evt.GameID,
		evt.RoundID,
		evt.ActionID,
		evt.ActorID,
		evt.EventType,
		evt.PayloadJSON,
		toMillis(evt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

type listAuditSQLPlan struct {
	whereClause      string
	params           []any
	orderClause      string
	limitClause      string
	countWhereClause string
	countParams      []any
}

func buildListAuditSQLPlan(req storage.ListAuditEventsRequest) listAuditSQLPlan {
	whereClause := "game_id = ?"
	params := []any{req.GameID}

	// The cursor direction follows the sort order so paging always moves
	// away from the first page.
	if req.CursorID > 0 {
		if req.Descending {
			whereClause += " AND id < ?"
		} else {
			whereClause += " AND id > ?"
		}
		params = append(params, req.CursorID)
	}

	if req.FilterClause != "" {
		whereClause += " AND " + req.FilterClause
		params = append(params, req.FilterParams...)
	}

	orderClause := "ORDER BY id ASC"
	if req.Descending {
		orderClause = "ORDER BY id DESC"
	}

	countWhereClause := "game_id = ?"
	countParams := []any{req.GameID}
	if req.FilterClause != "" {
		countWhereClause += " AND " + req.FilterClause
		countParams = append(countParams, req.FilterParams...)
	}

	return listAuditSQLPlan{
		whereClause:      whereClause,
		params:           params,
		orderClause:      orderClause,
		limitClause:      fmt.Sprintf("LIMIT %d", req.PageSize+1),
		countWhereClause: countWhereClause,
		countParams:      countParams,
	}
}

// ListAuditEventsPage returns one filtered page of the game log plus the
// total match count for the filter.
func (s *Store) ListAuditEventsPage(ctx context.Context, req storage.ListAuditEventsRequest) (storage.ListAuditEventsResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListAuditEventsResult{}, err
	}
	if err := s.ready(); err != nil {
		return storage.ListAuditEventsResult{}, err
	}
	req.GameID = strings.TrimSpace(req.GameID)
	if req.GameID == "" {
		return storage.ListAuditEventsResult{}, fmt.Errorf("game id is required")
	}
	if req.PageSize <= 0 {
		req.PageSize = auditDefaultPageSize
	}
	if req.PageSize > auditMaxPageSize {
		req.PageSize = auditMaxPageSize
	}

	plan := buildListAuditSQLPlan(req)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, game_id, round_id, action_id, actor_id, event_type, payload_json, created_at
FROM audit_events
WHERE `+plan.whereClause+`
`+plan.orderClause+`
`+plan.limitClause, plan.params...)
	if err != nil {
		return storage.ListAuditEventsResult{}, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	result := storage.ListAuditEventsResult{
		Events: make([]storage.AuditEvent, 0, req.PageSize),
	}
	for rows.Next() {
		var (
			evt       storage.AuditEvent
			createdAt int64
		)
		if err := rows.Scan(
			&evt.ID,
			&evt.GameID,
			&evt.RoundID,
			&evt.ActionID,
			&evt.ActorID,
			&evt.EventType,
			&evt.PayloadJSON,
			&createdAt,
		); err != nil {
			return storage.ListAuditEventsResult{}, fmt.Errorf("scan audit event: %w", err)
		}
		evt.CreatedAt = fromMillis(createdAt)
		result.Events = append(result.Events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.ListAuditEventsResult{}, fmt.Errorf("iterate audit events: %w", err)
	}
	if len(result.Events) > req.PageSize {
		result.Events = result.Events[:req.PageSize]
		result.HasNextPage = true
	}

	countRow := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM audit_events WHERE `+plan.countWhereClause, plan.countParams...)
	if err := countRow.Scan(&result.TotalCount); err != nil {
		return storage.ListAuditEventsResult{}, fmt.Errorf("count audit events: %w", err)
	}

	return result, nil
}
