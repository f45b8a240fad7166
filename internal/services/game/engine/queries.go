package engine

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/grpc/pagination"
	"github.com/louisbranch/warroom/internal/services/game/core/filter"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/persona"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/storage"
	"github.com/louisbranch/warroom/internal/services/game/storage/cursor"
)

var (
	gamePageSizes  = pagination.PageSizeConfig{Default: 20, Max: 100}
	auditPageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}
)

// Snapshot bundles a game with the state a client renders: the roster, the
// persona catalog, the open round, and the action in flight with its
// arguments and votes. Round and Action carry empty IDs when absent.
type Snapshot struct {
	Game      game.Game
	Players   []player.Player
	Personas  []persona.Persona
	Round     round.Round
	Action    action.Action
	Arguments []action.Argument
	Votes     []action.Vote
}

// GetGame returns the caller's view of a game. Players who soft-left may
// still read it.
func (e *Engine) GetGame(ctx context.Context, userID, gameID string) (Snapshot, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := e.callerSeat(ctx, g.ID, userID); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Game: g}
	if snap.Players, err = e.store.ListPlayersByGame(ctx, g.ID); err != nil {
		return Snapshot{}, err
	}
	if snap.Personas, err = e.store.ListPersonasByGame(ctx, g.ID); err != nil {
		return Snapshot{}, err
	}

	if g.CurrentRoundID != "" {
		if snap.Round, err = e.store.GetRound(ctx, g.CurrentRoundID); err != nil {
			return Snapshot{}, err
		}
	}
	if g.CurrentActionID != "" {
		if snap.Action, err = e.store.GetAction(ctx, g.CurrentActionID); err != nil {
			return Snapshot{}, err
		}
		if snap.Arguments, err = e.store.ListArgumentsByAction(ctx, g.CurrentActionID); err != nil {
			return Snapshot{}, err
		}
		if snap.Votes, err = e.store.ListVotesByAction(ctx, g.CurrentActionID); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

// GameList is one page of games the caller holds a seat in.
type GameList struct {
	Games         []game.Game
	NextPageToken string
}

// ListGames pages through the games the caller belongs to, newest first.
// Pages may come back short because membership filtering happens after the
// store page is cut.
func (e *Engine) ListGames(ctx context.Context, userID string, pageSize int32, pageToken string) (GameList, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return GameList{}, errCallerRequired()
	}

	memberIDs, err := e.store.ListGameIDsByUser(ctx, userID)
	if err != nil {
		return GameList{}, err
	}
	membership := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		membership[id] = true
	}

	size := pagination.ClampPageSize(pageSize, gamePageSizes)
	page, err := e.store.ListGames(ctx, size, pageToken)
	if err != nil {
		return GameList{}, err
	}

	list := GameList{
		Games:         make([]game.Game, 0, len(page.Games)),
		NextPageToken: page.NextPageToken,
	}
	for _, g := range page.Games {
		if membership[g.ID] && !g.Deleted() {
			list.Games = append(list.Games, g)
		}
	}
	return list, nil
}

// ListAuditEventsRequest selects a page of a game's audit log.
type ListAuditEventsRequest struct {
	GameID    string
	PageSize  int32
	PageToken string
	// Filter is an AIP-160 expression over kind, actor_id, round_id,
	// action_id, and created_at.
	Filter     string
	Descending bool
}

// AuditPage is one page of the game log.
type AuditPage struct {
	Events        []storage.AuditEvent
	NextPageToken string
	// TotalCount counts every event matching the filter, not just this page.
	TotalCount int
}

// ListAuditEvents pages through a game's audit log. Any seat holder may read
// it, including players who left.
func (e *Engine) ListAuditEvents(ctx context.Context, userID string, req ListAuditEventsRequest) (AuditPage, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return AuditPage{}, err
	}
	if _, err := e.callerSeat(ctx, g.ID, userID); err != nil {
		return AuditPage{}, err
	}

	var cursorID int64
	if token := strings.TrimSpace(req.PageToken); token != "" {
		c, err := cursor.Decode(token)
		if err != nil {
			return AuditPage{}, apperrors.New(apperrors.CodePageTokenInvalid, "page token is invalid")
		}
		if err := cursor.ValidateFilterHash(c, req.Filter); err != nil {
			return AuditPage{}, apperrors.New(apperrors.CodePageTokenInvalid, "page token is invalid")
		}
		wantDir := cursor.DirectionForward
		if req.Descending {
			wantDir = cursor.DirectionBackward
		}
		if c.Dir != wantDir {
			return AuditPage{}, apperrors.New(apperrors.CodePageTokenInvalid, "page token is invalid")
		}
		cursorID = c.ID
	}

	cond, err := filter.ParseAuditFilter(req.Filter)
	if err != nil {
		return AuditPage{}, apperrors.Wrap(apperrors.CodeAuditFilterInvalid, "audit filter is invalid", err)
	}

	result, err := e.store.ListAuditEventsPage(ctx, storage.ListAuditEventsRequest{
		GameID:       g.ID,
		PageSize:     pagination.ClampPageSize(req.PageSize, auditPageSizes),
		CursorID:     cursorID,
		Descending:   req.Descending,
		FilterClause: cond.Clause,
		FilterParams: cond.Params,
	})
	if err != nil {
		return AuditPage{}, err
	}

	page := AuditPage{
		Events:     result.Events,
		TotalCount: result.TotalCount,
	}
	if result.HasNextPage && len(result.Events) > 0 {
		lastID := result.Events[len(result.Events)-1].ID
		token, err := cursor.Encode(cursor.New(lastID, req.Descending, req.Filter))
		if err != nil {
			return AuditPage{}, apperrors.Wrap(apperrors.CodeUnknown, "encode page token", err)
		}
		page.NextPageToken = token
	}
	return page, nil
}
