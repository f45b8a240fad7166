package httpapi

import (
	"net/http"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/grpc/pagination"
	"github.com/louisbranch/warroom/internal/services/game/engine"
)

// auditOrderBy bounds what callers may sort the game log by.
var auditOrderBy = pagination.OrderByConfig{
	Default: "created_at desc",
	Allowed: []string{"created_at asc", "created_at desc"},
}

func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryInt32(r, "page_size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	orderBy, err := pagination.NormalizeOrderBy(query.Get("order_by"), auditOrderBy)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.CodeRequestInvalid, "parse order_by", err))
		return
	}
	page, err := s.engine.ListAuditEvents(r.Context(), userIDFrom(r.Context()), engine.ListAuditEventsRequest{
		GameID:     r.PathValue("game"),
		PageSize:   pageSize,
		PageToken:  query.Get("page_token"),
		Filter:     query.Get("filter"),
		Descending: orderBy == "created_at desc",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := auditPageJSON{
		Events:        make([]auditEventJSON, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
		TotalCount:    page.TotalCount,
	}
	for _, evt := range page.Events {
		out.Events = append(out.Events, toAuditEventJSON(evt))
	}
	writeJSON(w, http.StatusOK, out)
}
