package httpapi

import (
	"net/http"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/engine"
)

type createInviteRequest struct {
	TTLHours int `json:"ttl_hours"`
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl := time.Duration(req.TTLHours) * time.Hour
	inv, err := s.engine.CreateInvite(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), ttl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInviteJSON(inv))
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := s.engine.ListInvites(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := inviteListJSON{Invites: make([]inviteJSON, 0, len(invites))}
	for _, inv := range invites {
		out.Invites = append(out.Invites, toInviteJSON(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

type issueJoinGrantRequest struct {
	GranteeUserID string `json:"grantee_user_id"`
}

type joinGrantJSON struct {
	Grant string `json:"grant"`
}

func (s *Server) handleIssueJoinGrant(w http.ResponseWriter, r *http.Request) {
	var req issueJoinGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	grant, err := s.engine.IssueJoinGrant(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), r.PathValue("invite"), req.GranteeUserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinGrantJSON{Grant: grant})
}

type redeemInviteRequest struct {
	Grant string `json:"grant"`
	Name  string `json:"name"`
}

func (s *Server) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	var req redeemInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.engine.RedeemInvite(r.Context(), userIDFrom(r.Context()), engine.RedeemInviteRequest{
		GameID:   r.PathValue("game"),
		InviteID: r.PathValue("invite"),
		Grant:    req.Grant,
		Name:     req.Name,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerJSON(p))
}
