package httpapi

import (
	"net/http"

	"github.com/louisbranch/warroom/internal/services/game/engine"
)

type joinGameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.engine.JoinGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerJSON(p))
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.LeaveGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRejoinGame(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.RejoinGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerJSON(p))
}

type createPersonaRequest struct {
	Name            string `json:"name"`
	IsNPC           bool   `json:"is_npc"`
	ScriptedAction  string `json:"scripted_action"`
	ScriptedOutcome string `json:"scripted_outcome"`
}

func (s *Server) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req createPersonaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.engine.CreatePersona(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), engine.CreatePersonaRequest{
		Name:            req.Name,
		IsNPC:           req.IsNPC,
		ScriptedAction:  req.ScriptedAction,
		ScriptedOutcome: req.ScriptedOutcome,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonaJSON(p))
}

func (s *Server) handleClaimPersona(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.ClaimPersona(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), r.PathValue("persona"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerJSON(p))
}

func (s *Server) handleReleasePersona(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.ReleasePersona(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerJSON(p))
}
