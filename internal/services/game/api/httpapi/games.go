package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/engine"
)

type createGameRequest struct {
	Name     string       `json:"name"`
	HostName string       `json:"host_name"`
	Settings settingsJSON `json:"settings"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.engine.CreateGame(r.Context(), userIDFrom(r.Context()), engine.CreateGameRequest{
		Name:     req.Name,
		HostName: req.HostName,
		Settings: req.Settings.toDomain(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameJSON(g))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryInt32(r, "page_size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.engine.ListGames(r.Context(), userIDFrom(r.Context()), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := gameListJSON{
		Games:         make([]gameJSON, 0, len(list.Games)),
		NextPageToken: list.NextPageToken,
	}
	for _, g := range list.Games {
		out.Games = append(out.Games, toGameJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.GetGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotJSON(snap))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsJSON
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.engine.UpdateSettings(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), req.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameJSON(g))
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.StartGame(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameJSON(g))
}

type transitionPhaseRequest struct {
	To string `json:"to"`
}

func (s *Server) handleTransitionPhase(w http.ResponseWriter, r *http.Request) {
	var req transitionPhaseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	to, ok := game.NormalizePhaseLabel(req.To)
	if !ok {
		s.writeError(w, r, apperrors.WithMetadata(
			apperrors.CodeRequestInvalid,
			fmt.Sprintf("unknown phase %q", req.To),
			map[string]string{"Phase": req.To},
		))
		return
	}
	g, err := s.engine.TransitionPhase(r.Context(), userIDFrom(r.Context()), r.PathValue("game"), to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameJSON(g))
}

func (s *Server) handleGetTimeoutStatus(w http.ResponseWriter, r *http.Request) {
	ts, err := s.engine.GetTimeoutStatus(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeoutStatusJSON(ts))
}

// queryInt32 parses an optional numeric query parameter.
func queryInt32(r *http.Request, name string) (int32, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, apperrors.WrapWithMetadata(
			apperrors.CodeRequestInvalid,
			"parse query parameter "+name,
			map[string]string{"Parameter": name},
			err,
		)
	}
	return int32(value), nil
}
