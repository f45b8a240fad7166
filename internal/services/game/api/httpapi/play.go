package httpapi

import (
	"net/http"
	"strings"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/engine"
)

type proposeRequest struct {
	Description    string `json:"description"`
	DesiredOutcome string `json:"desired_outcome"`
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	act, err := s.engine.Propose(r.Context(), userIDFrom(r.Context()), engine.ProposeRequest{
		GameID:         r.PathValue("game"),
		Description:    req.Description,
		DesiredOutcome: req.DesiredOutcome,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActionJSON(act))
}

type editActionRequest struct {
	Description    string `json:"description"`
	DesiredOutcome string `json:"desired_outcome"`
}

func (s *Server) handleEditAction(w http.ResponseWriter, r *http.Request) {
	var req editActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	act, err := s.engine.EditAction(r.Context(), userIDFrom(r.Context()), engine.EditActionRequest{
		GameID:         r.PathValue("game"),
		ActionID:       r.PathValue("action"),
		Description:    req.Description,
		DesiredOutcome: req.DesiredOutcome,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionJSON(act))
}

type addArgumentRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (s *Server) handleAddArgument(w http.ResponseWriter, r *http.Request) {
	var req addArgumentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	arg, err := s.engine.AddArgument(r.Context(), userIDFrom(r.Context()), engine.AddArgumentRequest{
		GameID:  r.PathValue("game"),
		Type:    parseArgumentType(req.Type),
		Content: req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toArgumentJSON(arg))
}

type editArgumentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleEditArgument(w http.ResponseWriter, r *http.Request) {
	var req editArgumentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	arg, err := s.engine.EditArgument(r.Context(), userIDFrom(r.Context()), engine.EditArgumentRequest{
		GameID:     r.PathValue("game"),
		ArgumentID: r.PathValue("argument"),
		Content:    req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArgumentJSON(arg))
}

type markArgumentStrongRequest struct {
	IsStrong bool `json:"is_strong"`
}

func (s *Server) handleMarkArgumentStrong(w http.ResponseWriter, r *http.Request) {
	var req markArgumentStrongRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	arg, err := s.engine.MarkArgumentStrong(r.Context(), userIDFrom(r.Context()), engine.MarkArgumentStrongRequest{
		GameID:     r.PathValue("game"),
		ArgumentID: r.PathValue("argument"),
		IsStrong:   req.IsStrong,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toArgumentJSON(arg))
}

func (s *Server) handleCompleteArgumentation(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.CompleteArgumentation(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, argumentationStatusJSON{
		ActionID:      status.ActionID,
		UnitsSignaled: status.UnitsSignaled,
		UnitsRequired: status.UnitsRequired,
		Advanced:      status.Advanced,
	})
}

func (s *Server) handleSkipArgumentation(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SkipArgumentation(r.Context(), userIDFrom(r.Context()), r.PathValue("game")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitVoteRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req submitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.engine.SubmitVote(r.Context(), userIDFrom(r.Context()), engine.SubmitVoteRequest{
		GameID: r.PathValue("game"),
		Type:   parseVoteType(req.Type),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, voteStatusJSON{
		Vote:     toVoteJSON(status.Vote),
		Resolved: status.Resolved,
	})
}

func (s *Server) handleSkipVoting(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SkipVoting(r.Context(), userIDFrom(r.Context()), r.PathValue("game")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	act, err := s.engine.Resolve(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionJSON(act))
}

func (s *Server) handleCompleteArbiterReview(w http.ResponseWriter, r *http.Request) {
	act, err := s.engine.CompleteArbiterReview(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionJSON(act))
}

type submitNarrationRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSubmitNarration(w http.ResponseWriter, r *http.Request) {
	var req submitNarrationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.SubmitNarration(r.Context(), userIDFrom(r.Context()), engine.SubmitNarrationRequest{
		GameID:  r.PathValue("game"),
		Content: req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, narrationResultJSON{
		Narration:      toNarrationJSON(res.Narration),
		RoundCompleted: res.RoundCompleted,
		Phase:          string(res.Phase),
	})
}

type editNarrationRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleEditNarration(w http.ResponseWriter, r *http.Request) {
	var req editNarrationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.engine.EditNarration(r.Context(), userIDFrom(r.Context()), engine.EditNarrationRequest{
		GameID:   r.PathValue("game"),
		ActionID: r.PathValue("action"),
		Content:  req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNarrationJSON(n))
}

func (s *Server) handleSkipToNextAction(w http.ResponseWriter, r *http.Request) {
	rnd, err := s.engine.SkipToNextAction(r.Context(), userIDFrom(r.Context()), r.PathValue("game"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoundJSON(rnd))
}

// parseArgumentType maps wire labels onto domain argument types. Unrecognized
// values pass through so the domain reports them as invalid.
func parseArgumentType(raw string) action.ArgumentType {
	if t, ok := action.NormalizeArgumentTypeLabel(raw); ok {
		return t
	}
	return action.ArgumentType(strings.TrimSpace(raw))
}

// parseVoteType maps wire labels onto domain vote types. Unrecognized values
// pass through so the domain reports them as invalid.
func parseVoteType(raw string) action.VoteType {
	if t, ok := action.NormalizeVoteTypeLabel(raw); ok {
		return t
	}
	return action.VoteType(strings.TrimSpace(raw))
}
