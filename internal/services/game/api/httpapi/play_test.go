package httpapi

import (
	"net/http"
	"testing"
)

func (h *apiHarness) propose(t *testing.T, userID, gameID, description string) actionJSON {
	t.Helper()
	rec := h.do(t, userID, http.MethodPost, "/v1/games/"+gameID+"/actions", map[string]any{
		"description":     description,
		"desired_outcome": "Control of the strait",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST actions status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var a actionJSON
	decodeBody(t, rec, &a)
	return a
}

func (h *apiHarness) completeArguing(t *testing.T, userID, gameID string) argumentationStatusJSON {
	t.Helper()
	rec := h.do(t, userID, http.MethodPost, "/v1/games/"+gameID+"/argumentation/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete argumentation status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var status argumentationStatusJSON
	decodeBody(t, rec, &status)
	return status
}

func (h *apiHarness) vote(t *testing.T, userID, gameID, voteType string) voteStatusJSON {
	t.Helper()
	rec := h.do(t, userID, http.MethodPost, "/v1/games/"+gameID+"/votes", map[string]any{"type": voteType})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST votes status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var status voteStatusJSON
	decodeBody(t, rec, &status)
	return status
}

// playAction runs one full action cycle over HTTP: the proposer files the
// action, both players finish arguing and vote LIKELY_SUCCESS, and the
// proposer narrates the outcome.
func (h *apiHarness) playAction(t *testing.T, gameID, proposerUser, otherUser, description string) narrationResultJSON {
	t.Helper()
	h.propose(t, proposerUser, gameID, description)
	h.completeArguing(t, proposerUser, gameID)
	h.completeArguing(t, otherUser, gameID)
	h.vote(t, proposerUser, gameID, "LIKELY_SUCCESS")
	h.vote(t, otherUser, gameID, "LIKELY_SUCCESS")

	rec := h.do(t, proposerUser, http.MethodPost, "/v1/games/"+gameID+"/narration", map[string]any{
		"content": "The operation unfolds as planned.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST narration status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var result narrationResultJSON
	decodeBody(t, rec, &result)
	return result
}

func TestFullActionCycle(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)

	a := h.propose(t, "guest-user", g.ID, "Blockade the northern approach")
	if a.Status != "arguing" {
		t.Fatalf("action status = %q, want arguing", a.Status)
	}

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/arguments", map[string]any{
		"type":    "AGAINST",
		"content": "The fleet cannot hold the line in winter storms.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST arguments status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var arg argumentJSON
	decodeBody(t, rec, &arg)
	if arg.Type != "against" {
		t.Errorf("argument type = %q, want against", arg.Type)
	}

	first := h.completeArguing(t, "guest-user", g.ID)
	if first.Advanced {
		t.Fatal("argumentation advanced after one unit, want both required")
	}
	second := h.completeArguing(t, "host-user", g.ID)
	if !second.Advanced {
		t.Fatal("argumentation did not advance after every unit signaled")
	}

	firstVote := h.vote(t, "guest-user", g.ID, "LIKELY_SUCCESS")
	if firstVote.Resolved {
		t.Fatal("action resolved after one vote, want threshold of two")
	}
	lastVote := h.vote(t, "host-user", g.ID, "likely_success")
	if !lastVote.Resolved {
		t.Fatal("action did not resolve once every unit voted")
	}

	rec = h.do(t, "guest-user", http.MethodPost, "/v1/games/"+g.ID+"/narration", map[string]any{
		"content": "The blockade holds through the first week.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST narration status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var result narrationResultJSON
	decodeBody(t, rec, &result)
	if result.RoundCompleted {
		t.Error("round completed after one of two actions, want false")
	}
	if result.Phase != "proposal" {
		t.Errorf("phase after narration = %q, want proposal", result.Phase)
	}
}

func TestVoteInvalidTypeRejected(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Blockade the northern approach")
	h.completeArguing(t, "guest-user", g.ID)
	h.completeArguing(t, "host-user", g.ID)

	rec := h.do(t, "guest-user", http.MethodPost, "/v1/games/"+g.ID+"/votes", map[string]any{"type": "MAYBE"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if got := decodeStatus(t, rec).reason(); got != "VOTE_INVALID_TYPE" {
		t.Fatalf("reason = %q, want VOTE_INVALID_TYPE", got)
	}
}

func TestArgumentInvalidTypeRejected(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Blockade the northern approach")

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/arguments", map[string]any{
		"type":    "SHOUTING",
		"content": "No.",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if got := decodeStatus(t, rec).reason(); got != "ARGUMENT_INVALID_TYPE" {
		t.Fatalf("reason = %q, want ARGUMENT_INVALID_TYPE", got)
	}
}

func TestProposeOutsideProposalPhaseRejected(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Blockade the northern approach")

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/actions", map[string]any{
		"description": "Counter-blockade",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if got := decodeStatus(t, rec).reason(); got != "GAME_PHASE_DISALLOWS_OPERATION" {
		t.Fatalf("reason = %q, want GAME_PHASE_DISALLOWS_OPERATION", got)
	}
}

func TestEditActionByInitiator(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "guest-user", g.ID, "Blockade the northern approach")

	rec := h.do(t, "guest-user", http.MethodPatch, "/v1/games/"+g.ID+"/actions/"+a.ID, map[string]any{
		"description":     "Blockade the southern approach instead",
		"desired_outcome": "Control of the strait",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH action status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var edited actionJSON
	decodeBody(t, rec, &edited)
	if edited.Description != "Blockade the southern approach instead" {
		t.Errorf("description = %q, want the edited text", edited.Description)
	}
}

func TestEditActionByOtherPlayerDenied(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	a := h.propose(t, "guest-user", g.ID, "Blockade the northern approach")

	rec := h.do(t, "host-user", http.MethodPatch, "/v1/games/"+g.ID+"/actions/"+a.ID, map[string]any{
		"description": "Stolen plan",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}
}

func TestSkipArgumentationHostOnly(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Blockade the northern approach")

	rec := h.do(t, "guest-user", http.MethodPost, "/v1/games/"+g.ID+"/argumentation/skip", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("guest skip status = %d, want %d: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	rec = h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/argumentation/skip", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("host skip status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	var snap snapshotJSON
	recGet := h.do(t, "host-user", http.MethodGet, "/v1/games/"+g.ID, nil)
	decodeBody(t, recGet, &snap)
	if snap.Game.CurrentPhase != "voting" {
		t.Errorf("phase after skip = %q, want voting", snap.Game.CurrentPhase)
	}
	if snap.Action == nil || snap.Action.Status != "voting" {
		t.Errorf("action after skip = %+v, want status voting", snap.Action)
	}
}

func TestSkipVotingResolvesWithoutBallots(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.propose(t, "guest-user", g.ID, "Blockade the northern approach")
	h.completeArguing(t, "guest-user", g.ID)
	h.completeArguing(t, "host-user", g.ID)

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/votes/skip", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("skip voting status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	var snap snapshotJSON
	recGet := h.do(t, "host-user", http.MethodGet, "/v1/games/"+g.ID, nil)
	decodeBody(t, recGet, &snap)
	if snap.Game.CurrentPhase != "narration" {
		t.Errorf("phase after vote skip = %q, want narration", snap.Game.CurrentPhase)
	}
	if snap.Action == nil || snap.Action.Status != "resolved" {
		t.Errorf("action after vote skip = %+v, want status resolved", snap.Action)
	}
}

func TestEditNarrationAfterSubmit(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)

	a := h.propose(t, "guest-user", g.ID, "Blockade the northern approach")
	h.completeArguing(t, "guest-user", g.ID)
	h.completeArguing(t, "host-user", g.ID)
	h.vote(t, "guest-user", g.ID, "LIKELY_SUCCESS")
	h.vote(t, "host-user", g.ID, "LIKELY_SUCCESS")

	rec := h.do(t, "guest-user", http.MethodPost, "/v1/games/"+g.ID+"/narration", map[string]any{
		"content": "The blockade holds.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST narration status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = h.do(t, "guest-user", http.MethodPatch, "/v1/games/"+g.ID+"/actions/"+a.ID+"/narration", map[string]any{
		"content": "The blockade holds, barely.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH narration status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var n narrationJSON
	decodeBody(t, rec, &n)
	if n.Content != "The blockade holds, barely." {
		t.Errorf("narration content = %q, want the edited text", n.Content)
	}
}

func TestNextActionForceCompletesRound(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)
	h.playAction(t, g.ID, "guest-user", "host-user", "Blockade the northern approach")

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/next-action", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next-action status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var next roundJSON
	decodeBody(t, rec, &next)
	if next.RoundNumber != 2 {
		t.Errorf("round_number = %d, want 2 after forcing round 1 complete", next.RoundNumber)
	}
}

func TestNextActionWithNoActionsRejected(t *testing.T) {
	h := newTestServer(t)
	g := h.twoPlayerGame(t)

	rec := h.do(t, "host-user", http.MethodPost, "/v1/games/"+g.ID+"/next-action", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if got := decodeStatus(t, rec).reason(); got != "ROUND_NO_ACTIONS" {
		t.Fatalf("reason = %q, want ROUND_NO_ACTIONS", got)
	}
}
