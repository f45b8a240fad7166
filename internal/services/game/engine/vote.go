package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/resolution"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// SubmitVoteRequest casts the caller's prediction on the action in flight.
type SubmitVoteRequest struct {
	GameID string
	Type   action.VoteType
}

// VoteStatus reports the accepted vote and whether it tipped resolution.
type VoteStatus struct {
	Vote action.Vote
	// Resolved is true when this vote reached the acting-unit threshold and
	// the action resolved as a consequence.
	Resolved bool
}

// SubmitVote records the caller's ballot. Under one_per_persona the first
// member to vote speaks for the whole persona. Once the acting-unit threshold
// is met the action resolves immediately, except under the arbiter method,
// where resolution waits for CompleteArbiterReview.
func (e *Engine) SubmitVote(ctx context.Context, userID string, req SubmitVoteRequest) (VoteStatus, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return VoteStatus{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return VoteStatus{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return VoteStatus{}, err
	}
	if err := requirePhase(g, game.PhaseVoting); err != nil {
		return VoteStatus{}, err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return VoteStatus{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusVoting); err != nil {
		return VoteStatus{}, err
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return VoteStatus{}, err
	}
	votes, err := e.store.ListVotesByAction(ctx, a.ID)
	if err != nil {
		return VoteStatus{}, err
	}
	for _, v := range votes {
		if v.PlayerID == seat.ID {
			return VoteStatus{}, apperrors.New(apperrors.CodeVoteExists, "you have already voted on this action")
		}
	}
	if g.Settings.VotingMode == game.VotingModeOnePerPersona && seat.PersonaID != "" {
		members := map[string]bool{}
		for _, memberID := range unit.PersonaMemberIDs(players, seat.PersonaID) {
			members[memberID] = true
		}
		for _, v := range votes {
			if members[v.PlayerID] {
				return VoteStatus{}, apperrors.New(apperrors.CodeVotePersonaCast, "your persona has already voted on this action")
			}
		}
	}

	strategy, err := e.resolutions.Get(g.Settings.ResolutionMethod)
	if err != nil {
		return VoteStatus{}, err
	}
	weights := strategy.MapVoteToTokens(req.Type)
	v, err := action.CreateVote(action.CreateVoteInput{
		ActionID:      a.ID,
		PlayerID:      seat.ID,
		Type:          req.Type,
		SuccessTokens: weights.Success,
		FailureTokens: weights.Failure,
	}, e.clock, e.idGenerator)
	if err != nil {
		return VoteStatus{}, err
	}
	if err := e.store.CreateVote(ctx, v); err != nil {
		if errors.Is(err, storage.ErrDuplicateVote) {
			return VoteStatus{}, apperrors.New(apperrors.CodeVoteExists, "you have already voted on this action")
		}
		return VoteStatus{}, err
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   seat.ID,
		EventType: events.VoteSubmitted,
		PayloadJSON: audit.Payload(map[string]any{
			"vote_type": action.VoteTypeLabel(v.Type),
		}),
		CreatedAt: v.CreatedAt,
	})

	status := VoteStatus{Vote: v}
	if g.Settings.ResolutionMethod == resolution.MethodArbiter {
		return status, nil
	}
	votes = append(votes, v)
	if !votingComplete(g.Settings.VotingMode, unit.ActingUnits(players), votes) {
		return status, nil
	}
	if err := e.resolveCurrentAction(ctx, g, a, false, seat.ID); err != nil {
		return status, err
	}
	status.Resolved = true
	return status, nil
}

// votingComplete reports whether the cast votes cover every acting unit.
// Under each_member a unit counts once all of its members have voted; under
// one_per_persona a single member's ballot covers the unit.
func votingComplete(mode game.VotingMode, units []unit.Unit, votes []action.Vote) bool {
	votedBy := map[string]bool{}
	for _, v := range votes {
		votedBy[v.PlayerID] = true
	}
	for _, u := range units {
		if mode == game.VotingModeOnePerPersona {
			covered := false
			for _, memberID := range u.MemberIDs {
				if votedBy[memberID] {
					covered = true
					break
				}
			}
			if !covered {
				return false
			}
			continue
		}
		for _, memberID := range u.MemberIDs {
			if !votedBy[memberID] {
				return false
			}
		}
	}
	return true
}

// Resolve runs resolution explicitly. The threshold path in SubmitVote covers
// the normal case; this exists to restart a resolution that died between the
// vote commit and the narration handoff.
func (e *Engine) Resolve(ctx context.Context, userID, gameID string) (action.Action, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return action.Action{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Action{}, err
	}
	seat, err := e.activeSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Action{}, err
	}
	if g.CurrentPhase != game.PhaseVoting && g.CurrentPhase != game.PhaseResolution {
		return action.Action{}, requirePhase(g, game.PhaseVoting)
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return action.Action{}, err
	}
	if a.Resolved() {
		return action.Action{}, apperrors.New(apperrors.CodeActionAlreadyResolved, "action has already been resolved")
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return action.Action{}, err
	}
	votes, err := e.store.ListVotesByAction(ctx, a.ID)
	if err != nil {
		return action.Action{}, err
	}
	if !votingComplete(g.Settings.VotingMode, unit.ActingUnits(players), votes) {
		return action.Action{}, apperrors.New(apperrors.CodeVoteThresholdNotMet, "votes have not reached the acting-unit threshold")
	}

	if err := e.resolveCurrentAction(ctx, g, a, false, seat.ID); err != nil {
		return action.Action{}, err
	}
	return e.store.GetAction(ctx, a.ID)
}

// SkipVoting force-resolves the current action. Host only. Every acting unit
// that has not voted gets a synthesized UNCERTAIN ballot flagged wasSkipped,
// then resolution runs as if the threshold had been met.
func (e *Engine) SkipVoting(ctx context.Context, userID, gameID string) error {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return err
	}
	host, err := e.hostSeat(ctx, g.ID, userID)
	if err != nil {
		return err
	}
	if err := requirePhase(g, game.PhaseVoting); err != nil {
		return err
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return err
	}
	if err := action.ValidateStatus(a.Status, action.StatusVoting); err != nil {
		return err
	}

	synthesized, err := e.synthesizeMissingVotes(ctx, g, a)
	if err != nil {
		return err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   host.ID,
		EventType: events.VotingSkipped,
		PayloadJSON: audit.Payload(map[string]any{
			"synthesized_votes": synthesized,
		}),
		CreatedAt: e.now(),
	})
	return e.resolveCurrentAction(ctx, g, a, true, host.ID)
}

// synthesizeMissingVotes files an UNCERTAIN wasSkipped ballot for every acting
// unit the cast votes do not cover yet: one per unvoted member under
// each_member, one by the unit lead under one_per_persona. Returns how many
// ballots it created.
func (e *Engine) synthesizeMissingVotes(ctx context.Context, g game.Game, a action.Action) (int, error) {
	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return 0, err
	}
	votes, err := e.store.ListVotesByAction(ctx, a.ID)
	if err != nil {
		return 0, err
	}
	votedBy := map[string]bool{}
	for _, v := range votes {
		votedBy[v.PlayerID] = true
	}

	strategy, err := e.resolutions.Get(g.Settings.ResolutionMethod)
	if err != nil {
		return 0, err
	}
	weights := strategy.MapVoteToTokens(action.VoteTypeUncertain)

	var voterIDs []string
	for _, u := range unit.ActingUnits(players) {
		if g.Settings.VotingMode == game.VotingModeOnePerPersona {
			covered := false
			for _, memberID := range u.MemberIDs {
				if votedBy[memberID] {
					covered = true
					break
				}
			}
			if !covered {
				voterIDs = append(voterIDs, u.LeadID)
			}
			continue
		}
		for _, memberID := range u.MemberIDs {
			if !votedBy[memberID] {
				voterIDs = append(voterIDs, memberID)
			}
		}
	}

	synthesized := 0
	for _, voterID := range voterIDs {
		v, err := action.CreateVote(action.CreateVoteInput{
			ActionID:      a.ID,
			PlayerID:      voterID,
			Type:          action.VoteTypeUncertain,
			SuccessTokens: weights.Success,
			FailureTokens: weights.Failure,
			WasSkipped:    true,
		}, e.clock, e.idGenerator)
		if err != nil {
			return synthesized, err
		}
		if err := e.store.CreateVote(ctx, v); err != nil {
			// A real ballot landed between the listing and this write.
			if errors.Is(err, storage.ErrDuplicateVote) {
				continue
			}
			return synthesized, err
		}
		synthesized++
	}
	return synthesized, nil
}

// resolveCurrentAction runs the full resolution sequence: game into
// RESOLUTION, strategy outcome persisted on the action, NPC momentum applied,
// game into NARRATION. Every step tolerates a racing resolver; only the
// writer that lands the outcome applies momentum and emits the audit event.
func (e *Engine) resolveCurrentAction(ctx context.Context, g game.Game, a action.Action, votingSkipped bool, actorID string) error {
	if g.CurrentPhase == game.PhaseVoting {
		err := e.commitPhase(ctx, storage.PhaseTransition{
			GameID:    g.ID,
			FromPhase: game.PhaseVoting,
			ToPhase:   game.PhaseResolution,
			At:        e.now(),
		}, actorID)
		if err != nil && !errors.Is(err, storage.ErrStalePhase) {
			return err
		}
	}

	strategy, err := e.resolutions.Get(g.Settings.ResolutionMethod)
	if err != nil {
		return err
	}
	votes, err := e.store.ListVotesByAction(ctx, a.ID)
	if err != nil {
		return err
	}
	args, err := e.store.ListArgumentsByAction(ctx, a.ID)
	if err != nil {
		return err
	}
	seed, err := e.seedSource()
	if err != nil {
		return fmt.Errorf("draw resolution seed: %w", err)
	}
	outcome, err := strategy.Resolve(resolution.Input{Votes: votes, Arguments: args, Seed: seed})
	if err != nil {
		return err
	}

	resolvedAt := e.now()
	err = e.store.ResolveAction(ctx, a.ID, storage.ActionResolution{
		Method:        strategy.ID(),
		ResultType:    string(outcome.ResultType),
		ResultValue:   outcome.ResultValue,
		Data:          outcome.Data,
		VotingSkipped: votingSkipped,
		ResolvedAt:    resolvedAt,
	})
	won := err == nil
	if err != nil && !errors.Is(err, storage.ErrStaleAction) {
		return err
	}
	if won {
		initiator, err := e.store.GetPlayer(ctx, g.ID, a.InitiatorID)
		if err != nil {
			return err
		}
		if initiator.IsNPC {
			if err := e.store.AdjustNPCMomentum(ctx, g.ID, outcome.ResultValue, resolvedAt); err != nil {
				return err
			}
		}
	}

	err = e.commitPhase(ctx, storage.PhaseTransition{
		GameID:    g.ID,
		FromPhase: game.PhaseResolution,
		ToPhase:   game.PhaseNarration,
		At:        e.now(),
	}, actorID)
	if err != nil && !errors.Is(err, storage.ErrStalePhase) {
		return err
	}
	if !won {
		return nil
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   actorID,
		EventType: events.ActionResolved,
		PayloadJSON: audit.Payload(map[string]any{
			"method":       strategy.ID(),
			"result_type":  resolution.ResultLabel(outcome.ResultType),
			"result_value": outcome.ResultValue,
		}),
		CreatedAt: resolvedAt,
	})
	e.notify(ctx, NotifyActionResolved, g.ID, map[string]string{
		"action_id": a.ID,
		"result":    resolution.ResultLabel(outcome.ResultType),
	})
	return nil
}

// MarkArgumentStrongRequest flags or unflags an argument for arbiter tallies.
type MarkArgumentStrongRequest struct {
	GameID     string
	ArgumentID string
	IsStrong   bool
}

// MarkArgumentStrong sets an argument's strength flag. Arbiter games only,
// arbiter role only, and only while the argument's action awaits review.
func (e *Engine) MarkArgumentStrong(ctx context.Context, userID string, req MarkArgumentStrongRequest) (action.Argument, error) {
	g, err := e.loadGame(ctx, req.GameID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Argument{}, err
	}
	if g.Settings.ResolutionMethod != resolution.MethodArbiter {
		return action.Argument{}, apperrors.New(apperrors.CodeResolutionNotReviewable, "this game does not use arbiter resolution")
	}
	arbiter, err := e.arbiterSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Argument{}, err
	}

	arg, err := e.loadArgument(ctx, g.ID, req.ArgumentID)
	if err != nil {
		return action.Argument{}, err
	}
	a, err := e.store.GetAction(ctx, arg.ActionID)
	if err != nil {
		return action.Argument{}, err
	}
	if err := action.ValidateStatus(a.Status, action.StatusVoting); err != nil {
		return action.Argument{}, err
	}

	updatedAt := e.now()
	if err := e.store.SetArgumentStrength(ctx, arg.ID, req.IsStrong, updatedAt); err != nil {
		return action.Argument{}, err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   arbiter.ID,
		EventType: events.ArgumentMarkedStrong,
		PayloadJSON: audit.Payload(map[string]any{
			"argument_id": arg.ID,
			"is_strong":   req.IsStrong,
		}),
		CreatedAt: updatedAt,
	})
	return e.store.GetArgument(ctx, arg.ID)
}

// CompleteArbiterReview closes the arbiter's review and resolves the current
// action from the strong-argument tallies. Votes are ignored.
func (e *Engine) CompleteArbiterReview(ctx context.Context, userID, gameID string) (action.Action, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return action.Action{}, err
	}
	if err := game.ValidateOperation(g.Status, game.OpPlay); err != nil {
		return action.Action{}, err
	}
	if g.Settings.ResolutionMethod != resolution.MethodArbiter {
		return action.Action{}, apperrors.New(apperrors.CodeResolutionNotReviewable, "this game does not use arbiter resolution")
	}
	arbiter, err := e.arbiterSeat(ctx, g.ID, userID)
	if err != nil {
		return action.Action{}, err
	}
	if g.CurrentPhase != game.PhaseVoting && g.CurrentPhase != game.PhaseResolution {
		return action.Action{}, requirePhase(g, game.PhaseVoting)
	}
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return action.Action{}, err
	}
	if a.Resolved() {
		return action.Action{}, apperrors.New(apperrors.CodeActionAlreadyResolved, "action has already been resolved")
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		ActorID:   arbiter.ID,
		EventType: events.ArbiterReviewCompleted,
		CreatedAt: e.now(),
	})
	if err := e.resolveCurrentAction(ctx, g, a, false, arbiter.ID); err != nil {
		return action.Action{}, err
	}
	return e.store.GetAction(ctx, a.ID)
}
