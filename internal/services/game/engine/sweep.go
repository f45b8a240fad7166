package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/unit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit"
	"github.com/louisbranch/warroom/internal/services/game/observability/audit/events"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// placeholderArgument is the content synthesized for units that never argued
// before an argumentation deadline.
const placeholderArgument = "No argument submitted before the deadline"

// SweepReport summarizes one timeout sweep.
type SweepReport struct {
	GamesExamined     int
	TimeoutsProcessed int
	Failures          int
}

// SweepTimeouts walks every active game sitting in a timed phase and handles
// those whose phase has outlived its configured timeout: argumentation and
// voting are force-advanced with synthesized input, proposal and narration
// only alert the host. One game's failure never aborts the rest of the
// sweep.
func (e *Engine) SweepTimeouts(ctx context.Context) (SweepReport, error) {
	games, err := e.store.ListActiveGamesByPhase(ctx,
		game.PhaseProposal,
		game.PhaseArgumentation,
		game.PhaseVoting,
		game.PhaseNarration,
	)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list games for timeout sweep: %w", err)
	}

	report := SweepReport{GamesExamined: len(games)}
	for _, g := range games {
		processed, err := e.sweepGame(ctx, g.ID)
		if err != nil {
			log.Printf("timeout sweep for game %s: %v", g.ID, err)
			report.Failures++
			continue
		}
		if processed {
			report.TimeoutsProcessed++
		}
	}
	return report, nil
}

// sweepGame re-reads one game and handles its phase timeout if it is still
// due. The re-read keeps the sweep honest against human actions that landed
// after the listing.
func (e *Engine) sweepGame(ctx context.Context, gameID string) (bool, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	if g.Status != game.StatusActive || g.PhaseStartedAt.IsZero() {
		return false, nil
	}
	timeout, ok := game.TimeoutForPhase(g.Settings, g.CurrentPhase)
	if !ok {
		return false, nil
	}
	if e.now().Sub(g.PhaseStartedAt) <= timeout {
		return false, nil
	}

	switch g.CurrentPhase {
	case game.PhaseProposal:
		return true, e.handleProposalTimeout(ctx, g)
	case game.PhaseArgumentation:
		return true, e.handleArgumentationTimeout(ctx, g)
	case game.PhaseVoting:
		return true, e.handleVotingTimeout(ctx, g)
	case game.PhaseNarration:
		return true, e.handleNarrationTimeout(ctx, g)
	default:
		return false, nil
	}
}

// handleProposalTimeout retries the NPC auto-proposal first, which repairs an
// earlier missed trigger. If the game still sits in proposal afterwards, a
// human proposal is what's missing and only the host can chase that.
func (e *Engine) handleProposalTimeout(ctx context.Context, g game.Game) error {
	if err := e.npcAutoPropose(ctx, g.ID); err != nil {
		return err
	}
	fresh, err := e.store.GetGame(ctx, g.ID)
	if err != nil {
		return err
	}
	if fresh.CurrentPhase != game.PhaseProposal {
		return nil
	}

	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   g.CurrentRoundID,
		EventType: events.ProposalTimeout,
		CreatedAt: e.now(),
	})
	e.notify(ctx, NotifyHostActionRequired, g.ID, map[string]string{
		"phase": game.PhaseLabel(game.PhaseProposal),
	})
	return nil
}

// handleArgumentationTimeout synthesizes a placeholder FOR argument for every
// acting unit that never argued, then advances the action to voting.
func (e *Engine) handleArgumentationTimeout(ctx context.Context, g game.Game) error {
	a, err := e.currentAction(ctx, g)
	if err != nil {
		return err
	}
	if a.Status != action.StatusArguing {
		// A human advance landed after the deadline check. Repair the game
		// row if it lags and move on.
		_, err := e.advanceToVoting(ctx, g, a, false, "")
		return err
	}

	players, err := e.store.ListPlayersByGame(ctx, g.ID)
	if err != nil {
		return err
	}
	args, err := e.store.ListArgumentsByAction(ctx, a.ID)
	if err != nil {
		return err
	}
	arguedBy := make([]string, 0, len(args))
	for _, arg := range args {
		arguedBy = append(arguedBy, arg.PlayerID)
	}

	uncovered := unit.Uncovered(unit.ActingUnits(players), arguedBy)
	autoArgued := make([]string, 0, len(uncovered))
	sequence := len(args)
	for _, u := range uncovered {
		sequence++
		arg, err := action.CreateArgument(action.CreateArgumentInput{
			ActionID: a.ID,
			PlayerID: u.LeadID,
			Type:     action.ArgumentTypeFor,
			Content:  placeholderArgument,
			Sequence: sequence,
		}, e.clock, e.idGenerator)
		if err != nil {
			return err
		}
		if err := e.store.CreateArgument(ctx, arg); err != nil {
			return err
		}
		autoArgued = append(autoArgued, u.Key)
	}

	if _, err := e.advanceToVoting(ctx, g, a, false, ""); err != nil {
		return err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		EventType: events.ArgumentationTimeout,
		PayloadJSON: audit.Payload(map[string]any{
			"auto_argued_units": autoArgued,
		}),
		CreatedAt: e.now(),
	})
	e.notify(ctx, NotifyPhaseTimeout, g.ID, map[string]string{
		"phase": game.PhaseLabel(game.PhaseArgumentation),
	})
	return nil
}

// handleVotingTimeout synthesizes UNCERTAIN wasSkipped ballots for every
// acting unit that never voted, then resolves the action.
func (e *Engine) handleVotingTimeout(ctx context.Context, g game.Game) error {
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
	if err := e.resolveCurrentAction(ctx, g, a, true, ""); err != nil {
		return err
	}
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   a.RoundID,
		ActionID:  a.ID,
		EventType: events.VotingTimeout,
		PayloadJSON: audit.Payload(map[string]any{
			"synthesized_votes": synthesized,
		}),
		CreatedAt: e.now(),
	})
	e.notify(ctx, NotifyPhaseTimeout, g.ID, map[string]string{
		"phase": game.PhaseLabel(game.PhaseVoting),
	})
	return nil
}

// handleNarrationTimeout alerts the host. There is no safe narration to
// synthesize on a player's behalf.
func (e *Engine) handleNarrationTimeout(ctx context.Context, g game.Game) error {
	e.emitAudit(ctx, storage.AuditEvent{
		GameID:    g.ID,
		RoundID:   g.CurrentRoundID,
		ActionID:  g.CurrentActionID,
		EventType: events.NarrationTimeout,
		CreatedAt: e.now(),
	})
	e.notify(ctx, NotifyHostActionRequired, g.ID, map[string]string{
		"phase": game.PhaseLabel(game.PhaseNarration),
	})
	return nil
}
