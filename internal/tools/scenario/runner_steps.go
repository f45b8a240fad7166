package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "game":
		return r.runGameStep(ctx, state, step)
	case "player":
		return r.runPlayerStep(ctx, state, step)
	case "persona":
		return r.runPersonaStep(ctx, state, step)
	case "claim_persona":
		return r.runClaimPersonaStep(ctx, state, step)
	case "start":
		return r.runStartStep(ctx, state)
	case "propose":
		return r.runProposeStep(ctx, state, step)
	case "argue":
		return r.runArgueStep(ctx, state, step)
	case "complete_argumentation":
		return r.runCompleteArgumentationStep(ctx, state, step)
	case "skip_argumentation":
		return r.runSkipArgumentationStep(ctx, state, step)
	case "vote":
		return r.runVoteStep(ctx, state, step)
	case "skip_voting":
		return r.runSkipVotingStep(ctx, state, step)
	case "mark_strong":
		return r.runMarkStrongStep(ctx, state, step)
	case "complete_review":
		return r.runCompleteReviewStep(ctx, state, step)
	case "narrate":
		return r.runNarrateStep(ctx, state, step)
	case "skip_round":
		return r.runSkipRoundStep(ctx, state, step)
	case "transition":
		return r.runTransitionStep(ctx, state, step)
	case "advance_hours":
		return r.runAdvanceHoursStep(state, step)
	case "sweep":
		return r.runSweepStep(ctx)
	case "assert_phase":
		return r.runAssertPhaseStep(ctx, state, step)
	case "assert_action_status":
		return r.runAssertActionStatusStep(ctx, state, step)
	case "assert_round":
		return r.runAssertRoundStep(ctx, state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runGameStep(ctx context.Context, state *scenarioState, step Step) error {
	if state.gameID != "" {
		return r.failf("game already created")
	}
	name := optionalString(step.Args, "name", "Scenario Game")
	host := optionalString(step.Args, "host", "Host")

	userID := r.identities.CreateUser(host)
	created, err := r.engine.CreateGame(ctx, userID, gameengine.CreateGameRequest{
		Name:     name,
		HostName: host,
		Settings: settingsFromArgs(step.Args),
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	state.gameID = created.ID
	state.hostName = host
	state.users[host] = userID
	r.logf("game created: id=%s host=%s", state.gameID, host)
	return nil
}

func (r *Runner) runPlayerStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	name := requiredString(step.Args, "name")
	if name == "" {
		return r.failf("player name is required")
	}
	userID := r.identities.CreateUser(name)
	seat, err := r.engine.JoinGame(ctx, userID, state.gameID, name)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	state.users[name] = userID
	r.logf("player joined: name=%s id=%s", name, seat.ID)
	return nil
}

func (r *Runner) runPersonaStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	name := requiredString(step.Args, "name")
	if name == "" {
		return r.failf("persona name is required")
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	created, err := r.engine.CreatePersona(ctx, userID, state.gameID, gameengine.CreatePersonaRequest{
		Name:            name,
		IsNPC:           optionalBool(step.Args, "npc", false),
		ScriptedAction:  optionalString(step.Args, "scripted_action", ""),
		ScriptedOutcome: optionalString(step.Args, "scripted_outcome", ""),
	})
	if err != nil {
		return fmt.Errorf("create persona: %w", err)
	}
	state.personas[name] = created.ID
	r.logf("persona created: name=%s id=%s npc=%v", name, created.ID, created.IsNPC)
	return nil
}

func (r *Runner) runClaimPersonaStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	playerName := requiredString(step.Args, "player")
	if playerName == "" {
		return r.failf("claim_persona player is required")
	}
	personaName := requiredString(step.Args, "persona")
	if personaName == "" {
		return r.failf("claim_persona persona is required")
	}
	userID, err := userIDFor(state, playerName)
	if err != nil {
		return err
	}
	personaID, err := personaIDFor(state, personaName)
	if err != nil {
		return err
	}
	if _, err := r.engine.ClaimPersona(ctx, userID, state.gameID, personaID); err != nil {
		return fmt.Errorf("claim persona: %w", err)
	}
	r.logf("persona claimed: player=%s persona=%s", playerName, personaName)
	return nil
}

func (r *Runner) runStartStep(ctx context.Context, state *scenarioState) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, "")
	if err != nil {
		return err
	}
	started, err := r.engine.StartGame(ctx, userID, state.gameID)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	r.logf("game started: phase=%s", game.PhaseLabel(started.CurrentPhase))
	return nil
}

func (r *Runner) runProposeStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	description := requiredString(step.Args, "description")
	if description == "" {
		return r.failf("propose description is required")
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	proposed, err := r.engine.Propose(ctx, userID, gameengine.ProposeRequest{
		GameID:         state.gameID,
		Description:    description,
		DesiredOutcome: optionalString(step.Args, "outcome", ""),
	})
	if err != nil {
		return fmt.Errorf("propose: %w", err)
	}
	r.logf("action proposed: id=%s seq=%d", proposed.ID, proposed.SequenceNumber)
	return nil
}

func (r *Runner) runArgueStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	content := requiredString(step.Args, "content")
	if content == "" {
		return r.failf("argue content is required")
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	argued, err := r.engine.AddArgument(ctx, userID, gameengine.AddArgumentRequest{
		GameID:  state.gameID,
		Type:    parseArgumentType(optionalString(step.Args, "type", "for")),
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("add argument: %w", err)
	}
	state.arguments = append(state.arguments, argued.ID)
	r.logf("argument added: id=%s type=%s", argued.ID, argued.Type)
	return nil
}

func (r *Runner) runCompleteArgumentationStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	status, err := r.engine.CompleteArgumentation(ctx, userID, state.gameID)
	if err != nil {
		return fmt.Errorf("complete argumentation: %w", err)
	}
	r.logf("argumentation signal: advanced=%v", status.Advanced)
	return nil
}

func (r *Runner) runSkipArgumentationStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	if err := r.engine.SkipArgumentation(ctx, userID, state.gameID); err != nil {
		return fmt.Errorf("skip argumentation: %w", err)
	}
	r.logf("argumentation skipped")
	return nil
}

func (r *Runner) runVoteStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	vote := requiredString(step.Args, "vote")
	if vote == "" {
		return r.failf("vote value is required")
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	status, err := r.engine.SubmitVote(ctx, userID, gameengine.SubmitVoteRequest{
		GameID: state.gameID,
		Type:   parseVoteType(vote),
	})
	if err != nil {
		return fmt.Errorf("submit vote: %w", err)
	}
	r.logf("vote recorded: type=%s resolved=%v", status.Vote.Type, status.Resolved)
	return nil
}

func (r *Runner) runSkipVotingStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	if err := r.engine.SkipVoting(ctx, userID, state.gameID); err != nil {
		return fmt.Errorf("skip voting: %w", err)
	}
	r.logf("voting skipped")
	return nil
}

func (r *Runner) runMarkStrongStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	if len(state.arguments) == 0 {
		return r.failf("mark_strong requires a prior argue step")
	}
	index := optionalInt(step.Args, "argument", len(state.arguments))
	if index < 1 || index > len(state.arguments) {
		return r.failf("mark_strong argument %d is out of range", index)
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	marked, err := r.engine.MarkArgumentStrong(ctx, userID, gameengine.MarkArgumentStrongRequest{
		GameID:     state.gameID,
		ArgumentID: state.arguments[index-1],
		IsStrong:   optionalBool(step.Args, "strong", true),
	})
	if err != nil {
		return fmt.Errorf("mark argument strong: %w", err)
	}
	r.logf("argument marked: id=%s strong=%v", marked.ID, marked.IsStrong)
	return nil
}

func (r *Runner) runCompleteReviewStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	resolved, err := r.engine.CompleteArbiterReview(ctx, userID, state.gameID)
	if err != nil {
		return fmt.Errorf("complete arbiter review: %w", err)
	}
	r.logf("arbiter review done: action=%s status=%s", resolved.ID, resolved.Status)
	return nil
}

func (r *Runner) runNarrateStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	content := requiredString(step.Args, "content")
	if content == "" {
		return r.failf("narrate content is required")
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	result, err := r.engine.SubmitNarration(ctx, userID, gameengine.SubmitNarrationRequest{
		GameID:  state.gameID,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("submit narration: %w", err)
	}
	r.logf("narration recorded: round_completed=%v phase=%s", result.RoundCompleted, game.PhaseLabel(result.Phase))
	return nil
}

func (r *Runner) runSkipRoundStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	next, err := r.engine.SkipToNextAction(ctx, userID, state.gameID)
	if err != nil {
		return fmt.Errorf("skip round: %w", err)
	}
	r.logf("round force-completed: next_round=%d", next.RoundNumber)
	return nil
}

func (r *Runner) runTransitionStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	label := requiredString(step.Args, "phase")
	if label == "" {
		return r.failf("transition phase is required")
	}
	phase, ok := game.NormalizePhaseLabel(label)
	if !ok {
		return r.failf("unknown phase %q", label)
	}
	userID, err := userIDFor(state, optionalString(step.Args, "by", ""))
	if err != nil {
		return err
	}
	transitioned, err := r.engine.TransitionPhase(ctx, userID, state.gameID, phase)
	if err != nil {
		return fmt.Errorf("transition phase: %w", err)
	}
	r.logf("phase forced: %s", game.PhaseLabel(transitioned.CurrentPhase))
	return nil
}

func (r *Runner) runAdvanceHoursStep(state *scenarioState, step Step) error {
	hours, ok := readInt(step.Args, "hours")
	if !ok || hours <= 0 {
		return r.failf("advance_hours requires a positive hours value")
	}
	now := r.clock.Advance(time.Duration(hours) * time.Hour)
	r.logf("clock advanced: +%dh now=%s", hours, now.UTC().Format(time.RFC3339))
	return nil
}

func (r *Runner) runSweepStep(ctx context.Context) error {
	report, err := r.engine.SweepTimeouts(ctx)
	if err != nil {
		return fmt.Errorf("sweep timeouts: %w", err)
	}
	r.logf("sweep done: examined=%d processed=%d failures=%d", report.GamesExamined, report.TimeoutsProcessed, report.Failures)
	return nil
}

func (r *Runner) runAssertPhaseStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	label := requiredString(step.Args, "phase")
	if label == "" {
		return r.failf("assert_phase phase is required")
	}
	want, ok := game.NormalizePhaseLabel(label)
	if !ok {
		return r.failf("unknown phase %q", label)
	}
	current, err := r.store.GetGame(ctx, state.gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if current.CurrentPhase != want {
		return r.assertf("phase = %s, want %s", game.PhaseLabel(current.CurrentPhase), game.PhaseLabel(want))
	}
	return nil
}

func (r *Runner) runAssertActionStatusStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	want := requiredString(step.Args, "status")
	if want == "" {
		return r.failf("assert_action_status status is required")
	}
	current, err := r.store.GetGame(ctx, state.gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if current.CurrentActionID == "" {
		return r.assertf("no action in flight, want status %s", strings.ToLower(want))
	}
	act, err := r.store.GetAction(ctx, current.CurrentActionID)
	if err != nil {
		return fmt.Errorf("get action: %w", err)
	}
	if !strings.EqualFold(string(act.Status), want) {
		return r.assertf("action status = %s, want %s", act.Status, strings.ToLower(want))
	}
	return nil
}

func (r *Runner) runAssertRoundStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(state); err != nil {
		return err
	}
	want, ok := readInt(step.Args, "number")
	if !ok {
		return r.failf("assert_round requires a number")
	}
	current, err := r.store.GetGame(ctx, state.gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if current.CurrentRoundID == "" {
		return r.assertf("no active round, want round %d", want)
	}
	rnd, err := r.store.GetRound(ctx, current.CurrentRoundID)
	if err != nil {
		return fmt.Errorf("get round: %w", err)
	}
	if rnd.RoundNumber != want {
		return r.assertf("round = %d, want %d", rnd.RoundNumber, want)
	}
	return nil
}
