package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	"github.com/louisbranch/warroom/internal/services/game/domain/persona"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrDuplicateProposal indicates an acting unit already holds a proposed
// action in the round. The (round, unit) uniqueness constraint is the
// idempotency guarantee for concurrent proposals.
var ErrDuplicateProposal = apperrors.New(apperrors.CodeActionProposalExists, "acting unit already proposed an action this round")

// ErrDuplicateVote indicates the player already voted on the action.
// Votes are never silently overwritten.
var ErrDuplicateVote = apperrors.New(apperrors.CodeVoteExists, "player already voted on this action")

// ErrDuplicateNarration indicates the action already carries a narration.
var ErrDuplicateNarration = apperrors.New(apperrors.CodeNarrationExists, "action already has a narration")

// ErrPlayerExists indicates the user already holds a seat in the game.
var ErrPlayerExists = apperrors.New(apperrors.CodePlayerAlreadyJoined, "user already holds a seat in this game")

// ErrStalePhase indicates a conditional phase transition found the game in a
// different phase than the caller read. The losing side of a concurrent
// transition sees this instead of clobbering the winner.
var ErrStalePhase = apperrors.New(apperrors.CodeConflict, "game phase changed concurrently")

// ErrStaleAction indicates a conditional action update found the action in a
// different lifecycle status than the caller read. Guards double resolution.
var ErrStaleAction = apperrors.New(apperrors.CodeConflict, "action state changed concurrently")

// PhaseTransition describes one conditional move of a game between phases.
// The update applies only while the stored phase still equals FromPhase.
type PhaseTransition struct {
	GameID    string
	FromPhase game.Phase
	ToPhase   game.Phase
	At        time.Time
	// CurrentRoundID, when non-nil, repoints the game's active round.
	CurrentRoundID *string
	// CurrentActionID, when non-nil, repoints the game's active action.
	// An empty value clears the pointer.
	CurrentActionID *string
}

// RoundStart bundles the writes that open a round: the round row itself plus
// the phase move into PROPOSAL, applied in one transaction.
type RoundStart struct {
	Round round.Round
	// ActivateGame also flips a lobby game to active (first round only).
	ActivateGame bool
	Transition   PhaseTransition
}

// ActionResolution carries the outcome fields recorded when an action
// resolves. The write is guarded on the action still being in VOTING, so
// resolution happens exactly once.
type ActionResolution struct {
	Method        string
	ResultType    string
	ResultValue   int
	Data          []byte
	VotingSkipped bool
	ResolvedAt    time.Time
}

// NarrationCommit bundles the writes that close out a narrated action: the
// narration row, the action's move to NARRATED, the round progress bump, and
// the phase move out of NARRATION, applied in one transaction.
type NarrationCommit struct {
	Narration action.Narration
	RoundID   string
	// CompleteRound marks the round completed alongside the progress bump.
	CompleteRound bool
	Transition    PhaseTransition
}

// ArgumentationSignal records one acting unit's declaration that it is done
// arguing an action. Repeat signals for the same unit are no-ops.
type ArgumentationSignal struct {
	ActionID  string
	UnitKey   string
	PlayerID  string
	CreatedAt time.Time
}

// AuditEvent captures one observable orchestration fact for the game log:
// phase moves, resolutions, timeouts, host overrides.
type AuditEvent struct {
	ID          int64
	GameID      string
	RoundID     string
	ActionID    string
	ActorID     string
	EventType   string
	PayloadJSON []byte
	CreatedAt   time.Time
}

// GamePage describes a page of game records.
type GamePage struct {
	Games         []game.Game
	NextPageToken string
}

// GameStore owns game lifecycle state and the current phase/round/action
// pointers that the orchestrator reads before every mutation.
type GameStore interface {
	PutGame(ctx context.Context, g game.Game) error
	GetGame(ctx context.Context, gameID string) (game.Game, error)
	// List returns a page of undeleted games starting after the page token.
	ListGames(ctx context.Context, pageSize int, pageToken string) (GamePage, error)
	// TransitionPhase applies the move only while the stored phase still
	// matches FromPhase; a lost race returns ErrStalePhase.
	TransitionPhase(ctx context.Context, transition PhaseTransition) error
	// AdjustNPCMomentum shifts the shared NPC momentum track.
	AdjustNPCMomentum(ctx context.Context, gameID string, delta int, updatedAt time.Time) error
	// ListActiveGamesByPhase returns active, undeleted games sitting in any
	// of the given phases. The timeout sweep uses it to find stale phases.
	ListActiveGamesByPhase(ctx context.Context, phases ...game.Phase) ([]game.Game, error)
}

// PlayerStore owns seat membership, including host/NPC flags and persona
// claims.
type PlayerStore interface {
	// PutPlayer inserts or updates a seat. Creating a second seat for a user
	// who already holds one in the game returns ErrPlayerExists.
	PutPlayer(ctx context.Context, p player.Player) error
	GetPlayer(ctx context.Context, gameID, playerID string) (player.Player, error)
	// GetPlayerByUser resolves the seat a user holds in a game.
	GetPlayerByUser(ctx context.Context, gameID, userID string) (player.Player, error)
	ListPlayersByGame(ctx context.Context, gameID string) ([]player.Player, error)
	// ListGameIDsByUser returns ids of games where the user holds a seat.
	ListGameIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// PersonaStore owns the claimable identities players act through.
type PersonaStore interface {
	PutPersona(ctx context.Context, p persona.Persona) error
	GetPersona(ctx context.Context, gameID, personaID string) (persona.Persona, error)
	ListPersonasByGame(ctx context.Context, gameID string) ([]persona.Persona, error)
}

// RoundStore owns round progress counters and the transactional round-open
// write.
type RoundStore interface {
	PutRound(ctx context.Context, r round.Round) error
	GetRound(ctx context.Context, roundID string) (round.Round, error)
	ListRoundsByGame(ctx context.Context, gameID string) ([]round.Round, error)
	// StartRound creates the round and moves the game into its proposal
	// phase in one transaction.
	StartRound(ctx context.Context, start RoundStart) error
}

// ActionStore owns proposed actions and their guarded lifecycle moves.
type ActionStore interface {
	// CreateProposal inserts the proposed action and advances the game into
	// argumentation in one transaction. A second proposal by the same acting
	// unit in the round returns ErrDuplicateProposal.
	CreateProposal(ctx context.Context, a action.Action, transition PhaseTransition) error
	GetAction(ctx context.Context, actionID string) (action.Action, error)
	ListActionsByRound(ctx context.Context, roundID string) ([]action.Action, error)
	// NextActionSequence returns one past the game's highest action sequence
	// number. The counter spans the whole game; it never resets on rollover.
	NextActionSequence(ctx context.Context, gameID string) (int64, error)
	// UpdateActionContent rewrites description fields without touching
	// lifecycle state.
	UpdateActionContent(ctx context.Context, actionID, description, desiredOutcome string, updatedAt time.Time) error
	// StartActionVoting moves the action from ARGUING to VOTING once; a
	// repeat returns ErrStaleAction.
	StartActionVoting(ctx context.Context, actionID string, votingStartedAt time.Time, argumentationSkipped bool) error
	// ResolveAction records the outcome while the action is still in VOTING;
	// a second resolution returns ErrStaleAction.
	ResolveAction(ctx context.Context, actionID string, res ActionResolution) error
}

// ArgumentStore owns debate contributions and per-unit done signals.
type ArgumentStore interface {
	CreateArgument(ctx context.Context, a action.Argument) error
	GetArgument(ctx context.Context, argumentID string) (action.Argument, error)
	ListArgumentsByAction(ctx context.Context, actionID string) ([]action.Argument, error)
	// UpdateArgumentContent rewrites argument text without lifecycle effect.
	UpdateArgumentContent(ctx context.Context, argumentID, content string, updatedAt time.Time) error
	// SetArgumentStrength flags or unflags an argument for arbiter tallies.
	SetArgumentStrength(ctx context.Context, argumentID string, isStrong bool, updatedAt time.Time) error
	// PutArgumentationSignal records a done signal; repeats are no-ops.
	PutArgumentationSignal(ctx context.Context, sig ArgumentationSignal) error
	ListArgumentationSignals(ctx context.Context, actionID string) ([]ArgumentationSignal, error)
}

// VoteStore owns cast ballots. Votes are immutable once recorded.
type VoteStore interface {
	// CreateVote records a ballot. A second vote by the same player on the
	// action returns ErrDuplicateVote.
	CreateVote(ctx context.Context, v action.Vote) error
	ListVotesByAction(ctx context.Context, actionID string) ([]action.Vote, error)
}

// NarrationStore owns outcome narrations, one per action.
type NarrationStore interface {
	// RecordNarration applies the narration commit transactionally. A second
	// narration for the action returns ErrDuplicateNarration.
	RecordNarration(ctx context.Context, commit NarrationCommit) error
	GetNarration(ctx context.Context, actionID string) (action.Narration, error)
	// UpdateNarrationContent rewrites narration text without lifecycle
	// effect.
	UpdateNarrationContent(ctx context.Context, actionID, content string, updatedAt time.Time) error
}

// InviteStore owns join invites and their single-use redemption.
type InviteStore interface {
	PutInvite(ctx context.Context, inv invite.Invite) error
	GetInvite(ctx context.Context, inviteID string) (invite.Invite, error)
	ListInvitesByGame(ctx context.Context, gameID string) ([]invite.Invite, error)
	// MarkInviteRedeemed stamps redemption exactly once; an already-redeemed
	// invite returns invite.ErrUsed.
	MarkInviteRedeemed(ctx context.Context, inviteID, redeemedBy string, redeemedAt time.Time) error
}

// ListAuditEventsRequest describes request filters for game log views.
type ListAuditEventsRequest struct {
	// GameID scopes the query to a specific game (required).
	GameID string
	// PageSize is the maximum number of events to return (default: 50, max: 200).
	PageSize int
	// CursorID returns only events with id beyond this value (0 for first page).
	CursorID int64
	// Descending orders results by id desc (newest first) when true.
	Descending bool
	// FilterClause is an optional SQL WHERE clause fragment.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
}

// ListAuditEventsResult contains one page of the game log.
type ListAuditEventsResult struct {
	Events []AuditEvent
	// HasNextPage indicates whether more results exist beyond this page.
	HasNextPage bool
	// TotalCount is the total number of events matching the filter.
	TotalCount int
}

// AuditStore persists the append-only game log used for audits and timelines.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
	ListAuditEventsPage(ctx context.Context, req ListAuditEventsRequest) (ListAuditEventsResult, error)
}

// Store is a composite interface for all persistence concerns the
// orchestrator and its surfaces run against.
type Store interface {
	GameStore
	PlayerStore
	PersonaStore
	RoundStore
	ActionStore
	ArgumentStore
	VoteStore
	NarrationStore
	InviteStore
	AuditStore
	Close() error
}
