// Package events defines the canonical game audit event types.
//
// The values intentionally remain stable because operational consumers filter
// the audit journal by these strings.
package events

const (
	// Game lifecycle
	GameCreated     = "GAME_CREATED"
	GameStarted     = "GAME_STARTED"
	GameDeleted     = "GAME_DELETED"
	SettingsUpdated = "SETTINGS_UPDATED"
	PhaseChanged    = "PHASE_CHANGED"

	// Seats, personas, and invites
	PlayerJoined    = "PLAYER_JOINED"
	PlayerLeft      = "PLAYER_LEFT"
	PlayerRejoined  = "PLAYER_REJOINED"
	PersonaCreated  = "PERSONA_CREATED"
	PersonaClaimed  = "PERSONA_CLAIMED"
	PersonaReleased = "PERSONA_RELEASED"
	InviteCreated   = "INVITE_CREATED"
	InviteRedeemed  = "INVITE_REDEEMED"

	// Round flow
	RoundStarted        = "ROUND_STARTED"
	RoundCompleted      = "ROUND_COMPLETED"
	RoundForcedComplete = "ROUND_FORCED_COMPLETE"

	// Action flow
	ActionProposed         = "ACTION_PROPOSED"
	ActionEdited           = "ACTION_EDITED"
	ArgumentAdded          = "ARGUMENT_ADDED"
	ArgumentEdited         = "ARGUMENT_EDITED"
	ArgumentMarkedStrong   = "ARGUMENT_MARKED_STRONG"
	ArgumentationCompleted = "ARGUMENTATION_COMPLETED"
	ArgumentationSkipped   = "ARGUMENTATION_SKIPPED"
	VoteSubmitted          = "VOTE_SUBMITTED"
	VotingSkipped          = "VOTING_SKIPPED"
	ArbiterReviewCompleted = "ARBITER_REVIEW_COMPLETED"
	ActionResolved         = "ACTION_RESOLVED"
	ActionNarrated         = "ACTION_NARRATED"
	NarrationEdited        = "NARRATION_EDITED"

	// Timeout sweeps
	ProposalTimeout      = "PROPOSAL_TIMEOUT"
	ArgumentationTimeout = "ARGUMENTATION_TIMEOUT"
	VotingTimeout        = "VOTING_TIMEOUT"
	NarrationTimeout     = "NARRATION_TIMEOUT"
)
