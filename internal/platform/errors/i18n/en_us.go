package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeGameNameEmpty              = "GAME_NAME_EMPTY"
	CodeGameInvalidSettings        = "GAME_INVALID_SETTINGS"
	CodeGameInvalidPhaseTransition = "GAME_INVALID_PHASE_TRANSITION"
	CodeGamePhaseDisallowsOp       = "GAME_PHASE_DISALLOWS_OPERATION"
	CodeGameStatusDisallowsOp      = "GAME_STATUS_DISALLOWS_OPERATION"
	CodeGameNotStartable           = "GAME_NOT_STARTABLE"
	CodeGameNotFound               = "GAME_NOT_FOUND"
	CodePlayerNameEmpty            = "PLAYER_NAME_EMPTY"
	CodePlayerNotFound             = "PLAYER_NOT_FOUND"
	CodePlayerAlreadyJoined        = "PLAYER_ALREADY_JOINED"
	CodePlayerInactive             = "PLAYER_INACTIVE"
	CodePlayerHostRequired         = "PLAYER_HOST_REQUIRED"
	CodePlayerMemberRequired       = "PLAYER_MEMBER_REQUIRED"
	CodePersonaNameEmpty           = "PERSONA_NAME_EMPTY"
	CodePersonaScriptRequired      = "PERSONA_SCRIPT_REQUIRED"
	CodePersonaNotFound            = "PERSONA_NOT_FOUND"
	CodePersonaAlreadyClaimed      = "PERSONA_ALREADY_CLAIMED"
	CodePersonaSharingOff          = "PERSONA_SHARING_DISABLED"
	CodeRoundNotFound              = "ROUND_NOT_FOUND"
	CodeRoundNoActions             = "ROUND_NO_ACTIONS"
	CodeRoundNotOpen               = "ROUND_NOT_OPEN"
	CodeActionNotFound             = "ACTION_NOT_FOUND"
	CodeActionDescriptionEmpty     = "ACTION_DESCRIPTION_EMPTY"
	CodeActionStatusDisallowsOp    = "ACTION_STATUS_DISALLOWS_OPERATION"
	CodeActionAlreadyResolved      = "ACTION_ALREADY_RESOLVED"
	CodeActionProposalExists       = "ACTION_PROPOSAL_EXISTS"
	CodeActionInitiatorRequired    = "ACTION_INITIATOR_REQUIRED"
	CodeArgumentNotFound           = "ARGUMENT_NOT_FOUND"
	CodeArgumentContentEmpty       = "ARGUMENT_CONTENT_EMPTY"
	CodeArgumentInvalidType        = "ARGUMENT_INVALID_TYPE"
	CodeArgumentTypeRestricted     = "ARGUMENT_TYPE_RESTRICTED"
	CodeArgumentLimitReached       = "ARGUMENT_LIMIT_REACHED"
	CodeArgumentEditDenied         = "ARGUMENT_EDIT_DENIED"
	CodeVoteInvalidType            = "VOTE_INVALID_TYPE"
	CodeVoteExists                 = "VOTE_EXISTS"
	CodeVotePersonaCast            = "VOTE_PERSONA_ALREADY_CAST"
	CodeVoteThresholdNotMet        = "VOTE_THRESHOLD_NOT_MET"
	CodeNarrationContentEmpty      = "NARRATION_CONTENT_EMPTY"
	CodeNarrationExists            = "NARRATION_EXISTS"
	CodeNarrationDenied            = "NARRATION_DENIED"
	CodeResolutionUnknownMethod    = "RESOLUTION_UNKNOWN_METHOD"
	CodeResolutionArbiterRequired  = "RESOLUTION_ARBITER_REQUIRED"
	CodeResolutionNotReviewable    = "RESOLUTION_NOT_REVIEWABLE"
	CodeInviteNotFound             = "INVITE_NOT_FOUND"
	CodeInviteEmptyGameID          = "INVITE_EMPTY_GAME_ID"
	CodeInviteJoinGrantInvalid     = "INVITE_JOIN_GRANT_INVALID"
	CodeInviteJoinGrantExpired     = "INVITE_JOIN_GRANT_EXPIRED"
	CodeInviteJoinGrantMismatch    = "INVITE_JOIN_GRANT_MISMATCH"
	CodeInviteJoinGrantUsed        = "INVITE_JOIN_GRANT_USED"
	CodeAuditFilterInvalid         = "AUDIT_FILTER_INVALID"
	CodePageTokenInvalid           = "PAGE_TOKEN_INVALID"
	CodeRequestInvalid             = "REQUEST_INVALID"
	CodeIdentityTokenRequired      = "IDENTITY_TOKEN_REQUIRED"
	CodeIdentityTokenInvalid       = "IDENTITY_TOKEN_INVALID"
	CodeNotFound                   = "NOT_FOUND"
	CodeConflict                   = "CONFLICT"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Game errors
		CodeGameNameEmpty:              "Game name cannot be empty",
		CodeGameInvalidSettings:        "Game settings are invalid",
		CodeGameInvalidPhaseTransition: "Cannot transition game from {{.FromPhase}} to {{.ToPhase}}",
		CodeGamePhaseDisallowsOp:       "Game phase {{.Phase}} does not allow {{.Operation}}",
		CodeGameStatusDisallowsOp:      "Game status {{.Status}} does not allow {{.Operation}}",
		CodeGameNotStartable:           "At least two active players are required to start",
		CodeGameNotFound:               "Game was not found",

		// Player errors
		CodePlayerNameEmpty:      "Player name cannot be empty",
		CodePlayerNotFound:       "Player was not found in this game",
		CodePlayerAlreadyJoined:  "You already have a seat in this game",
		CodePlayerInactive:       "Player has left this game",
		CodePlayerHostRequired:   "Only the host may perform this operation",
		CodePlayerMemberRequired: "Only a game member may perform this operation",

		// Persona errors
		CodePersonaNameEmpty:      "Persona name cannot be empty",
		CodePersonaScriptRequired: "NPC personas require a scripted action",
		CodePersonaNotFound:       "Persona was not found",
		CodePersonaAlreadyClaimed: "Persona is already claimed by another player",
		CodePersonaSharingOff:     "Persona sharing is disabled for this game",

		// Round errors
		CodeRoundNotFound:  "Round was not found",
		CodeRoundNoActions: "Round has no actions to complete",
		CodeRoundNotOpen:   "Round is not in progress",

		// Action errors
		CodeActionNotFound:          "Action was not found",
		CodeActionDescriptionEmpty:  "Action description cannot be empty",
		CodeActionStatusDisallowsOp: "Action status {{.Status}} does not allow {{.Operation}}",
		CodeActionAlreadyResolved:   "Action has already been resolved",
		CodeActionProposalExists:    "Your acting unit already proposed an action this round",
		CodeActionInitiatorRequired: "Only the action initiator may perform this operation",

		// Argument errors
		CodeArgumentNotFound:       "Argument was not found",
		CodeArgumentContentEmpty:   "Argument content cannot be empty",
		CodeArgumentInvalidType:    "Argument type is invalid",
		CodeArgumentTypeRestricted: "Argument type {{.Type}} is not allowed for this player",
		CodeArgumentLimitReached:   "Argument limit of {{.Limit}} has been reached",
		CodeArgumentEditDenied:     "You may only edit your own arguments",

		// Vote errors
		CodeVoteInvalidType:     "Vote type is invalid",
		CodeVoteExists:          "You have already voted on this action",
		CodeVotePersonaCast:     "Your persona has already voted on this action",
		CodeVoteThresholdNotMet: "Votes have not reached the acting-unit threshold",

		// Narration errors
		CodeNarrationContentEmpty: "Narration content cannot be empty",
		CodeNarrationExists:       "Action has already been narrated",
		CodeNarrationDenied:       "You are not allowed to narrate this action",

		// Resolution errors
		CodeResolutionUnknownMethod:   "Resolution method {{.Method}} is not recognized",
		CodeResolutionArbiterRequired: "Only the arbiter may perform this operation",
		CodeResolutionNotReviewable:   "Action is not awaiting arbiter review",

		// Invite errors
		CodeInviteNotFound:          "Invite was not found",
		CodeInviteEmptyGameID:       "Game ID is required for invite",
		CodeInviteJoinGrantInvalid:  "Join grant is invalid",
		CodeInviteJoinGrantExpired:  "Join grant has expired",
		CodeInviteJoinGrantMismatch: "Join grant {{.Field}} does not match",
		CodeInviteJoinGrantUsed:     "Join grant has already been used",

		// Listing errors
		CodeAuditFilterInvalid: "Audit filter expression is invalid",
		CodePageTokenInvalid:   "Page token is invalid",

		// Transport errors
		CodeRequestInvalid:        "The request could not be parsed",
		CodeIdentityTokenRequired: "Authentication is required",
		CodeIdentityTokenInvalid:  "Authentication token is invalid or expired",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
		CodeConflict: "The request conflicts with existing state",
	},
}
