// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game errors
	CodeGameNameEmpty              Code = "GAME_NAME_EMPTY"
	CodeGameInvalidSettings        Code = "GAME_INVALID_SETTINGS"
	CodeGameInvalidPhaseTransition Code = "GAME_INVALID_PHASE_TRANSITION"
	CodeGamePhaseDisallowsOp       Code = "GAME_PHASE_DISALLOWS_OPERATION"
	CodeGameStatusDisallowsOp      Code = "GAME_STATUS_DISALLOWS_OPERATION"
	CodeGameNotStartable           Code = "GAME_NOT_STARTABLE"
	CodeGameNotFound               Code = "GAME_NOT_FOUND"

	// Player errors
	CodePlayerNameEmpty      Code = "PLAYER_NAME_EMPTY"
	CodePlayerNotFound       Code = "PLAYER_NOT_FOUND"
	CodePlayerAlreadyJoined  Code = "PLAYER_ALREADY_JOINED"
	CodePlayerInactive       Code = "PLAYER_INACTIVE"
	CodePlayerHostRequired   Code = "PLAYER_HOST_REQUIRED"
	CodePlayerMemberRequired Code = "PLAYER_MEMBER_REQUIRED"

	// Persona errors
	CodePersonaNameEmpty      Code = "PERSONA_NAME_EMPTY"
	CodePersonaScriptRequired Code = "PERSONA_SCRIPT_REQUIRED"
	CodePersonaNotFound       Code = "PERSONA_NOT_FOUND"
	CodePersonaAlreadyClaimed Code = "PERSONA_ALREADY_CLAIMED"
	CodePersonaSharingOff     Code = "PERSONA_SHARING_DISABLED"

	// Round errors
	CodeRoundNotFound  Code = "ROUND_NOT_FOUND"
	CodeRoundNoActions Code = "ROUND_NO_ACTIONS"
	CodeRoundNotOpen   Code = "ROUND_NOT_OPEN"

	// Action errors
	CodeActionNotFound          Code = "ACTION_NOT_FOUND"
	CodeActionDescriptionEmpty  Code = "ACTION_DESCRIPTION_EMPTY"
	CodeActionStatusDisallowsOp Code = "ACTION_STATUS_DISALLOWS_OPERATION"
	CodeActionAlreadyResolved   Code = "ACTION_ALREADY_RESOLVED"
	CodeActionProposalExists    Code = "ACTION_PROPOSAL_EXISTS"
	CodeActionInitiatorRequired Code = "ACTION_INITIATOR_REQUIRED"

	// Argument errors
	CodeArgumentNotFound       Code = "ARGUMENT_NOT_FOUND"
	CodeArgumentContentEmpty   Code = "ARGUMENT_CONTENT_EMPTY"
	CodeArgumentInvalidType    Code = "ARGUMENT_INVALID_TYPE"
	CodeArgumentTypeRestricted Code = "ARGUMENT_TYPE_RESTRICTED"
	CodeArgumentLimitReached   Code = "ARGUMENT_LIMIT_REACHED"
	CodeArgumentEditDenied     Code = "ARGUMENT_EDIT_DENIED"

	// Vote errors
	CodeVoteInvalidType     Code = "VOTE_INVALID_TYPE"
	CodeVoteExists          Code = "VOTE_EXISTS"
	CodeVotePersonaCast     Code = "VOTE_PERSONA_ALREADY_CAST"
	CodeVoteThresholdNotMet Code = "VOTE_THRESHOLD_NOT_MET"

	// Narration errors
	CodeNarrationContentEmpty Code = "NARRATION_CONTENT_EMPTY"
	CodeNarrationExists       Code = "NARRATION_EXISTS"
	CodeNarrationDenied       Code = "NARRATION_DENIED"

	// Resolution errors
	CodeResolutionUnknownMethod   Code = "RESOLUTION_UNKNOWN_METHOD"
	CodeResolutionArbiterRequired Code = "RESOLUTION_ARBITER_REQUIRED"
	CodeResolutionNotReviewable   Code = "RESOLUTION_NOT_REVIEWABLE"

	// Invite errors
	CodeInviteNotFound          Code = "INVITE_NOT_FOUND"
	CodeInviteEmptyGameID       Code = "INVITE_EMPTY_GAME_ID"
	CodeInviteJoinGrantInvalid  Code = "INVITE_JOIN_GRANT_INVALID"
	CodeInviteJoinGrantExpired  Code = "INVITE_JOIN_GRANT_EXPIRED"
	CodeInviteJoinGrantMismatch Code = "INVITE_JOIN_GRANT_MISMATCH"
	CodeInviteJoinGrantUsed     Code = "INVITE_JOIN_GRANT_USED"

	// Listing errors
	CodeAuditFilterInvalid Code = "AUDIT_FILTER_INVALID"
	CodePageTokenInvalid   Code = "PAGE_TOKEN_INVALID"

	// Transport errors
	CodeRequestInvalid        Code = "REQUEST_INVALID"
	CodeIdentityTokenRequired Code = "IDENTITY_TOKEN_REQUIRED"
	CodeIdentityTokenInvalid  Code = "IDENTITY_TOKEN_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// Kind groups codes into the coarse failure classes the transport layer maps.
type Kind string

const (
	KindInvalidArgument  Kind = "INVALID_ARGUMENT"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidState     Kind = "INVALID_STATE"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindConflict         Kind = "CONFLICT"
	KindInternal         Kind = "INTERNAL"
)

// Kind classifies a domain code into its failure class.
func (c Code) Kind() Kind {
	switch c {
	// Validation failures, bad input
	case CodeGameNameEmpty,
		CodeGameInvalidSettings,
		CodePlayerNameEmpty,
		CodePersonaNameEmpty,
		CodePersonaScriptRequired,
		CodeActionDescriptionEmpty,
		CodeArgumentContentEmpty,
		CodeArgumentInvalidType,
		CodeVoteInvalidType,
		CodeNarrationContentEmpty,
		CodeInviteEmptyGameID,
		CodeInviteJoinGrantInvalid,
		CodeInviteJoinGrantMismatch,
		CodeAuditFilterInvalid,
		CodePageTokenInvalid,
		CodeRequestInvalid:
		return KindInvalidArgument

	// Resource doesn't exist or is soft-deleted
	case CodeNotFound,
		CodeGameNotFound,
		CodePlayerNotFound,
		CodePersonaNotFound,
		CodeRoundNotFound,
		CodeActionNotFound,
		CodeArgumentNotFound,
		CodeInviteNotFound:
		return KindNotFound

	// Current phase or status doesn't allow the operation
	case CodeGameInvalidPhaseTransition,
		CodeGamePhaseDisallowsOp,
		CodeGameStatusDisallowsOp,
		CodeGameNotStartable,
		CodePlayerInactive,
		CodePersonaSharingOff,
		CodeRoundNoActions,
		CodeRoundNotOpen,
		CodeActionStatusDisallowsOp,
		CodeArgumentLimitReached,
		CodeVoteThresholdNotMet,
		CodeResolutionUnknownMethod,
		CodeResolutionNotReviewable,
		CodeInviteJoinGrantExpired,
		CodeInviteJoinGrantUsed:
		return KindInvalidState

	// Caller presented no usable identity
	case CodeIdentityTokenRequired,
		CodeIdentityTokenInvalid:
		return KindUnauthenticated

	// Caller lacks the required role
	case CodePlayerHostRequired,
		CodePlayerMemberRequired,
		CodeActionInitiatorRequired,
		CodeArgumentTypeRestricted,
		CodeArgumentEditDenied,
		CodeNarrationDenied,
		CodeResolutionArbiterRequired:
		return KindPermissionDenied

	// Uniqueness or single-resolution invariants
	case CodeConflict,
		CodePlayerAlreadyJoined,
		CodePersonaAlreadyClaimed,
		CodeActionProposalExists,
		CodeActionAlreadyResolved,
		CodeVoteExists,
		CodeVotePersonaCast,
		CodeNarrationExists:
		return KindConflict

	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindInvalidState:
		return codes.FailedPrecondition
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindPermissionDenied:
		return codes.PermissionDenied
	case KindConflict:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP statuses per the Google error model.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindInvalidArgument, KindInvalidState:
		return 400
	case KindNotFound:
		return 404
	case KindUnauthenticated:
		return 401
	case KindPermissionDenied:
		return 403
	case KindConflict:
		return 409
	default:
		return 500
	}
}
