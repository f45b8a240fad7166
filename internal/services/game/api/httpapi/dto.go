package httpapi

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/domain/action"
	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/invite"
	"github.com/louisbranch/warroom/internal/services/game/domain/persona"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	"github.com/louisbranch/warroom/internal/services/game/domain/round"
	"github.com/louisbranch/warroom/internal/services/game/engine"
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

type settingsJSON struct {
	ArgumentLimit             int    `json:"argument_limit,omitempty"`
	ProposalTimeoutHours      int    `json:"proposal_timeout_hours,omitempty"`
	ArgumentationTimeoutHours int    `json:"argumentation_timeout_hours,omitempty"`
	VotingTimeoutHours        int    `json:"voting_timeout_hours,omitempty"`
	NarrationTimeoutHours     int    `json:"narration_timeout_hours,omitempty"`
	ResolutionMethod          string `json:"resolution_method,omitempty"`
	PersonaSharingEnabled     bool   `json:"persona_sharing_enabled"`
	VotingMode                string `json:"voting_mode,omitempty"`
	ArgumentMode              string `json:"argument_mode,omitempty"`
	NarrationMode             string `json:"narration_mode,omitempty"`
}

func (s settingsJSON) toDomain() game.Settings {
	return game.Settings{
		ArgumentLimit:             s.ArgumentLimit,
		ProposalTimeoutHours:      s.ProposalTimeoutHours,
		ArgumentationTimeoutHours: s.ArgumentationTimeoutHours,
		VotingTimeoutHours:        s.VotingTimeoutHours,
		NarrationTimeoutHours:     s.NarrationTimeoutHours,
		ResolutionMethod:          s.ResolutionMethod,
		PersonaSharingEnabled:     s.PersonaSharingEnabled,
		VotingMode:                game.VotingMode(s.VotingMode),
		ArgumentMode:              game.ArgumentMode(s.ArgumentMode),
		NarrationMode:             game.NarrationMode(s.NarrationMode),
	}
}

func toSettingsJSON(s game.Settings) settingsJSON {
	return settingsJSON{
		ArgumentLimit:             s.ArgumentLimit,
		ProposalTimeoutHours:      s.ProposalTimeoutHours,
		ArgumentationTimeoutHours: s.ArgumentationTimeoutHours,
		VotingTimeoutHours:        s.VotingTimeoutHours,
		NarrationTimeoutHours:     s.NarrationTimeoutHours,
		ResolutionMethod:          s.ResolutionMethod,
		PersonaSharingEnabled:     s.PersonaSharingEnabled,
		VotingMode:                string(s.VotingMode),
		ArgumentMode:              string(s.ArgumentMode),
		NarrationMode:             string(s.NarrationMode),
	}
}

type gameJSON struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Status          string       `json:"status"`
	CurrentPhase    string       `json:"current_phase"`
	PhaseStartedAt  time.Time    `json:"phase_started_at,omitzero"`
	CurrentRoundID  string       `json:"current_round_id,omitempty"`
	CurrentActionID string       `json:"current_action_id,omitempty"`
	Settings        settingsJSON `json:"settings"`
	NPCMomentum     int          `json:"npc_momentum"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func toGameJSON(g game.Game) gameJSON {
	return gameJSON{
		ID:              g.ID,
		Name:            g.Name,
		Status:          string(g.Status),
		CurrentPhase:    string(g.CurrentPhase),
		PhaseStartedAt:  g.PhaseStartedAt,
		CurrentRoundID:  g.CurrentRoundID,
		CurrentActionID: g.CurrentActionID,
		Settings:        toSettingsJSON(g.Settings),
		NPCMomentum:     g.NPCMomentum,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

type playerJSON struct {
	ID            string    `json:"id"`
	GameID        string    `json:"game_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	PersonaID     string    `json:"persona_id,omitempty"`
	IsPersonaLead bool      `json:"is_persona_lead"`
	IsHost        bool      `json:"is_host"`
	IsNPC         bool      `json:"is_npc"`
	IsActive      bool      `json:"is_active"`
	JoinedAt      time.Time `json:"joined_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPlayerJSON(p player.Player) playerJSON {
	return playerJSON{
		ID:            p.ID,
		GameID:        p.GameID,
		UserID:        p.UserID,
		Name:          p.Name,
		PersonaID:     p.PersonaID,
		IsPersonaLead: p.IsPersonaLead,
		IsHost:        p.IsHost,
		IsNPC:         p.IsNPC,
		IsActive:      p.IsActive,
		JoinedAt:      p.JoinedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type personaJSON struct {
	ID              string    `json:"id"`
	GameID          string    `json:"game_id"`
	Name            string    `json:"name"`
	IsNPC           bool      `json:"is_npc"`
	ScriptedAction  string    `json:"scripted_action,omitempty"`
	ScriptedOutcome string    `json:"scripted_outcome,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toPersonaJSON(p persona.Persona) personaJSON {
	return personaJSON{
		ID:              p.ID,
		GameID:          p.GameID,
		Name:            p.Name,
		IsNPC:           p.IsNPC,
		ScriptedAction:  p.ScriptedAction,
		ScriptedOutcome: p.ScriptedOutcome,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type roundJSON struct {
	ID                   string    `json:"id"`
	GameID               string    `json:"game_id"`
	RoundNumber          int       `json:"round_number"`
	Status               string    `json:"status"`
	ActionsCompleted     int       `json:"actions_completed"`
	TotalActionsRequired int       `json:"total_actions_required"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toRoundJSON(r round.Round) roundJSON {
	return roundJSON{
		ID:                   r.ID,
		GameID:               r.GameID,
		RoundNumber:          r.RoundNumber,
		Status:               string(r.Status),
		ActionsCompleted:     r.ActionsCompleted,
		TotalActionsRequired: r.TotalActionsRequired,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type actionJSON struct {
	ID               string `json:"id"`
	GameID           string `json:"game_id"`
	RoundID          string `json:"round_id"`
	InitiatorID      string `json:"initiator_id"`
	InitiatorUnitKey string `json:"initiator_unit_key"`
	SequenceNumber   int64  `json:"sequence_number"`
	Description      string `json:"description"`
	DesiredOutcome   string `json:"desired_outcome,omitempty"`
	Status           string `json:"status"`

	ArgumentationStartedAt time.Time `json:"argumentation_started_at,omitzero"`
	VotingStartedAt        time.Time `json:"voting_started_at,omitzero"`
	ResolvedAt             time.Time `json:"resolved_at,omitzero"`

	ResolutionMethod string          `json:"resolution_method,omitempty"`
	ResultType       string          `json:"result_type,omitempty"`
	ResultValue      int             `json:"result_value,omitempty"`
	ResolutionData   json.RawMessage `json:"resolution_data,omitempty"`

	WasArgumentationSkipped bool `json:"was_argumentation_skipped"`
	WasVotingSkipped        bool `json:"was_voting_skipped"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toActionJSON(a action.Action) actionJSON {
	return actionJSON{
		ID:                      a.ID,
		GameID:                  a.GameID,
		RoundID:                 a.RoundID,
		InitiatorID:             a.InitiatorID,
		InitiatorUnitKey:        a.InitiatorUnitKey,
		SequenceNumber:          a.SequenceNumber,
		Description:             a.Description,
		DesiredOutcome:          a.DesiredOutcome,
		Status:                  string(a.Status),
		ArgumentationStartedAt:  a.ArgumentationStartedAt,
		VotingStartedAt:         a.VotingStartedAt,
		ResolvedAt:              a.ResolvedAt,
		ResolutionMethod:        a.ResolutionMethod,
		ResultType:              a.ResultType,
		ResultValue:             a.ResultValue,
		ResolutionData:          json.RawMessage(a.ResolutionData),
		WasArgumentationSkipped: a.WasArgumentationSkipped,
		WasVotingSkipped:        a.WasVotingSkipped,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

type argumentJSON struct {
	ID        string    `json:"id"`
	ActionID  string    `json:"action_id"`
	PlayerID  string    `json:"player_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Sequence  int       `json:"sequence"`
	IsStrong  bool      `json:"is_strong"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toArgumentJSON(a action.Argument) argumentJSON {
	return argumentJSON{
		ID:        a.ID,
		ActionID:  a.ActionID,
		PlayerID:  a.PlayerID,
		Type:      string(a.Type),
		Content:   a.Content,
		Sequence:  a.Sequence,
		IsStrong:  a.IsStrong,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type voteJSON struct {
	ID            string    `json:"id"`
	ActionID      string    `json:"action_id"`
	PlayerID      string    `json:"player_id"`
	Type          string    `json:"type"`
	SuccessTokens int       `json:"success_tokens"`
	FailureTokens int       `json:"failure_tokens"`
	WasSkipped    bool      `json:"was_skipped"`
	CreatedAt     time.Time `json:"created_at"`
}

func toVoteJSON(v action.Vote) voteJSON {
	return voteJSON{
		ID:            v.ID,
		ActionID:      v.ActionID,
		PlayerID:      v.PlayerID,
		Type:          string(v.Type),
		SuccessTokens: v.SuccessTokens,
		FailureTokens: v.FailureTokens,
		WasSkipped:    v.WasSkipped,
		CreatedAt:     v.CreatedAt,
	}
}

type narrationJSON struct {
	ActionID  string    `json:"action_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNarrationJSON(n action.Narration) narrationJSON {
	return narrationJSON{
		ActionID:  n.ActionID,
		AuthorID:  n.AuthorID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type inviteJSON struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RedeemedAt time.Time `json:"redeemed_at,omitzero"`
	RedeemedBy string    `json:"redeemed_by,omitempty"`
}

func toInviteJSON(inv invite.Invite) inviteJSON {
	return inviteJSON{
		ID:         inv.ID,
		GameID:     inv.GameID,
		CreatedBy:  inv.CreatedBy,
		CreatedAt:  inv.CreatedAt,
		ExpiresAt:  inv.ExpiresAt,
		RedeemedAt: inv.RedeemedAt,
		RedeemedBy: inv.RedeemedBy,
	}
}

type auditEventJSON struct {
	ID        int64           `json:"id"`
	GameID    string          `json:"game_id"`
	RoundID   string          `json:"round_id,omitempty"`
	ActionID  string          `json:"action_id,omitempty"`
	ActorID   string          `json:"actor_id,omitempty"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAuditEventJSON(evt storage.AuditEvent) auditEventJSON {
	return auditEventJSON{
		ID:        evt.ID,
		GameID:    evt.GameID,
		RoundID:   evt.RoundID,
		ActionID:  evt.ActionID,
		ActorID:   evt.ActorID,
		EventType: evt.EventType,
		Payload:   json.RawMessage(evt.PayloadJSON),
		CreatedAt: evt.CreatedAt,
	}
}

type snapshotJSON struct {
	Game      gameJSON       `json:"game"`
	Players   []playerJSON   `json:"players"`
	Personas  []personaJSON  `json:"personas,omitempty"`
	Round     *roundJSON     `json:"round,omitempty"`
	Action    *actionJSON    `json:"action,omitempty"`
	Arguments []argumentJSON `json:"arguments,omitempty"`
	Votes     []voteJSON     `json:"votes,omitempty"`
}

func toSnapshotJSON(snap engine.Snapshot) snapshotJSON {
	out := snapshotJSON{
		Game:     toGameJSON(snap.Game),
		Players:  make([]playerJSON, 0, len(snap.Players)),
		Personas: make([]personaJSON, 0, len(snap.Personas)),
	}
	for _, p := range snap.Players {
		out.Players = append(out.Players, toPlayerJSON(p))
	}
	for _, p := range snap.Personas {
		out.Personas = append(out.Personas, toPersonaJSON(p))
	}
	if snap.Round.ID != "" {
		r := toRoundJSON(snap.Round)
		out.Round = &r
	}
	if snap.Action.ID != "" {
		a := toActionJSON(snap.Action)
		out.Action = &a
	}
	for _, arg := range snap.Arguments {
		out.Arguments = append(out.Arguments, toArgumentJSON(arg))
	}
	for _, v := range snap.Votes {
		out.Votes = append(out.Votes, toVoteJSON(v))
	}
	return out
}

type timeoutStatusJSON struct {
	GameID           string    `json:"game_id"`
	Phase            string    `json:"phase"`
	PhaseStartedAt   time.Time `json:"phase_started_at,omitzero"`
	Timed            bool      `json:"timed"`
	Infinite         bool      `json:"infinite"`
	Deadline         time.Time `json:"deadline,omitzero"`
	RemainingSeconds int64     `json:"remaining_seconds,omitempty"`
}

func toTimeoutStatusJSON(ts engine.TimeoutStatus) timeoutStatusJSON {
	return timeoutStatusJSON{
		GameID:           ts.GameID,
		Phase:            string(ts.Phase),
		PhaseStartedAt:   ts.PhaseStartedAt,
		Timed:            ts.Timed,
		Infinite:         ts.Infinite,
		Deadline:         ts.Deadline,
		RemainingSeconds: int64(ts.Remaining / time.Second),
	}
}

type voteStatusJSON struct {
	Vote     voteJSON `json:"vote"`
	Resolved bool     `json:"resolved"`
}

type argumentationStatusJSON struct {
	ActionID      string `json:"action_id"`
	UnitsSignaled int    `json:"units_signaled"`
	UnitsRequired int    `json:"units_required"`
	Advanced      bool   `json:"advanced"`
}

type narrationResultJSON struct {
	Narration      narrationJSON `json:"narration"`
	RoundCompleted bool          `json:"round_completed"`
	Phase          string        `json:"phase"`
}

type gameListJSON struct {
	Games         []gameJSON `json:"games"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

type inviteListJSON struct {
	Invites []inviteJSON `json:"invites"`
}

type auditPageJSON struct {
	Events        []auditEventJSON `json:"events"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	TotalCount    int              `json:"total_count"`
}
