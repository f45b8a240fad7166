package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)

	message.SetString(lang, "notification.common.someone", "A player")
	message.SetString(lang, "notification.common.your_game", "Your game")
	message.SetString(lang, "notification.common.an_action", "an action")

	message.SetString(lang, "notification.phase.proposal", "proposal")
	message.SetString(lang, "notification.phase.argumentation", "argumentation")
	message.SetString(lang, "notification.phase.voting", "voting")
	message.SetString(lang, "notification.phase.narration", "narration")

	message.SetString(lang, "notification.result.triumph", "a triumph")
	message.SetString(lang, "notification.result.success_but", "a success at a cost")
	message.SetString(lang, "notification.result.failure_but", "a failure with an opening")
	message.SetString(lang, "notification.result.disaster", "a disaster")
	message.SetString(lang, "notification.result.unknown", "an uncertain outcome")

	message.SetString(lang, "notification.game_started.title", "Game started")
	message.SetString(lang, "notification.game_started.body", "%s is underway. The first proposal phase is open.")
	message.SetString(lang, "notification.player_joined.title", "New player")
	message.SetString(lang, "notification.player_joined.body", "%s joined the game.")
	message.SetString(lang, "notification.player_left.title", "Player left")
	message.SetString(lang, "notification.player_left.body", "%s left the game.")
	message.SetString(lang, "notification.action_proposed.title", "Action proposed")
	message.SetString(lang, "notification.action_proposed.body", "%s proposed: %s")
	message.SetString(lang, "notification.voting_opened.title", "Voting open")
	message.SetString(lang, "notification.voting_opened.body", "Argumentation has closed. Cast your vote.")
	message.SetString(lang, "notification.action_resolved.title", "Action resolved")
	message.SetString(lang, "notification.action_resolved.body", "The action resolved as %s.")
	message.SetString(lang, "notification.action_narrated.title", "Outcome narrated")
	message.SetString(lang, "notification.action_narrated.body", "%s narrated the outcome.")
	message.SetString(lang, "notification.round_completed.title", "Round complete")
	message.SetString(lang, "notification.round_completed.body", "Round %s is complete. The host can open the next round.")
	message.SetString(lang, "notification.phase_timeout.title", "Phase timed out")
	message.SetString(lang, "notification.phase_timeout.body", "The %s phase timed out and the game moved on.")
	message.SetString(lang, "notification.host_action_required.title", "Host action needed")
	message.SetString(lang, "notification.host_action_required.body", "The %s phase is waiting on you.")
}
