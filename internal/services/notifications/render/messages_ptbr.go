package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.generic.body", "Você tem uma nova atualização do jogo.")

	message.SetString(lang, "notification.common.someone", "Um jogador")
	message.SetString(lang, "notification.common.your_game", "Seu jogo")
	message.SetString(lang, "notification.common.an_action", "uma ação")

	message.SetString(lang, "notification.phase.proposal", "proposta")
	message.SetString(lang, "notification.phase.argumentation", "argumentação")
	message.SetString(lang, "notification.phase.voting", "votação")
	message.SetString(lang, "notification.phase.narration", "narração")

	message.SetString(lang, "notification.result.triumph", "um triunfo")
	message.SetString(lang, "notification.result.success_but", "um sucesso com custo")
	message.SetString(lang, "notification.result.failure_but", "uma falha com brecha")
	message.SetString(lang, "notification.result.disaster", "um desastre")
	message.SetString(lang, "notification.result.unknown", "um desfecho incerto")

	message.SetString(lang, "notification.game_started.title", "Jogo iniciado")
	message.SetString(lang, "notification.game_started.body", "%s está em andamento. A primeira fase de proposta está aberta.")
	message.SetString(lang, "notification.player_joined.title", "Novo jogador")
	message.SetString(lang, "notification.player_joined.body", "%s entrou no jogo.")
	message.SetString(lang, "notification.player_left.title", "Jogador saiu")
	message.SetString(lang, "notification.player_left.body", "%s saiu do jogo.")
	message.SetString(lang, "notification.action_proposed.title", "Ação proposta")
	message.SetString(lang, "notification.action_proposed.body", "%s propôs: %s")
	message.SetString(lang, "notification.voting_opened.title", "Votação aberta")
	message.SetString(lang, "notification.voting_opened.body", "A argumentação foi encerrada. Registre seu voto.")
	message.SetString(lang, "notification.action_resolved.title", "Ação resolvida")
	message.SetString(lang, "notification.action_resolved.body", "A ação foi resolvida como %s.")
	message.SetString(lang, "notification.action_narrated.title", "Desfecho narrado")
	message.SetString(lang, "notification.action_narrated.body", "%s narrou o desfecho.")
	message.SetString(lang, "notification.round_completed.title", "Rodada concluída")
	message.SetString(lang, "notification.round_completed.body", "A rodada %s foi concluída. O anfitrião pode abrir a próxima rodada.")
	message.SetString(lang, "notification.phase_timeout.title", "Fase expirada")
	message.SetString(lang, "notification.phase_timeout.body", "A fase de %s expirou e o jogo avançou.")
	message.SetString(lang, "notification.host_action_required.title", "Ação do anfitrião necessária")
	message.SetString(lang, "notification.host_action_required.body", "A fase de %s está aguardando você.")
}
