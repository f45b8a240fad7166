package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		// Game errors
		CodeGameNameEmpty:              "O nome do jogo não pode ficar vazio",
		CodeGameInvalidSettings:        "As configurações do jogo são inválidas",
		CodeGameInvalidPhaseTransition: "Não é possível mudar o jogo de {{.FromPhase}} para {{.ToPhase}}",
		CodeGamePhaseDisallowsOp:       "A fase {{.Phase}} não permite {{.Operation}}",
		CodeGameStatusDisallowsOp:      "O status {{.Status}} não permite {{.Operation}}",
		CodeGameNotStartable:           "São necessários pelo menos dois jogadores ativos para começar",
		CodeGameNotFound:               "Jogo não encontrado",

		// Player errors
		CodePlayerNameEmpty:      "O nome do jogador não pode ficar vazio",
		CodePlayerNotFound:       "Jogador não encontrado neste jogo",
		CodePlayerAlreadyJoined:  "Você já tem um assento neste jogo",
		CodePlayerInactive:       "O jogador saiu deste jogo",
		CodePlayerHostRequired:   "Apenas o anfitrião pode executar esta operação",
		CodePlayerMemberRequired: "Apenas um membro do jogo pode executar esta operação",

		// Persona errors
		CodePersonaNameEmpty:      "O nome do persona não pode ficar vazio",
		CodePersonaScriptRequired: "Personas NPC exigem uma ação roteirizada",
		CodePersonaNotFound:       "Persona não encontrado",
		CodePersonaAlreadyClaimed: "O persona já foi reivindicado por outro jogador",
		CodePersonaSharingOff:     "O compartilhamento de personas está desativado neste jogo",

		// Round errors
		CodeRoundNotFound:  "Rodada não encontrada",
		CodeRoundNoActions: "A rodada não tem ações para completar",
		CodeRoundNotOpen:   "A rodada não está em andamento",

		// Action errors
		CodeActionNotFound:          "Ação não encontrada",
		CodeActionDescriptionEmpty:  "A descrição da ação não pode ficar vazia",
		CodeActionStatusDisallowsOp: "O status {{.Status}} da ação não permite {{.Operation}}",
		CodeActionAlreadyResolved:   "A ação já foi resolvida",
		CodeActionProposalExists:    "Sua unidade já propôs uma ação nesta rodada",
		CodeActionInitiatorRequired: "Apenas o iniciador da ação pode executar esta operação",

		// Argument errors
		CodeArgumentNotFound:       "Argumento não encontrado",
		CodeArgumentContentEmpty:   "O conteúdo do argumento não pode ficar vazio",
		CodeArgumentInvalidType:    "Tipo de argumento inválido",
		CodeArgumentTypeRestricted: "O tipo de argumento {{.Type}} não é permitido para este jogador",
		CodeArgumentLimitReached:   "O limite de {{.Limit}} argumentos foi atingido",
		CodeArgumentEditDenied:     "Você só pode editar seus próprios argumentos",

		// Vote errors
		CodeVoteInvalidType:     "Tipo de voto inválido",
		CodeVoteExists:          "Você já votou nesta ação",
		CodeVotePersonaCast:     "Seu persona já votou nesta ação",
		CodeVoteThresholdNotMet: "Os votos ainda não atingiram o limite de unidades em ação",

		// Narration errors
		CodeNarrationContentEmpty: "O conteúdo da narração não pode ficar vazio",
		CodeNarrationExists:       "A ação já foi narrada",
		CodeNarrationDenied:       "Você não pode narrar esta ação",

		// Resolution errors
		CodeResolutionUnknownMethod:   "O método de resolução {{.Method}} não é reconhecido",
		CodeResolutionArbiterRequired: "Apenas o árbitro pode executar esta operação",
		CodeResolutionNotReviewable:   "A ação não está aguardando revisão do árbitro",

		// Invite errors
		CodeInviteNotFound:          "Convite não encontrado",
		CodeInviteEmptyGameID:       "O ID do jogo é obrigatório para o convite",
		CodeInviteJoinGrantInvalid:  "O token de entrada é inválido",
		CodeInviteJoinGrantExpired:  "O token de entrada expirou",
		CodeInviteJoinGrantMismatch: "O campo {{.Field}} do token de entrada não confere",
		CodeInviteJoinGrantUsed:     "O token de entrada já foi usado",

		// Listing errors
		CodeAuditFilterInvalid: "A expressão de filtro de auditoria é inválida",
		CodePageTokenInvalid:   "O token de página é inválido",

		// Transport errors
		CodeRequestInvalid:        "A solicitação não pôde ser interpretada",
		CodeIdentityTokenRequired: "Autenticação é necessária",
		CodeIdentityTokenInvalid:  "O token de autenticação é inválido ou expirou",

		// Storage errors
		CodeNotFound: "O recurso solicitado não foi encontrado",
		CodeConflict: "A solicitação conflita com o estado atual",
	},
}
