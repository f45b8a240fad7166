// Package render turns stored notification rows into localized copy.
package render

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Notification kinds the game engine publishes. Values mirror the engine's
// notify vocabulary.
const (
	KindGameStarted        = "game_started"
	KindPlayerJoined       = "player_joined"
	KindPlayerLeft         = "player_left"
	KindActionProposed     = "action_proposed"
	KindVotingOpened       = "voting_opened"
	KindActionResolved     = "action_resolved"
	KindActionNarrated     = "action_narrated"
	KindRoundCompleted     = "round_completed"
	KindPhaseTimeout       = "phase_timeout"
	KindHostActionRequired = "host_action_required"
)

// Catalog locale keys copy is pre-rendered for.
const (
	LocaleEnglish      = "en"
	LocalePortugueseBR = "pt-BR"
)

const (
	defaultGenericTitle  = "Notification"
	defaultGenericBody   = "You have a new game update."
	defaultSomeoneLabel  = "A player"
	defaultYourGameLabel = "Your game"
	defaultActionLabel   = "an action"
)

var (
	catalogTags = []language.Tag{language.English, language.MustParse("pt-BR")}
	matcher     = language.NewMatcher(catalogTags)
)

// Input is one render request for a stored notification row.
type Input struct {
	Kind        string
	PayloadJSON string
}

// Output is localized copy for one notification row.
type Output struct {
	Title string
	Body  string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// SupportedLocales lists the locale keys with a registered catalog.
func SupportedLocales() []string {
	return []string{LocaleEnglish, LocalePortugueseBR}
}

// MatchLocale maps an arbitrary locale token to the closest catalog locale.
// Unparseable or unmatched tokens resolve to English.
func MatchLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return LocaleEnglish
	}
	_, index, _ := matcher.Match(tag)
	if index == 1 {
		return LocalePortugueseBR
	}
	return LocaleEnglish
}

// PrinterFor returns a message printer for the closest catalog locale.
func PrinterFor(locale string) *message.Printer {
	if MatchLocale(locale) == LocalePortugueseBR {
		return message.NewPrinter(catalogTags[1])
	}
	return message.NewPrinter(catalogTags[0])
}

// Render returns localized copy for one notification row. Rows whose payload
// cannot carry the kind's copy degrade to generic copy instead of failing.
func Render(loc Localizer, input Input) Output {
	fields, ok := parsePayload(input.PayloadJSON)
	if !ok {
		return genericOutput(loc)
	}

	switch normalizeToken(input.Kind) {
	case KindGameStarted:
		name := fields.valueOr("game_name", localizeWithFallback(loc, "notification.common.your_game", defaultYourGameLabel))
		return kindOutput(loc, KindGameStarted, name)
	case KindPlayerJoined:
		return kindOutput(loc, KindPlayerJoined, actorLabel(loc, fields, "player_name"))
	case KindPlayerLeft:
		return kindOutput(loc, KindPlayerLeft, actorLabel(loc, fields, "player_name"))
	case KindActionProposed:
		initiator := actorLabel(loc, fields, "initiator_name")
		description := fields.valueOr("description", localizeWithFallback(loc, "notification.common.an_action", defaultActionLabel))
		return kindOutput(loc, KindActionProposed, initiator, description)
	case KindVotingOpened:
		return kindOutput(loc, KindVotingOpened)
	case KindActionResolved:
		tier, ok := localizedResultTier(loc, fields.value("result"))
		if !ok {
			return genericOutput(loc)
		}
		return kindOutput(loc, KindActionResolved, tier)
	case KindActionNarrated:
		return kindOutput(loc, KindActionNarrated, actorLabel(loc, fields, "narrator"))
	case KindRoundCompleted:
		number := fields.value("round_number")
		if number == "" {
			return genericOutput(loc)
		}
		return kindOutput(loc, KindRoundCompleted, number)
	case KindPhaseTimeout:
		phase, ok := localizedPhaseName(loc, fields.value("phase"))
		if !ok {
			return genericOutput(loc)
		}
		return kindOutput(loc, KindPhaseTimeout, phase)
	case KindHostActionRequired:
		phase, ok := localizedPhaseName(loc, fields.value("phase"))
		if !ok {
			return genericOutput(loc)
		}
		return kindOutput(loc, KindHostActionRequired, phase)
	default:
		return genericOutput(loc)
	}
}

type payloadFields map[string]string

func parsePayload(raw string) (payloadFields, bool) {
	fields := payloadFields{}
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			return nil, false
		}
	}
	return fields, true
}

func (f payloadFields) value(key string) string {
	return strings.TrimSpace(f[key])
}

func (f payloadFields) valueOr(key, fallback string) string {
	if value := f.value(key); value != "" {
		return value
	}
	return fallback
}

// kindOutput localizes the title and body keys for one kind. A missing title
// entry means the catalog does not know the kind, so copy degrades to generic.
func kindOutput(loc Localizer, kind string, args ...any) Output {
	titleKey := "notification." + kind + ".title"
	title := localize(loc, titleKey)
	if title == titleKey || title == "" {
		return genericOutput(loc)
	}
	return Output{
		Title: title,
		Body:  localize(loc, "notification."+kind+".body", args...),
	}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title: localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
		Body:  localizeWithFallback(loc, "notification.generic.body", defaultGenericBody),
	}
}

func actorLabel(loc Localizer, fields payloadFields, key string) string {
	return fields.valueOr(key, localizeWithFallback(loc, "notification.common.someone", defaultSomeoneLabel))
}

func localizedResultTier(loc Localizer, raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRIUMPH":
		return localizeWithFallback(loc, "notification.result.triumph", "a triumph"), true
	case "SUCCESS_BUT":
		return localizeWithFallback(loc, "notification.result.success_but", "a success at a cost"), true
	case "FAILURE_BUT":
		return localizeWithFallback(loc, "notification.result.failure_but", "a failure with an opening"), true
	case "DISASTER":
		return localizeWithFallback(loc, "notification.result.disaster", "a disaster"), true
	case "":
		return "", false
	default:
		return localizeWithFallback(loc, "notification.result.unknown", "an uncertain outcome"), true
	}
}

func localizedPhaseName(loc Localizer, raw string) (string, bool) {
	switch normalizeToken(raw) {
	case "proposal":
		return localizeWithFallback(loc, "notification.phase.proposal", "proposal"), true
	case "argumentation":
		return localizeWithFallback(loc, "notification.phase.argumentation", "argumentation"), true
	case "voting":
		return localizeWithFallback(loc, "notification.phase.voting", "voting"), true
	case "narration":
		return localizeWithFallback(loc, "notification.phase.narration", "narration"), true
	case "":
		return "", false
	default:
		// Unknown labels pass through so copy still reads.
		return normalizeToken(raw), true
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
