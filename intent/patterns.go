package intent

import (
	"strings"

	"github.com/hupe1980/entitydesk/core"
)

// exactPatterns maps normalized command words available in every state.
var exactPatterns = map[string]core.IntentType{
	"help": core.IntentHelp,
	"menu": core.IntentHelp,
	"?":    core.IntentHelp,

	"all":      core.IntentViewEntities,
	"list":     core.IntentViewEntities,
	"list all": core.IntentViewEntities,
	"show all": core.IntentViewEntities,
	"entities": core.IntentViewEntities,

	"done": core.IntentExitFocus,
	"exit": core.IntentExitFocus,
	"back": core.IntentExitFocus,

	"create": core.IntentCreateEntity,
	"new":    core.IntentCreateEntity,
	"add":    core.IntentCreateEntity,

	"yes":     core.IntentConfirm,
	"y":       core.IntentConfirm,
	"ok":      core.IntentConfirm,
	"confirm": core.IntentConfirm,

	"no":     core.IntentCancel,
	"n":      core.IntentCancel,
	"cancel": core.IntentCancel,

	"reset":      core.IntentReset,
	"restart":    core.IntentReset,
	"start over": core.IntentReset,
}

// parsePattern handles layer 2: exact and near-exact command words, plus the
// context words that only exist while an entity is focused. Deterministic
// and always tried before delegating externally.
func (p *Parser) parsePattern(text string, pctx Context) (core.Intent, bool) {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.TrimRight(norm, ".!")

	if t, ok := exactPatterns[norm]; ok {
		return core.Intent{Type: t, RawText: text, Confidence: confidencePattern}, true
	}

	// Context words apply to the focused entity only; outside focus the
	// same words fall through to resolution by later layers.
	if pctx.State != core.StateFocused && pctx.State != core.StateConfirming {
		return core.Intent{}, false
	}

	word, rest, _ := strings.Cut(norm, " ")
	switch word {
	case "search", "find":
		params := map[string]any{"action": string(core.ActionSearch)}
		if rest != "" {
			params["query"] = rest
		}
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: params,
			RawText:    text,
			Confidence: confidencePattern,
		}, true
	case "report":
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: map[string]any{"action": string(core.ActionReport)},
			RawText:    text,
			Confidence: confidencePattern,
		}, true
	case "send":
		if rest == "" || rest == "it" {
			return core.Intent{
				Type:       core.IntentRunAction,
				Parameters: map[string]any{"action": string(core.ActionSend)},
				RawText:    text,
				Confidence: confidencePattern,
			}, true
		}
	case "edit", "change":
		if rest == "" {
			return core.Intent{Type: core.IntentProposeMutation, RawText: text, Confidence: confidencePattern}, true
		}
	}
	return core.Intent{}, false
}
