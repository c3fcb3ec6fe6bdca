package intent

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/logging"
	"github.com/hupe1980/entitydesk/nlu"
	"github.com/hupe1980/entitydesk/resolver"
)

// Confidence levels per resolution layer. Discrete selections are
// unambiguous; everything below reflects decreasing certainty.
const (
	confidenceChoice  = 1.0
	confidencePattern = 0.95
	confidenceCode    = 0.9
)

// DefaultNLUTimeout bounds the external classification call. When it
// elapses the parser degrades to pattern-only classification (Unknown).
const DefaultNLUTimeout = 5 * time.Second

// Input is the normalized inbound payload handed to Parse. Audio has
// already been transcribed into Text by the voice bridge at this point.
type Input struct {
	Kind     core.EventKind
	Text     string
	ChoiceID string
}

// Context is the session-derived context influencing classification.
type Context struct {
	State core.SessionState
	Focus *core.EntityRef
	// Candidates are the agent's entities, used to build the compact NLU
	// context summary. Only display names leave the process.
	Candidates []core.BusinessEntity
}

// Options configure a Parser.
type Options struct {
	// Classifier is the external NLU capability. Nil disables layer 4;
	// unmatched text then classifies as Unknown.
	Classifier nlu.Classifier
	// NLUTimeout bounds each classification call (DefaultNLUTimeout if unset).
	NLUTimeout time.Duration
	// Logger receives classification telemetry (NoOp if unset).
	Logger logging.Logger
}

// Parser implements the layered intent resolution. It is stateless and safe
// for concurrent use.
type Parser struct {
	classifier nlu.Classifier
	nluTimeout time.Duration
	logger     logging.Logger
}

// New constructs a Parser with optional overrides.
func New(optFns ...func(o *Options)) *Parser {
	opts := Options{NLUTimeout: DefaultNLUTimeout, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Parser{classifier: opts.Classifier, nluTimeout: opts.NLUTimeout, logger: opts.Logger}
}

// Parse classifies one inbound event. It always returns exactly one intent;
// failures in the external capability never propagate, they degrade to
// IntentUnknown.
func (p *Parser) Parse(ctx context.Context, in Input, pctx Context) core.Intent {
	if in.Kind == core.EventChoice {
		return p.parseChoice(in.ChoiceID)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return core.Intent{Type: core.IntentUnknown, Confidence: confidencePattern}
	}

	if it, ok := p.parsePattern(text, pctx); ok {
		return it
	}
	if it, ok := parseCodeReference(text); ok {
		return it
	}

	// Free text inside a collecting sub-flow is that flow's payload; the
	// NLU capability has nothing to add and would only misfire on field
	// values like "name: Summer Sale".
	if pctx.State == core.StateCreating || pctx.State == core.StateEditing {
		return core.Intent{Type: core.IntentUnknown, RawText: text, Confidence: confidencePattern}
	}

	return p.classify(ctx, text, pctx)
}

// parseChoice maps a discrete selection id to an intent. O(1), unambiguous,
// highest confidence. Unrecognized ids classify as Unknown rather than
// guessing.
func (p *Parser) parseChoice(id string) core.Intent {
	if entityID, ok := strings.CutPrefix(id, core.ChoicePickPrefix); ok {
		return core.Intent{
			Type:             core.IntentSelectEntity,
			ResolvedEntityID: entityID,
			Confidence:       confidenceChoice,
		}
	}
	if action, ok := strings.CutPrefix(id, core.ChoiceActionPrefix); ok {
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: map[string]any{"action": action},
			Confidence: confidenceChoice,
		}
	}

	switch id {
	case core.ChoiceViewEntities:
		return core.Intent{Type: core.IntentViewEntities, Confidence: confidenceChoice}
	case core.ChoiceCreateEntity:
		return core.Intent{Type: core.IntentCreateEntity, Confidence: confidenceChoice}
	case core.ChoiceExitFocus:
		return core.Intent{Type: core.IntentExitFocus, Confidence: confidenceChoice}
	case core.ChoiceConfirm:
		return core.Intent{Type: core.IntentConfirm, Confidence: confidenceChoice}
	case core.ChoiceCancel:
		return core.Intent{Type: core.IntentCancel, Confidence: confidenceChoice}
	case core.ChoiceHelp:
		return core.Intent{Type: core.IntentHelp, Confidence: confidenceChoice}
	case core.ChoiceSendArtifact:
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: map[string]any{"action": string(core.ActionSend)},
			Confidence: confidenceChoice,
		}
	}
	return core.Intent{Type: core.IntentUnknown, RawText: id, Confidence: confidenceChoice}
}

// classify delegates to the external NLU capability and validates the result
// as untrusted input.
func (p *Parser) classify(ctx context.Context, text string, pctx Context) core.Intent {
	unknown := core.Intent{Type: core.IntentUnknown, RawText: text}
	if p.classifier == nil {
		return unknown
	}

	cctx := nlu.Context{SessionState: string(pctx.State)}
	if pctx.Focus != nil {
		cctx.FocusedEntity = pctx.Focus.Name
	}
	for i, e := range pctx.Candidates {
		if i == nlu.MaxCandidates {
			break
		}
		cctx.Candidates = append(cctx.Candidates, e.DisplayName)
	}

	cctx2, cancel := context.WithTimeout(ctx, p.nluTimeout)
	defer cancel()

	start := time.Now()
	res, err := p.classifier.Classify(cctx2, text, cctx)
	if err != nil {
		p.logger.Warn("classification failed, degrading to pattern-only",
			"provider", p.classifier.Provider(), "duration", time.Since(start), "error", err)
		return unknown
	}

	it, err := coerceResult(res, text)
	if err != nil {
		p.logger.Warn("classifier returned invalid payload, coercing to unknown",
			"provider", p.classifier.Provider(), "error", err)
		return unknown
	}
	p.logger.Debug("classification completed",
		"provider", p.classifier.Provider(), "intent", string(it.Type),
		"confidence", it.Confidence, "duration", time.Since(start))
	return it
}

// parseCodeReference handles layer 3: a bare short-code token, optionally
// fused with a known one-word shortcut ("SC1 s" selects SC1 then runs the
// search action).
func parseCodeReference(text string) (core.Intent, bool) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || len(tokens) > 2 || !resolver.IsCode(tokens[0]) {
		return core.Intent{}, false
	}

	sel := core.Intent{
		Type:            core.IntentSelectEntity,
		EntityReference: strings.ToUpper(tokens[0]),
		RawText:         text,
		Confidence:      confidenceCode,
	}
	if len(tokens) == 1 {
		return sel, true
	}

	followup, ok := shortcutIntent(strings.ToLower(tokens[1]))
	if !ok {
		return core.Intent{}, false
	}
	sel.Followup = &followup
	return sel, true
}

// shortcutIntent maps the one-word shortcuts fuseable with a code reference.
func shortcutIntent(word string) (core.Intent, bool) {
	switch word {
	case "s", "search":
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: map[string]any{"action": string(core.ActionSearch)},
			Confidence: confidenceCode,
		}, true
	case "r", "report":
		return core.Intent{
			Type:       core.IntentRunAction,
			Parameters: map[string]any{"action": string(core.ActionReport)},
			Confidence: confidenceCode,
		}, true
	case "e", "edit":
		return core.Intent{Type: core.IntentProposeMutation, Confidence: confidenceCode}, true
	}
	return core.Intent{}, false
}
