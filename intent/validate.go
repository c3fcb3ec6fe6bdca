package intent

import (
	"fmt"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/internal/util"
	"github.com/hupe1980/entitydesk/nlu"
)

// parameterSchemas describes the expected parameter shape per intent type.
// Classifier output is validated against these before any field of it is
// trusted; intents without an entry accept no required parameters.
var parameterSchemas = map[core.IntentType]map[string]any{
	core.IntentRunAction: {
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{"type": "string"},
			"query":  map[string]any{"type": "string"},
		},
		"required": []any{"action"},
	},
	core.IntentProposeMutation: {
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{"type": "string"},
			"value": map[string]any{"type": "string"},
		},
	},
	core.IntentSelectEntity: {
		"type": "object",
		"properties": map[string]any{
			"reference": map[string]any{"type": "string"},
		},
	},
}

// coerceResult turns a raw classifier result into a trusted core.Intent.
// Any violation of the closed intent set or the per-intent parameter schema
// is an error; the caller maps it to IntentUnknown.
func coerceResult(res nlu.Result, rawText string) (core.Intent, error) {
	t := core.IntentType(res.Intent)
	if !core.ValidIntentType(t) {
		return core.Intent{}, fmt.Errorf("intent type %q outside closed set", res.Intent)
	}

	if schema, ok := parameterSchemas[t]; ok {
		params := res.Parameters
		if params == nil {
			params = map[string]any{}
		}
		if err := util.ValidateParameters(params, schema); err != nil {
			return core.Intent{}, fmt.Errorf("parameters for %s: %w", t, err)
		}
	}

	confidence := res.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0
	}

	return core.Intent{
		Type:            t,
		EntityReference: res.EntityReference,
		Parameters:      res.Parameters,
		RawText:         rawText,
		Confidence:      confidence,
	}, nil
}
