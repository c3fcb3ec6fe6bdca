package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/nlu"
)

func TestParseChoiceIDs(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		choiceID string
		expected core.IntentType
	}{
		{"pick:ent-1", core.IntentSelectEntity},
		{"action:search", core.IntentRunAction},
		{"action:report", core.IntentRunAction},
		{"view", core.IntentViewEntities},
		{"create", core.IntentCreateEntity},
		{"exit", core.IntentExitFocus},
		{"confirm", core.IntentConfirm},
		{"cancel", core.IntentCancel},
		{"help", core.IntentHelp},
		{"send", core.IntentRunAction},
		{"bogus-id", core.IntentUnknown},
	}
	for _, tt := range tests {
		it := p.Parse(ctx, Input{Kind: core.EventChoice, ChoiceID: tt.choiceID}, Context{})
		assert.Equal(t, tt.expected, it.Type, "choice %q", tt.choiceID)
		assert.Equal(t, 1.0, it.Confidence, "choice %q", tt.choiceID)
	}

	it := p.Parse(ctx, Input{Kind: core.EventChoice, ChoiceID: "pick:ent-7"}, Context{})
	assert.Equal(t, "ent-7", it.ResolvedEntityID)

	it = p.Parse(ctx, Input{Kind: core.EventChoice, ChoiceID: "action:report"}, Context{})
	assert.Equal(t, "report", it.Param("action"))

	it = p.Parse(ctx, Input{Kind: core.EventChoice, ChoiceID: "send"}, Context{})
	assert.Equal(t, "send", it.Param("action"))
}

func TestParseExactPatterns(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		text     string
		expected core.IntentType
	}{
		{"all", core.IntentViewEntities},
		{"ALL", core.IntentViewEntities},
		{"list all", core.IntentViewEntities},
		{"  help  ", core.IntentHelp},
		{"yes", core.IntentConfirm},
		{"Yes!", core.IntentConfirm},
		{"no", core.IntentCancel},
		{"create", core.IntentCreateEntity},
		{"done", core.IntentExitFocus},
		{"reset", core.IntentReset},
		{"start over", core.IntentReset},
	}
	for _, tt := range tests {
		it := p.Parse(ctx, Input{Kind: core.EventText, Text: tt.text}, Context{State: core.StateIdle})
		assert.Equal(t, tt.expected, it.Type, "text %q", tt.text)
	}
}

func TestParseContextWordsRequireFocus(t *testing.T) {
	p := New()
	ctx := context.Background()
	focused := Context{
		State: core.StateFocused,
		Focus: &core.EntityRef{ID: "ent-1", Code: "SC1", Name: "Summer Campaign"},
	}

	it := p.Parse(ctx, Input{Kind: core.EventText, Text: "search spring offers"}, focused)
	require.Equal(t, core.IntentRunAction, it.Type)
	assert.Equal(t, "search", it.Param("action"))
	assert.Equal(t, "spring offers", it.Param("query"))

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "report"}, focused)
	assert.Equal(t, core.IntentRunAction, it.Type)
	assert.Equal(t, "report", it.Param("action"))

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "send it"}, focused)
	assert.Equal(t, core.IntentRunAction, it.Type)
	assert.Equal(t, "send", it.Param("action"))

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "edit"}, focused)
	assert.Equal(t, core.IntentProposeMutation, it.Type)

	// Without focus and without a classifier the same words are unknown.
	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "report"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)
}

func TestParseCodeReference(t *testing.T) {
	p := New()
	ctx := context.Background()

	it := p.Parse(ctx, Input{Kind: core.EventText, Text: "SC1"}, Context{State: core.StateIdle})
	require.Equal(t, core.IntentSelectEntity, it.Type)
	assert.Equal(t, "SC1", it.EntityReference)
	assert.Nil(t, it.Followup)

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "sc1"}, Context{State: core.StateIdle})
	assert.Equal(t, "SC1", it.EntityReference, "codes normalize to uppercase")
}

func TestParseCodeShortcutFusion(t *testing.T) {
	p := New()
	ctx := context.Background()

	it := p.Parse(ctx, Input{Kind: core.EventText, Text: "SC1 s"}, Context{State: core.StateIdle})
	require.Equal(t, core.IntentSelectEntity, it.Type)
	assert.Equal(t, "SC1", it.EntityReference)
	require.NotNil(t, it.Followup)
	assert.Equal(t, core.IntentRunAction, it.Followup.Type)
	assert.Equal(t, "search", it.Followup.Param("action"))

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "NE2 report"}, Context{State: core.StateIdle})
	require.NotNil(t, it.Followup)
	assert.Equal(t, "report", it.Followup.Param("action"))

	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "SC1 e"}, Context{State: core.StateIdle})
	require.NotNil(t, it.Followup)
	assert.Equal(t, core.IntentProposeMutation, it.Followup.Type)
}

func TestParseCodeWithUnknownSuffixFallsThrough(t *testing.T) {
	p := New()
	ctx := context.Background()

	// "SC1 banana" is not a code+shortcut pair; without a classifier the
	// parser reports unknown instead of guessing a selection.
	it := p.Parse(ctx, Input{Kind: core.EventText, Text: "SC1 banana"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)
	assert.Equal(t, "SC1 banana", it.RawText)
}

func TestParseDelegatesToClassifier(t *testing.T) {
	mock := nlu.NewMockClassifier().Script("increase budget by 50k", nlu.Result{
		Intent:     "propose_mutation",
		Parameters: map[string]any{"field": "budget", "value": "50000"},
		Confidence: 0.85,
	})
	p := New(func(o *Options) { o.Classifier = mock })

	it := p.Parse(context.Background(), Input{Kind: core.EventText, Text: "increase budget by 50k"}, Context{
		State: core.StateFocused,
		Focus: &core.EntityRef{ID: "ent-1", Code: "SC1", Name: "Summer Campaign"},
	})
	require.Equal(t, core.IntentProposeMutation, it.Type)
	assert.Equal(t, "budget", it.Param("field"))
	assert.Equal(t, "50000", it.Param("value"))
	assert.Equal(t, 0.85, it.Confidence)
	assert.Equal(t, 1, mock.Calls)
}

func TestParseRejectsInvalidClassifierOutput(t *testing.T) {
	ctx := context.Background()

	// Intent outside the closed set.
	mock := nlu.NewMockClassifier().Script("wipe everything", nlu.Result{
		Intent:     "delete_everything",
		Confidence: 0.99,
	})
	p := New(func(o *Options) { o.Classifier = mock })
	it := p.Parse(ctx, Input{Kind: core.EventText, Text: "wipe everything"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)

	// Missing required parameter.
	mock = nlu.NewMockClassifier().Script("run something", nlu.Result{
		Intent:     "run_action",
		Confidence: 0.9,
	})
	p = New(func(o *Options) { o.Classifier = mock })
	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "run something"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)

	// Wrong parameter type.
	mock = nlu.NewMockClassifier().Script("search stuff", nlu.Result{
		Intent:     "run_action",
		Parameters: map[string]any{"action": 42},
		Confidence: 0.9,
	})
	p = New(func(o *Options) { o.Classifier = mock })
	it = p.Parse(ctx, Input{Kind: core.EventText, Text: "search stuff"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)
}

func TestParseClampsOutOfRangeConfidence(t *testing.T) {
	mock := nlu.NewMockClassifier().Script("show my stuff", nlu.Result{
		Intent:     "view_entities",
		Confidence: 7.5,
	})
	p := New(func(o *Options) { o.Classifier = mock })

	it := p.Parse(context.Background(), Input{Kind: core.EventText, Text: "show my stuff"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentViewEntities, it.Type)
	assert.Equal(t, 0.0, it.Confidence)
}

func TestParseDegradesOnClassifierError(t *testing.T) {
	mock := nlu.NewMockClassifier()
	mock.Err = errors.New("rate limited")
	p := New(func(o *Options) { o.Classifier = mock })

	it := p.Parse(context.Background(), Input{Kind: core.EventText, Text: "something fancy"}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)
	assert.Equal(t, "something fancy", it.RawText)
}

func TestParseSkipsClassifierWhileCollecting(t *testing.T) {
	mock := nlu.NewMockClassifier().Script("name: summer sale", nlu.Result{
		Intent:     "view_entities",
		Confidence: 0.9,
	})
	p := New(func(o *Options) { o.Classifier = mock })
	ctx := context.Background()

	// While a create or edit flow is collecting fields, free text is the
	// flow's payload, never a classification target.
	for _, state := range []core.SessionState{core.StateCreating, core.StateEditing} {
		it := p.Parse(ctx, Input{Kind: core.EventText, Text: "name: Summer Sale"}, Context{State: state})
		assert.Equal(t, core.IntentUnknown, it.Type, "state %s", state)
		assert.Equal(t, "name: Summer Sale", it.RawText)
	}
	assert.Equal(t, 0, mock.Calls)
}

func TestParseEmptyText(t *testing.T) {
	p := New()
	it := p.Parse(context.Background(), Input{Kind: core.EventText, Text: "   "}, Context{State: core.StateIdle})
	assert.Equal(t, core.IntentUnknown, it.Type)
}
