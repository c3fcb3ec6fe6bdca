package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MaxCandidates caps the candidate names included in the classification
// context so the prompt stays compact.
const MaxCandidates = 10

// Context is the compact session summary handed to the classifier alongside
// the raw text. It deliberately contains no transcript history.
type Context struct {
	// SessionState is the current state machine position ("idle", ...).
	SessionState string `json:"session_state"`
	// FocusedEntity is the display name of the focused entity, if any.
	FocusedEntity string `json:"focused_entity,omitempty"`
	// Candidates are up to MaxCandidates entity display names the reference
	// could plausibly point at.
	Candidates []string `json:"candidates,omitempty"`
}

// Result is the raw classifier output. Intent is a string, not the closed
// IntentType, on purpose: the parser validates it at the boundary and
// coerces anything invalid to Unknown.
type Result struct {
	Intent          string         `json:"intent"`
	EntityReference string         `json:"entity_reference,omitempty"`
	Parameters      map[string]any `json:"parameters,omitempty"`
	Confidence      float64        `json:"confidence"`
}

// Classifier is the external NLU capability. Implementations must respect
// ctx cancellation; the parser bounds every call with its NLU timeout and
// degrades to pattern-only classification when it elapses.
type Classifier interface {
	Classify(ctx context.Context, text string, cctx Context) (Result, error)
	// Provider names the backing implementation, for logging.
	Provider() string
}

// BuildInstructions renders the shared system prompt used by the provider
// adapters. The closed intent list is spelled out verbatim so the model has
// no room to invent types; invalid output is discarded by the parser anyway.
func BuildInstructions(cctx Context) string {
	var b strings.Builder
	b.WriteString("You classify one operator message for a business-entity management assistant.\n")
	b.WriteString("Reply with a single JSON object: {\"intent\": string, \"entity_reference\": string|null, \"parameters\": object, \"confidence\": number}.\n")
	b.WriteString("intent must be one of: view_entities, select_entity, exit_focus, run_action, propose_mutation, create_entity, confirm, cancel, reset, help, unknown.\n")
	b.WriteString("For run_action set parameters.action to \"search\" or \"report\" and put search terms in parameters.query.\n")
	b.WriteString("For propose_mutation set parameters.field and parameters.value describing the requested change.\n")
	b.WriteString("Use unknown when unsure. confidence is 0..1.\n\n")

	fmt.Fprintf(&b, "Conversation state: %s\n", cctx.SessionState)
	if cctx.FocusedEntity != "" {
		fmt.Fprintf(&b, "Focused entity: %s\n", cctx.FocusedEntity)
	}
	if len(cctx.Candidates) > 0 {
		candidates := cctx.Candidates
		if len(candidates) > MaxCandidates {
			candidates = candidates[:MaxCandidates]
		}
		fmt.Fprintf(&b, "Known entities: %s\n", strings.Join(candidates, ", "))
	}
	return b.String()
}

// DecodeResult parses a provider's raw JSON reply into a Result. Models
// occasionally wrap JSON in code fences; those are stripped before decoding.
func DecodeResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, fmt.Errorf("decode classifier output: %w", err)
	}
	return res, nil
}

// MockClassifier is a scriptable in-memory Classifier useful for tests and
// examples. Responses are matched by exact lowercased input text; unmatched
// input yields the Default result.
type MockClassifier struct {
	mu        sync.Mutex
	responses map[string]Result
	// Default is returned for unscripted input.
	Default Result
	// Err, when set, is returned for every call (simulating an outage).
	Err error
	// Calls counts invocations.
	Calls int
}

// NewMockClassifier returns a mock that answers unknown for everything.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		responses: map[string]Result{},
		Default:   Result{Intent: "unknown", Confidence: 0},
	}
}

// Script registers a canned result for the given input text.
func (m *MockClassifier) Script(text string, res Result) *MockClassifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[strings.ToLower(strings.TrimSpace(text))] = res
	return m
}

// Classify implements Classifier.
func (m *MockClassifier) Classify(ctx context.Context, text string, _ Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return Result{}, m.Err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if res, ok := m.responses[strings.ToLower(strings.TrimSpace(text))]; ok {
		return res, nil
	}
	return m.Default, nil
}

// Provider implements Classifier.
func (m *MockClassifier) Provider() string { return "mock" }
