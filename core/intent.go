package core

// IntentType is the closed classification of a single inbound message.
// Dispatch switches exhaustively over this set; adding a member is a
// compile-time-visible change, never a stringly-typed one.
type IntentType string

const (
	// IntentViewEntities lists every entity owned by the agent.
	IntentViewEntities IntentType = "view_entities"
	// IntentSelectEntity focuses one entity, referenced by code or name.
	IntentSelectEntity IntentType = "select_entity"
	// IntentExitFocus leaves the focused entity and returns to idle.
	IntentExitFocus IntentType = "exit_focus"
	// IntentRunAction runs a read-only domain action against the focus.
	IntentRunAction IntentType = "run_action"
	// IntentProposeMutation proposes a field edit of the focused entity.
	IntentProposeMutation IntentType = "propose_mutation"
	// IntentCreateEntity starts the guided creation flow.
	IntentCreateEntity IntentType = "create_entity"
	// IntentConfirm applies the pending mutation, if any.
	IntentConfirm IntentType = "confirm"
	// IntentCancel discards the pending mutation.
	IntentCancel IntentType = "cancel"
	// IntentReset wipes the session and starts over.
	IntentReset IntentType = "reset"
	// IntentHelp asks for usage guidance.
	IntentHelp IntentType = "help"
	// IntentUnknown is the fallback for anything unclassifiable. Inside a
	// text-collecting flow it carries the raw text as payload.
	IntentUnknown IntentType = "unknown"
)

// ValidIntentType reports whether t is a member of the closed intent set.
// Used to harden the NLU boundary: anything outside the set is coerced to
// IntentUnknown before it can influence dispatch.
func ValidIntentType(t IntentType) bool {
	switch t {
	case IntentViewEntities, IntentSelectEntity, IntentExitFocus,
		IntentRunAction, IntentProposeMutation, IntentCreateEntity,
		IntentConfirm, IntentCancel, IntentReset, IntentHelp, IntentUnknown:
		return true
	}
	return false
}

// Intent is the transient result of classifying one inbound event. It is
// never persisted; only the session state derived from dispatching it is.
type Intent struct {
	Type IntentType `json:"type"`

	// EntityReference is the operator's raw reference (code or fuzzy name);
	// resolution against the directory happens after parsing.
	EntityReference string `json:"entity_reference,omitempty"`
	// ResolvedEntityID is set when the reference resolved unambiguously
	// before dispatch (discrete choice selections carry the id directly).
	ResolvedEntityID string `json:"resolved_entity_id,omitempty"`

	// Parameters carries type-specific arguments (action name, field edits).
	Parameters map[string]any `json:"parameters,omitempty"`

	RawText    string  `json:"raw_text,omitempty"`
	Confidence float64 `json:"confidence"`

	// Followup chains a second intent produced by shortcut fusion
	// (e.g. "SC1 s" selects SC1 and then runs the search action).
	Followup *Intent `json:"followup,omitempty"`
}

// Param returns the string value of a parameter, or "" when absent or not a
// string. NLU-provided parameters arrive as map[string]any.
func (i Intent) Param(key string) string {
	if i.Parameters == nil {
		return ""
	}
	if s, ok := i.Parameters[key].(string); ok {
		return s
	}
	return ""
}
