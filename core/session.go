package core

import (
	"context"
	"fmt"
	"time"
)

// SessionState enumerates the positions of the conversational state machine.
// Transitions between states are owned exclusively by the dispatch package.
type SessionState string

const (
	// StateIdle is the resting state: no entity focused, nothing pending.
	StateIdle SessionState = "idle"
	// StateBrowsing means the operator was just shown the entity overview.
	StateBrowsing SessionState = "browsing"
	// StateFocused means exactly one entity is in focus; context commands
	// (search, report, edit) apply to it.
	StateFocused SessionState = "focused"
	// StateCreating collects free-text field values for a new entity.
	StateCreating SessionState = "creating"
	// StateEditing collects free-text field changes for the focused entity.
	StateEditing SessionState = "editing"
	// StateConfirming holds a proposed mutation awaiting an explicit yes/no.
	StateConfirming SessionState = "confirming"
	// StateRunning marks an in-flight domain action. Sessions are never
	// persisted in this state; it exists only inside a single dispatch.
	StateRunning SessionState = "running"
)

// EntityRef is the minimal projection of a business entity carried inside a
// session: enough to address the entity and to render it back to the operator.
type EntityRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// PendingActionType enumerates the mutations that may be parked for
// confirmation. The set is closed; dispatch matches exhaustively over it.
type PendingActionType string

const (
	// PendingCreate proposes the creation of a new entity from a draft.
	PendingCreate PendingActionType = "create"
	// PendingEdit proposes a field-level edit of an existing entity.
	PendingEdit PendingActionType = "edit"
)

// PendingAction is a proposed mutation awaiting explicit confirmation. It is
// nested inside Session and never independently addressable. Payload maps
// field names to their new values ("set field to X" semantics) so that
// applying the same pending action twice is safe.
type PendingAction struct {
	ID        string            `json:"id"`
	Type      PendingActionType `json:"type"`
	EntityID  string            `json:"entity_id,omitempty"`
	Payload   map[string]string `json:"payload"`
	Preview   string            `json:"preview"`
	CreatedAt time.Time         `json:"created_at"`
}

// Session is the per-identity conversational state reconstructed across
// stateless inbound events. One live session exists per (agent, identity)
// pair; reads and writes are last-write-wins.
//
// Contract:
//   - State == StateFocused implies Focus != nil
//   - State == StateConfirming if and only if Pending != nil
//   - Save refreshes the sliding TTL window; an expired session is treated
//     as absent on the next Load
//
// The struct is flat and JSON-serializable so it can be written as a single
// value into a TTL key-value backend.
type Session struct {
	// Identity is the channel identity of the end user (sender address).
	Identity string `json:"identity"`
	// AgentID is the operator account owning the entities under management.
	AgentID string `json:"agent_id"`

	State SessionState `json:"state"`
	// PrevState is the state to return to when a confirmation resolves.
	PrevState SessionState `json:"prev_state,omitempty"`

	Focus    *EntityRef `json:"focus,omitempty"`
	SubState string     `json:"sub_state,omitempty"`

	// LastActionToken references the most recent long-running action result
	// (staged artifact), letting a later message refer to "it" implicitly.
	LastActionToken string `json:"last_action_token,omitempty"`

	Pending *PendingAction `json:"pending,omitempty"`

	// Draft accumulates free-text field values during create/edit flows.
	Draft map[string]string `json:"draft,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewSession creates a fresh idle session for the given agent and identity.
func NewSession(agentID, identity string) *Session {
	now := time.Now().UTC()
	return &Session{
		Identity:       identity,
		AgentID:        agentID,
		State:          StateIdle,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Key returns the storage key for the session, namespacing identities per agent.
func (s *Session) Key() string { return SessionKey(s.AgentID, s.Identity) }

// SessionKey builds the storage key for an (agent, identity) pair.
func SessionKey(agentID, identity string) string {
	return fmt.Sprintf("sess:%s:%s", agentID, identity)
}

// Touch refreshes the activity timestamp, extending the sliding TTL window.
func (s *Session) Touch() { s.LastActivityAt = time.Now().UTC() }

// ExpiredAt reports whether the session's sliding TTL window has elapsed at
// the given instant.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivityAt) > ttl
}

// SetFocus places an entity in focus and moves the session to StateFocused.
func (s *Session) SetFocus(ref EntityRef) {
	s.Focus = &ref
	s.State = StateFocused
	s.SubState = ""
}

// ClearFocus drops the focused entity and returns the session to StateIdle.
func (s *Session) ClearFocus() {
	s.Focus = nil
	s.SubState = ""
	s.State = StateIdle
}

// Propose parks a mutation for confirmation, remembering the state to return
// to once the operator answers.
func (s *Session) Propose(p PendingAction) {
	s.PrevState = s.State
	s.Pending = &p
	s.State = StateConfirming
}

// ResolvePending clears the pending action and restores the pre-confirmation
// state. It is called both on confirm (after execution) and on cancel.
func (s *Session) ResolvePending() {
	s.Pending = nil
	if s.PrevState != "" {
		s.State = s.PrevState
	} else {
		s.State = StateIdle
	}
	s.PrevState = ""
}

// Validate checks the session invariants. A violation indicates a programming
// error in dispatch, not bad user input.
func (s *Session) Validate() error {
	if s.State == StateFocused && s.Focus == nil {
		return fmt.Errorf("session %s: focused without a focus entity", s.Key())
	}
	if (s.State == StateConfirming) != (s.Pending != nil) {
		return fmt.Errorf("session %s: confirming/pending mismatch", s.Key())
	}
	return nil
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Focus != nil {
		f := *s.Focus
		clone.Focus = &f
	}
	if s.Pending != nil {
		p := *s.Pending
		p.Payload = make(map[string]string, len(s.Pending.Payload))
		for k, v := range s.Pending.Payload {
			p.Payload[k] = v
		}
		clone.Pending = &p
	}
	if s.Draft != nil {
		clone.Draft = make(map[string]string, len(s.Draft))
		for k, v := range s.Draft {
			clone.Draft[k] = v
		}
	}
	return &clone
}

// SessionStore persists sessions keyed by (agent, identity) with a sliding
// TTL refreshed on every Save.
//
// Load returns (nil, nil) when no live session exists for the identity; the
// caller then starts a fresh idle session. Implementations must return
// defensive copies so callers can mutate freely.
type SessionStore interface {
	Load(ctx context.Context, agentID, identity string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, agentID, identity string) error
}
