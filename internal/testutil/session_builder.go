package testutil

import (
	"time"

	"github.com/hupe1980/entitydesk/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("ag-1", "+4912345").Focused("e1", "SC1", "Summer Campaign").Build()
type SessionBuilder struct {
	agentID  string
	identity string
	state    core.SessionState
	prev     core.SessionState
	focus    *core.EntityRef
	subState string
	token    string
	pending  *core.PendingAction
	draft    map[string]string
	lastSeen *time.Time
}

// NewSessionBuilder creates a builder for a session owned by the given agent
// and end-user identity. Use chainable methods, then call Build.
func NewSessionBuilder(agentID, identity string) *SessionBuilder {
	return &SessionBuilder{agentID: agentID, identity: identity, state: core.StateIdle}
}

// State forces the session state (chainable).
func (b *SessionBuilder) State(s core.SessionState) *SessionBuilder { b.state = s; return b }

// Focused sets an entity in focus and moves the state to StateFocused (chainable).
func (b *SessionBuilder) Focused(id, code, name string) *SessionBuilder {
	b.focus = &core.EntityRef{ID: id, Code: code, Name: name}
	b.state = core.StateFocused
	return b
}

// SubState sets the sub-flow marker (chainable).
func (b *SessionBuilder) SubState(s string) *SessionBuilder { b.subState = s; return b }

// ActionToken sets the last action token (chainable).
func (b *SessionBuilder) ActionToken(t string) *SessionBuilder { b.token = t; return b }

// Pending parks a pending action and moves the state to StateConfirming,
// recording the current state as the one to return to (chainable).
func (b *SessionBuilder) Pending(p core.PendingAction) *SessionBuilder {
	b.prev = b.state
	b.pending = &p
	b.state = core.StateConfirming
	return b
}

// Draft sets a draft field collected during create/edit flows (chainable).
func (b *SessionBuilder) Draft(key, val string) *SessionBuilder {
	if b.draft == nil {
		b.draft = map[string]string{}
	}
	b.draft[key] = val
	return b
}

// LastSeen overrides the activity timestamp, for TTL expiry tests (chainable).
func (b *SessionBuilder) LastSeen(t time.Time) *SessionBuilder { b.lastSeen = &t; return b }

// Build returns the assembled *core.Session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.agentID, b.identity)
	s.State = b.state
	s.PrevState = b.prev
	s.Focus = b.focus
	s.SubState = b.subState
	s.LastActionToken = b.token
	s.Pending = b.pending
	s.Draft = b.draft
	if b.lastSeen != nil {
		s.LastActivityAt = *b.lastSeen
	}
	return s
}
