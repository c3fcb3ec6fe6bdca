package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	sess := NewSession("ag-1", "+49123")
	assert.Equal(t, StateIdle, sess.State)
	assert.NoError(t, sess.Validate())

	sess.SetFocus(EntityRef{ID: "ent-1", Code: "SC1", Name: "Summer Campaign"})
	assert.Equal(t, StateFocused, sess.State)
	require.NotNil(t, sess.Focus)
	assert.NoError(t, sess.Validate())

	sess.ClearFocus()
	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.Focus)
}

func TestSessionProposeAndResolve(t *testing.T) {
	sess := NewSession("ag-1", "+49123")
	sess.SetFocus(EntityRef{ID: "ent-1", Code: "SC1", Name: "Summer Campaign"})

	sess.Propose(PendingAction{
		ID:      "p-1",
		Type:    PendingEdit,
		Payload: map[string]string{"budget": "50000"},
	})
	assert.Equal(t, StateConfirming, sess.State)
	assert.Equal(t, StateFocused, sess.PrevState)
	assert.NoError(t, sess.Validate())

	sess.ResolvePending()
	assert.Equal(t, StateFocused, sess.State)
	assert.Nil(t, sess.Pending)
	assert.Empty(t, sess.PrevState)
	assert.NoError(t, sess.Validate())
}

func TestSessionValidateCatchesViolations(t *testing.T) {
	sess := NewSession("ag-1", "+49123")

	sess.State = StateFocused // no focus set
	assert.Error(t, sess.Validate())

	sess.State = StateConfirming // no pending set
	assert.Error(t, sess.Validate())

	sess.State = StateIdle
	sess.Pending = &PendingAction{ID: "p-1", Type: PendingEdit}
	assert.Error(t, sess.Validate())
}

func TestSessionCloneIsDeep(t *testing.T) {
	sess := NewSession("ag-1", "+49123")
	sess.SetFocus(EntityRef{ID: "ent-1", Code: "SC1", Name: "Summer Campaign"})
	sess.Draft = map[string]string{"name": "Draft"}
	sess.Propose(PendingAction{ID: "p-1", Type: PendingEdit, Payload: map[string]string{"budget": "1"}})

	clone := sess.Clone()
	clone.Focus.Name = "Changed"
	clone.Draft["name"] = "Changed"
	clone.Pending.Payload["budget"] = "2"

	assert.Equal(t, "Summer Campaign", sess.Focus.Name)
	assert.Equal(t, "Draft", sess.Draft["name"])
	assert.Equal(t, "1", sess.Pending.Payload["budget"])
}

func TestSessionExpiry(t *testing.T) {
	sess := NewSession("ag-1", "+49123")
	now := time.Now()

	sess.LastActivityAt = now.Add(-16 * time.Minute)
	assert.True(t, sess.ExpiredAt(now, 15*time.Minute))

	sess.Touch()
	assert.False(t, sess.ExpiredAt(time.Now(), 15*time.Minute))
}

func TestValidIntentType(t *testing.T) {
	assert.True(t, ValidIntentType(IntentConfirm))
	assert.True(t, ValidIntentType(IntentUnknown))
	assert.False(t, ValidIntentType(IntentType("delete_everything")))
	assert.False(t, ValidIntentType(IntentType("")))
}

func TestSessionKeyNamespacesPerAgent(t *testing.T) {
	a := SessionKey("ag-1", "+49123")
	b := SessionKey("ag-2", "+49123")
	assert.NotEqual(t, a, b)
}
