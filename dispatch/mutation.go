package dispatch

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/internal/util"
)

// proposeMutation handles an explicit change request against the focused
// entity. With a concrete field/value pair it parks the mutation for
// confirmation right away; without one it opens the edit flow to collect it.
func (d *Dispatcher) proposeMutation(_ context.Context, it core.Intent) core.Response {
	if d.session.Focus == nil {
		return d.respond.Help(d.session.State, d.session.Focus)
	}

	field := strings.ToLower(strings.TrimSpace(it.Param("field")))
	value := strings.TrimSpace(it.Param("value"))
	if field == "" || value == "" {
		// A bare "edit" while a mutation awaits confirmation re-renders the
		// prompt; the parked mutation stays answerable.
		if d.session.State == core.StateConfirming {
			return d.respond.Help(d.session.State, d.session.Focus)
		}
		d.session.State = core.StateEditing
		return d.respond.EditPrompt(*d.session.Focus)
	}

	// A concrete field/value pair supersedes any still-unconfirmed proposal.
	d.discardPending()
	return d.parkEdit(map[string]string{field: value})
}

// parkEdit builds the pending edit for the focused entity and renders its
// preview. The pre-edit state to return to is always the focused view.
func (d *Dispatcher) parkEdit(payload map[string]string) core.Response {
	p := core.PendingAction{
		ID:        util.NewID(),
		Type:      core.PendingEdit,
		EntityID:  d.session.Focus.ID,
		Payload:   payload,
		Preview:   d.session.Focus.Name + "\n" + previewLines(payload),
		CreatedAt: time.Now().UTC(),
	}
	d.session.State = core.StateFocused
	d.session.Propose(p)
	return d.respond.MutationPreview(p)
}

// parkCreate builds the pending create from the collected draft. Cancel and
// confirm both land back in idle; the draft lives on only in the payload.
func (d *Dispatcher) parkCreate(payload map[string]string) core.Response {
	p := core.PendingAction{
		ID:        util.NewID(),
		Type:      core.PendingCreate,
		Payload:   payload,
		Preview:   previewLines(payload),
		CreatedAt: time.Now().UTC(),
	}
	d.session.Draft = nil
	d.session.State = core.StateIdle
	d.session.Propose(p)
	return d.respond.MutationPreview(p)
}

// confirm executes the pending mutation exactly once. A confirm that finds
// nothing pending (duplicate delivery, expired session) is answered without
// re-running anything.
func (d *Dispatcher) confirm(ctx context.Context) core.Response {
	if d.session.Pending == nil {
		return d.respond.NothingToConfirm()
	}
	p := *d.session.Pending

	switch p.Type {
	case core.PendingCreate:
		return d.executeCreate(ctx, p)
	case core.PendingEdit:
		return d.executeEdit(ctx, p)
	}
	// Unknown pending types cannot execute; discard rather than wedge the
	// session in the confirming state forever.
	d.logger.Error("pending action with unknown type discarded", "type", string(p.Type))
	d.session.ResolvePending()
	return d.respond.NothingToConfirm()
}

func (d *Dispatcher) executeEdit(ctx context.Context, p core.PendingAction) core.Response {
	if err := d.dir.ApplyEdit(ctx, d.agentID, p.EntityID, p.Payload); err != nil {
		// Keep the pending action: the mutation did not happen, so a retried
		// confirm must still be able to apply it.
		d.logger.Error("edit apply failed", "entity_id", p.EntityID, "error", err)
		return d.respond.Text("Could not apply the change - nothing was modified. Reply \"yes\" to retry or \"no\" to discard.")
	}
	d.session.ResolvePending()
	if name, ok := p.Payload["name"]; ok && d.session.Focus != nil && d.session.Focus.ID == p.EntityID {
		d.session.Focus.Name = name
	}
	return d.respond.Textf("Done - updated:\n%s", previewLines(p.Payload))
}

func (d *Dispatcher) executeCreate(ctx context.Context, p core.PendingAction) core.Response {
	e, err := d.dir.Create(ctx, d.agentID, p.Payload)
	if err != nil {
		d.logger.Error("entity create failed", "error", err)
		return d.respond.Text("Could not create the entity - nothing was saved. Reply \"yes\" to retry or \"no\" to discard.")
	}

	code, err := d.resolver.AssignCode(ctx, d.agentID, e.DisplayName)
	if err == nil {
		if serr := d.dir.SetShortCode(ctx, d.agentID, e.ID, code); serr != nil && serr != core.ErrCodeAlreadyAssigned {
			d.logger.Error("short code assignment failed", "entity_id", e.ID, "error", serr)
			code = ""
		}
	} else {
		d.logger.Error("short code derivation failed", "entity_id", e.ID, "error", err)
		code = ""
	}

	d.session.ResolvePending()
	if code != "" {
		return d.respond.Textf("Created %s. Its code is %s - use it to jump straight back.", e.DisplayName, code)
	}
	return d.respond.Textf("Created %s.", e.DisplayName)
}

// unknown routes unclassifiable input. Inside a collecting flow it is the
// flow's payload; anywhere else it renders help without touching state.
func (d *Dispatcher) unknown(_ context.Context, it core.Intent) core.Response {
	switch d.session.State {
	case core.StateCreating:
		return d.collectCreateDraft(it.RawText)
	case core.StateEditing:
		return d.collectEditFields(it.RawText)
	}
	return d.respond.Help(d.session.State, d.session.Focus)
}

func (d *Dispatcher) collectCreateDraft(text string) core.Response {
	fields := parseFields(text)
	if len(fields) == 0 {
		return d.respond.Text("I did not catch any details. Send them as \"field: value\" lines, e.g.\nname: Summer Campaign")
	}
	if d.session.Draft == nil {
		d.session.Draft = map[string]string{}
	}
	for k, v := range fields {
		d.session.Draft[k] = v
	}
	if d.session.Draft["name"] == "" {
		return d.respond.Text("Almost there - what is its name? (\"name: ...\")")
	}

	payload := make(map[string]string, len(d.session.Draft))
	for k, v := range d.session.Draft {
		payload[k] = v
	}
	return d.parkCreate(payload)
}

func (d *Dispatcher) collectEditFields(text string) core.Response {
	if d.session.Focus == nil {
		// Editing without focus cannot happen through dispatch; repair.
		d.session.State = core.StateIdle
		return d.respond.Help(core.StateIdle, nil)
	}
	fields := parseFields(text)
	if len(fields) == 0 {
		return d.respond.EditPrompt(*d.session.Focus)
	}
	d.session.State = core.StateFocused
	return d.parkEdit(fields)
}

// parseFields extracts "field: value" lines from free text. Keys are
// lowercased; lines without a colon are ignored.
func parseFields(text string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

// previewLines renders a payload as stable, human-readable diff lines.
func previewLines(payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  " + k + " → " + payload[k])
	}
	return b.String()
}
