// Package respond renders domain snapshots (entities, result sets, mutation
// previews) into the three channel-agnostic core.Response shapes. Rendering
// is pure: no I/O, no side effects. Channel ceilings (body length, option
// and row counts, label lengths) are enforced by truncation, never by
// failing a dispatch that already did its work.
package respond

import (
	"fmt"
	"strings"

	"github.com/hupe1980/entitydesk/core"
)

// Options configure a Builder.
type Options struct {
	// ListButtonLabel is the label on the button opening a list response.
	ListButtonLabel string
}

// Builder renders responses. It is stateless and safe for concurrent use.
type Builder struct {
	listButtonLabel string
}

// New constructs a Builder with optional overrides.
func New(optFns ...func(o *Options)) *Builder {
	opts := Options{ListButtonLabel: "Select"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{listButtonLabel: opts.ListButtonLabel}
}

// Text returns a plain text response, truncated to the body ceiling.
func (b *Builder) Text(body string) core.Response {
	return core.Response{Kind: core.ResponseText, Body: Truncate(body, core.MaxBodyLength)}
}

// Textf is Text with formatting.
func (b *Builder) Textf(format string, args ...any) core.Response {
	return b.Text(fmt.Sprintf(format, args...))
}

// EntityList renders the agent's full entity overview as a list response,
// one row per entity with its short code, capped at the row ceiling.
func (b *Builder) EntityList(entities []core.BusinessEntity) core.Response {
	if len(entities) == 0 {
		return b.choice("You have no entities yet.", core.Option{ID: core.ChoiceCreateEntity, Title: "Create one"})
	}

	rows := make([]core.ListRow, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, core.ListRow{
			ID:          core.ChoicePickPrefix + e.ID,
			Title:       Truncate(e.DisplayName, core.MaxLabelLength),
			Description: Truncate(e.ShortCode, core.MaxDescriptionLength),
		})
	}
	body := fmt.Sprintf("You manage %d entities. Pick one or reply with its code.", len(entities))
	return b.list(body, []core.ListSection{{Title: "Your entities", Rows: rows}})
}

// Disambiguation renders the candidate set of an ambiguous reference. State
// does not change on ambiguity; the next expected event is a selection
// against exactly this set.
func (b *Builder) Disambiguation(reference string, candidates []core.BusinessEntity) core.Response {
	body := fmt.Sprintf("%q matches %d entities. Which one did you mean?", reference, len(candidates))

	if len(candidates) <= core.MaxOptions {
		opts := make([]core.Option, 0, len(candidates))
		for _, e := range candidates {
			opts = append(opts, core.Option{
				ID:    core.ChoicePickPrefix + e.ID,
				Title: Truncate(labelWithCode(e), core.MaxLabelLength),
			})
		}
		return b.choice(body, opts...)
	}

	rows := make([]core.ListRow, 0, len(candidates))
	for _, e := range candidates {
		rows = append(rows, core.ListRow{
			ID:          core.ChoicePickPrefix + e.ID,
			Title:       Truncate(e.DisplayName, core.MaxLabelLength),
			Description: Truncate(e.ShortCode, core.MaxDescriptionLength),
		})
	}
	return b.list(body, []core.ListSection{{Title: "Matches", Rows: rows}})
}

// EntityCard renders the focused entity with its context actions.
func (b *Builder) EntityCard(ref core.EntityRef) core.Response {
	body := fmt.Sprintf("Focused on %s (%s).\nsearch <terms> · report · edit · done", ref.Name, ref.Code)
	return b.choice(body,
		core.Option{ID: core.ChoiceActionPrefix + string(core.ActionSearch), Title: "Search"},
		core.Option{ID: core.ChoiceActionPrefix + string(core.ActionReport), Title: "Report"},
		core.Option{ID: core.ChoiceExitFocus, Title: "Done"},
	)
}

// MutationPreview renders a pending mutation's human-readable diff with the
// explicit confirm/cancel pair. Nothing is applied until the confirm.
func (b *Builder) MutationPreview(p core.PendingAction) core.Response {
	var head string
	switch p.Type {
	case core.PendingCreate:
		head = "About to create:"
	default:
		head = "About to change:"
	}
	body := head + "\n" + p.Preview + "\n\nApply?"
	return b.choice(body,
		core.Option{ID: core.ChoiceConfirm, Title: "Yes"},
		core.Option{ID: core.ChoiceCancel, Title: "No"},
	)
}

// ActionResult renders a completed action's summary. When an artifact was
// staged, the send option references it implicitly via the session token.
func (b *Builder) ActionResult(summary string, staged bool) core.Response {
	if !staged {
		return b.Text(summary)
	}
	return b.choice(summary, core.Option{ID: core.ChoiceSendArtifact, Title: "Send it"})
}

// ActionFailure renders an explicit failure with a retry hint. The session
// has already been reverted to its pre-action state.
func (b *Builder) ActionFailure(action core.ActionName) core.Response {
	return b.Textf("Sorry, %s did not complete. Nothing was changed - please try again.", action)
}

// NothingToConfirm answers a confirm that found nothing pending, e.g. after
// a duplicate delivery of the same message.
func (b *Builder) NothingToConfirm() core.Response {
	return b.Text("Nothing to confirm right now.")
}

// Cancelled acknowledges a discarded mutation.
func (b *Builder) Cancelled() core.Response {
	return b.Text("Okay, discarded. Nothing was changed.")
}

// CreatePrompt opens the guided creation flow.
func (b *Builder) CreatePrompt() core.Response {
	return b.Text("Let's create a new entity. Send its details, e.g.\nname: Summer Campaign\nbudget: 10000")
}

// EditPrompt opens the edit flow for the focused entity.
func (b *Builder) EditPrompt(ref core.EntityRef) core.Response {
	return b.Textf("What should change on %s? E.g. \"budget: 50000\"", ref.Name)
}

// NotFound answers a reference that matched nothing.
func (b *Builder) NotFound(reference string) core.Response {
	return b.Textf("Nothing matches %q. Reply \"all\" to see your entities.", reference)
}

// Help renders state-appropriate guidance. It doubles as the answer to
// unclassifiable input outside collecting flows.
func (b *Builder) Help(state core.SessionState, focus *core.EntityRef) core.Response {
	switch state {
	case core.StateFocused:
		if focus != nil {
			return b.EntityCard(*focus)
		}
	case core.StateConfirming:
		return b.Text("There is a change waiting for your confirmation. Reply \"yes\" to apply it or \"no\" to discard it.")
	case core.StateCreating:
		return b.Text("Send the new entity's details as \"field: value\" lines, or \"cancel\" to stop.")
	case core.StateEditing:
		return b.Text("Send the change as \"field: value\", or \"cancel\" to stop.")
	}
	return b.choice("I can show your entities, focus one by code or name, or create a new one.",
		core.Option{ID: core.ChoiceViewEntities, Title: "Show all"},
		core.Option{ID: core.ChoiceCreateEntity, Title: "Create"},
		core.Option{ID: core.ChoiceHelp, Title: "Help"},
	)
}

// Reset acknowledges a session wipe.
func (b *Builder) Reset() core.Response {
	return b.Text("Fresh start. Reply \"all\" to see your entities.")
}

func (b *Builder) choice(body string, opts ...core.Option) core.Response {
	if len(opts) > core.MaxOptions {
		opts = opts[:core.MaxOptions]
	}
	for i := range opts {
		opts[i].Title = Truncate(opts[i].Title, core.MaxLabelLength)
	}
	return core.Response{
		Kind:    core.ResponseChoice,
		Body:    Truncate(body, core.MaxBodyLength),
		Options: opts,
	}
}

func (b *Builder) list(body string, sections []core.ListSection) core.Response {
	remaining := core.MaxListRows
	capped := make([]core.ListSection, 0, len(sections))
	for _, s := range sections {
		if remaining == 0 {
			break
		}
		if len(s.Rows) > remaining {
			s.Rows = s.Rows[:remaining]
		}
		remaining -= len(s.Rows)
		capped = append(capped, s)
	}
	return core.Response{
		Kind:        core.ResponseList,
		Body:        Truncate(body, core.MaxBodyLength),
		ButtonLabel: Truncate(b.listButtonLabel, core.MaxLabelLength),
		Sections:    capped,
	}
}

func labelWithCode(e core.BusinessEntity) string {
	if e.ShortCode == "" {
		return e.DisplayName
	}
	return e.DisplayName + " (" + e.ShortCode + ")"
}

// Truncate shortens s to at most max runes, appending an ellipsis when it
// had to cut. max below 1 yields the empty string.
func Truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
