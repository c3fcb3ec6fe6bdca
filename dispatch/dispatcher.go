package dispatch

import (
	"context"
	"time"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/internal/util"
	"github.com/hupe1980/entitydesk/logging"
	"github.com/hupe1980/entitydesk/resolver"
	"github.com/hupe1980/entitydesk/respond"
)

// DefaultActionTimeout bounds each domain action invocation. Actions are
// expected to be short; anything slower is reverted and reported.
const DefaultActionTimeout = 15 * time.Second

// Options hold the collaborator and configuration overrides passed to New.
type Options struct {
	// Directory is the persistent entity store collaborator.
	Directory core.Directory
	// Resolver maps references and assigns short codes.
	Resolver *resolver.Resolver
	// Actions runs search/report style domain actions. Nil disables them.
	Actions core.ActionRunner
	// Artifacts stages action results for later delivery.
	Artifacts core.ArtifactStore
	// Sender delivers staged artifacts. Nil disables sending.
	Sender core.Sender
	// Responses renders domain data into responses.
	Responses *respond.Builder
	// ActionTimeout bounds each action invocation (DefaultActionTimeout if unset).
	ActionTimeout time.Duration
	// Logger receives dispatch telemetry (NoOp if unset).
	Logger logging.Logger
}

// Dispatcher executes one inbound intent against one session. It is
// constructed per event, scoped to (agent, identity, session), and discarded
// after producing a response; the caller persists the mutated session.
type Dispatcher struct {
	agentID  string
	identity string
	session  *core.Session

	dir           core.Directory
	resolver      *resolver.Resolver
	actions       core.ActionRunner
	artifacts     core.ArtifactStore
	sender        core.Sender
	respond       *respond.Builder
	actionTimeout time.Duration
	logger        logging.Logger

	resetRequested bool
}

// New constructs a Dispatcher for a single event.
func New(agentID string, session *core.Session, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		ActionTimeout: DefaultActionTimeout,
		Responses:     respond.New(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{
		agentID:       agentID,
		identity:      session.Identity,
		session:       session,
		dir:           opts.Directory,
		resolver:      opts.Resolver,
		actions:       opts.Actions,
		artifacts:     opts.Artifacts,
		sender:        opts.Sender,
		respond:       opts.Responses,
		actionTimeout: opts.ActionTimeout,
		logger:        opts.Logger,
	}
}

// ResetRequested reports whether the dispatched intent asked for a session
// wipe; the caller then deletes the stored record before saving the fresh
// session.
func (d *Dispatcher) ResetRequested() bool { return d.resetRequested }

// Handle runs the state machine for one intent. It always returns a
// response; collaborator failures degrade to explicit failure responses and
// never propagate. The session is mutated in place.
func (d *Dispatcher) Handle(ctx context.Context, it core.Intent) core.Response {
	start := time.Now()
	from := d.session.State

	resp := d.handle(ctx, it)

	d.session.Touch()
	if err := d.session.Validate(); err != nil {
		// Invariant violations are programming errors; log loudly and
		// repair to a safe state instead of persisting garbage.
		d.logger.Error("session invariant violated after dispatch", "error", err)
		d.session.Pending = nil
		d.session.ClearFocus()
	}

	d.logger.Debug("dispatch completed",
		"intent", string(it.Type), "from_state", string(from),
		"to_state", string(d.session.State), "response_kind", string(resp.Kind),
		"duration", time.Since(start))
	return resp
}

func (d *Dispatcher) handle(ctx context.Context, it core.Intent) core.Response {
	switch it.Type {
	case core.IntentViewEntities:
		return d.viewEntities(ctx)
	case core.IntentSelectEntity:
		return d.selectEntity(ctx, it)
	case core.IntentExitFocus:
		return d.exitFocus()
	case core.IntentRunAction:
		return d.runAction(ctx, it)
	case core.IntentProposeMutation:
		return d.proposeMutation(ctx, it)
	case core.IntentCreateEntity:
		return d.startCreate()
	case core.IntentConfirm:
		return d.confirm(ctx)
	case core.IntentCancel:
		return d.cancel()
	case core.IntentReset:
		return d.reset()
	case core.IntentHelp:
		return d.respond.Help(d.session.State, d.session.Focus)
	case core.IntentUnknown:
		return d.unknown(ctx, it)
	}
	// Unreachable with a validated intent; render help rather than crash.
	return d.respond.Help(d.session.State, d.session.Focus)
}

// viewEntities lists every entity of the agent and moves to browsing.
func (d *Dispatcher) viewEntities(ctx context.Context) core.Response {
	entities, err := d.dir.List(ctx, d.agentID)
	if err != nil {
		d.logger.Error("entity list failed", "error", err)
		return d.respond.Text("Could not load your entities right now - please try again.")
	}
	d.discardPending()
	d.session.Focus = nil
	d.session.SubState = ""
	d.session.State = core.StateBrowsing
	return d.respond.EntityList(entities)
}

// selectEntity resolves a reference and focuses the entity when it is
// unambiguous. More than one match renders a disambiguation list and leaves
// the state untouched.
func (d *Dispatcher) selectEntity(ctx context.Context, it core.Intent) core.Response {
	if it.ResolvedEntityID != "" {
		e, err := d.dir.Get(ctx, d.agentID, it.ResolvedEntityID)
		if err != nil {
			d.logger.Warn("selected entity vanished", "entity_id", it.ResolvedEntityID, "error", err)
			return d.respond.NotFound(it.ResolvedEntityID)
		}
		return d.focus(ctx, e, it.Followup)
	}

	reference := it.EntityReference
	if reference == "" {
		reference = it.Param("reference")
	}
	if reference == "" {
		reference = it.RawText
	}

	matches, err := d.resolver.Resolve(ctx, d.agentID, reference)
	if err != nil {
		d.logger.Error("reference resolution failed", "reference", reference, "error", err)
		return d.respond.Text("Could not look that up right now - please try again.")
	}
	switch len(matches) {
	case 0:
		return d.respond.NotFound(reference)
	case 1:
		return d.focus(ctx, matches[0], it.Followup)
	default:
		return d.respond.Disambiguation(reference, matches)
	}
}

func (d *Dispatcher) focus(ctx context.Context, e core.BusinessEntity, followup *core.Intent) core.Response {
	d.discardPending()
	d.session.SetFocus(e.Ref())
	if followup != nil {
		return d.handle(ctx, *followup)
	}
	return d.respond.EntityCard(*d.session.Focus)
}

func (d *Dispatcher) exitFocus() core.Response {
	switch d.session.State {
	case core.StateFocused, core.StateBrowsing:
		d.session.ClearFocus()
		return d.respond.Help(core.StateIdle, nil)
	}
	return d.respond.Help(d.session.State, d.session.Focus)
}

func (d *Dispatcher) startCreate() core.Response {
	if d.session.State == core.StateConfirming {
		return d.respond.Help(d.session.State, d.session.Focus)
	}
	d.session.Focus = nil
	d.session.SubState = ""
	d.session.State = core.StateCreating
	d.session.Draft = map[string]string{}
	return d.respond.CreatePrompt()
}

func (d *Dispatcher) cancel() core.Response {
	if d.session.Pending == nil {
		return d.respond.Help(d.session.State, d.session.Focus)
	}
	d.session.ResolvePending()
	return d.respond.Cancelled()
}

// discardPending drops a parked mutation when a transition deliberately
// leaves the confirming state for somewhere else (view, select). Nothing was
// applied, so dropping is safe; the operator chose a different path.
func (d *Dispatcher) discardPending() {
	if d.session.Pending == nil {
		return
	}
	d.logger.Debug("pending mutation discarded by state transition", "pending_id", d.session.Pending.ID)
	d.session.Pending = nil
	d.session.PrevState = ""
}

func (d *Dispatcher) reset() core.Response {
	fresh := core.NewSession(d.agentID, d.identity)
	*d.session = *fresh
	d.resetRequested = true
	return d.respond.Reset()
}

// runAction invokes a domain action against the focused entity with a
// bounded timeout. The session is never left parked in the running state:
// failure or timeout restores the pre-action snapshot.
func (d *Dispatcher) runAction(ctx context.Context, it core.Intent) core.Response {
	action := core.ActionName(it.Param("action"))

	if action == core.ActionSend {
		return d.sendArtifact(ctx)
	}
	if d.session.State != core.StateFocused || d.session.Focus == nil {
		return d.respond.Help(d.session.State, d.session.Focus)
	}
	if d.actions == nil {
		return d.respond.ActionFailure(action)
	}

	snapshot := d.session.Clone()
	d.session.State = core.StateRunning

	actx, cancel := context.WithTimeout(ctx, d.actionTimeout)
	defer cancel()

	start := time.Now()
	result, err := d.actions.Run(actx, d.agentID, snapshot.Focus.ID, action, it.Parameters)
	if err != nil {
		d.logger.Warn("action failed, reverting session",
			"action", string(action), "duration", time.Since(start), "error", err)
		*d.session = *snapshot
		return d.respond.ActionFailure(action)
	}

	*d.session = *snapshot
	d.session.SubState = "results"

	// The token only ever references a staged artifact; an action without one
	// leaves the previous token (and its artifact) addressable.
	staged := false
	if len(result.Artifact) > 0 && d.artifacts != nil {
		token := util.NewID()
		if err := d.artifacts.Save(ctx, d.identity, token, result.ArtifactName, result.Artifact); err != nil {
			d.logger.Error("artifact staging failed", "error", err)
		} else {
			d.session.LastActionToken = token
			staged = true
		}
	}

	d.logger.Debug("action completed", "action", string(action), "duration", time.Since(start))
	return d.respond.ActionResult(result.Summary, staged)
}

// sendArtifact delivers the most recently staged artifact ("send it").
func (d *Dispatcher) sendArtifact(ctx context.Context) core.Response {
	if d.session.LastActionToken == "" || d.sender == nil {
		return d.respond.Text("There is nothing to send yet. Run a report first.")
	}

	sctx, cancel := context.WithTimeout(ctx, d.actionTimeout)
	defer cancel()

	if err := d.sender.SendArtifact(sctx, d.identity, d.session.LastActionToken); err != nil {
		d.logger.Warn("artifact delivery failed", "token", d.session.LastActionToken, "error", err)
		return d.respond.ActionFailure(core.ActionSend)
	}
	return d.respond.Text("Sent.")
}
