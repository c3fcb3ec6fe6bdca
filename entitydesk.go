// Package entitydesk provides a high-level façade over the conversational
// core: session reconstruction, intent classification, reference resolution
// and two-phase dispatch. Most applications interact with this package by:
//  1. Creating a Desk via New() with their entity directory (optionally
//     overriding default in-memory services)
//  2. Feeding every inbound transport event to Handle()
//  3. Mapping the returned Response onto their channel's native widgets
//
// The façade guarantees the propagation policy of the core: no inbound
// event ever surfaces an error to the transport, every path ends in an
// explicit Response. All defaults are safe for local development and
// testing; production deployments typically supply the Redis-backed session
// tier, an NLU classifier and a structured logger.
package entitydesk

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/entitydesk/artifact"
	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/dispatch"
	"github.com/hupe1980/entitydesk/intent"
	"github.com/hupe1980/entitydesk/logging"
	"github.com/hupe1980/entitydesk/nlu"
	"github.com/hupe1980/entitydesk/resolver"
	"github.com/hupe1980/entitydesk/respond"
	"github.com/hupe1980/entitydesk/session"
	"github.com/hupe1980/entitydesk/voice"
)

// Options configure the Desk instance.
type Options struct {
	// SessionStore persists per-identity state (defaults to in-memory).
	SessionStore core.SessionStore
	// Artifacts stages action results (defaults to in-memory).
	Artifacts core.ArtifactStore
	// Classifier is the external NLU capability. Nil keeps classification
	// pattern-only.
	Classifier nlu.Classifier
	// Transcriber turns voice notes into text. Nil declines audio events.
	Transcriber voice.Transcriber
	// Actions runs search/report style domain actions. Nil disables them.
	Actions core.ActionRunner
	// Sender delivers staged artifacts. Nil disables sending.
	Sender core.Sender
	// Responses renders responses (defaults to the standard builder).
	Responses *respond.Builder

	// NLUTimeout bounds each classification call.
	NLUTimeout time.Duration
	// ActionTimeout bounds each domain action invocation.
	ActionTimeout time.Duration

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Desk is the high-level façade aggregating the pipeline components. Public
// methods are safe for concurrent use; every inbound event gets its own
// short-lived dispatcher.
type Desk struct {
	dir       core.Directory
	store     core.SessionStore
	artifacts core.ArtifactStore
	resolver  *resolver.Resolver
	parser    *intent.Parser
	responses *respond.Builder

	transcriber   voice.Transcriber
	actions       core.ActionRunner
	sender        core.Sender
	actionTimeout time.Duration
	logger        logging.Logger

	// backfilled tracks agents whose entities already carry short codes, so
	// the one-time backfill runs once per agent per process.
	backfilled sync.Map
}

// New creates a Desk over the given entity directory with optional
// overrides. Any unset service defaults to a safe in-memory implementation.
func New(dir core.Directory, optFns ...func(o *Options)) *Desk {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		Artifacts:     artifact.NewInMemoryStore(),
		Responses:     respond.New(),
		NLUTimeout:    intent.DefaultNLUTimeout,
		ActionTimeout: dispatch.DefaultActionTimeout,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	res := resolver.New(dir, func(o *resolver.Options) { o.Logger = opts.Logger })
	parser := intent.New(func(o *intent.Options) {
		o.Classifier = opts.Classifier
		o.NLUTimeout = opts.NLUTimeout
		o.Logger = opts.Logger
	})

	return &Desk{
		dir:           dir,
		store:         opts.SessionStore,
		artifacts:     opts.Artifacts,
		resolver:      res,
		parser:        parser,
		responses:     opts.Responses,
		transcriber:   opts.Transcriber,
		actions:       opts.Actions,
		sender:        opts.Sender,
		actionTimeout: opts.ActionTimeout,
		logger:        opts.Logger,
	}
}

// Handle runs the full pipeline for one inbound event and returns the
// response to render on the channel. It never returns an error: collaborator
// failures degrade per the recovery table (fallback tier, pattern-only
// classification, fresh session) and always end in a Response.
func (d *Desk) Handle(ctx context.Context, agentID string, ev core.InboundEvent) core.Response {
	logger := d.logger
	if dl, ok := logger.(*logging.DeskLogger); ok {
		logger = dl.WithConversation(agentID, ev.SenderIdentity)
	}

	d.ensureBackfill(ctx, agentID, logger)

	in, declined := d.normalize(ctx, ev, logger)
	if declined != nil {
		return *declined
	}

	sess := d.loadSession(ctx, agentID, ev.SenderIdentity, logger)

	candidates, err := d.dir.List(ctx, agentID)
	if err != nil {
		// Classification context is best-effort; dispatch surfaces its own
		// directory failures.
		logger.Warn("entity listing for classification context failed", "error", err)
	}

	it := d.parser.Parse(ctx, in, intent.Context{
		State:      sess.State,
		Focus:      sess.Focus,
		Candidates: candidates,
	})

	dispatcher := dispatch.New(agentID, sess, func(o *dispatch.Options) {
		o.Directory = d.dir
		o.Resolver = d.resolver
		o.Actions = d.actions
		o.Artifacts = d.artifacts
		o.Sender = d.sender
		o.Responses = d.responses
		o.ActionTimeout = d.actionTimeout
		o.Logger = logger
	})
	resp := dispatcher.Handle(ctx, it)

	if dispatcher.ResetRequested() {
		if err := d.store.Delete(ctx, agentID, ev.SenderIdentity); err != nil {
			logger.Warn("session delete on reset failed", "error", err)
		}
	}
	if err := d.store.Save(ctx, sess); err != nil {
		// Losing one save at worst costs the operator a re-sent message;
		// persistent data is only mutated at the confirm step.
		logger.Error("session save failed", "error", err)
	}
	return resp
}

// normalize turns the inbound event into parser input, transcribing audio
// when a voice bridge is configured. The second return value, when non-nil,
// is an early response declining the event.
func (d *Desk) normalize(ctx context.Context, ev core.InboundEvent, logger logging.Logger) (intent.Input, *core.Response) {
	in := intent.Input{Kind: ev.Kind, Text: ev.Text, ChoiceID: ev.ChoiceID}
	if ev.Kind != core.EventAudio {
		return in, nil
	}

	if d.transcriber == nil {
		resp := d.responses.Text("I cannot listen to voice notes on this channel yet - please type it instead.")
		return intent.Input{}, &resp
	}
	text, err := d.transcriber.Transcribe(ctx, ev.AudioRef)
	if err != nil || text == "" {
		logger.Warn("transcription failed", "audio_ref", ev.AudioRef, "error", err)
		resp := d.responses.Text("I could not make out that voice note - please type it instead.")
		return intent.Input{}, &resp
	}
	in.Kind = core.EventText
	in.Text = text
	return in, nil
}

// loadSession restores the live session or starts a fresh idle one. Total
// store failure is logged and absorbed: the event is then handled as if the
// identity were new, which is the documented degradation.
func (d *Desk) loadSession(ctx context.Context, agentID, identity string, logger logging.Logger) *core.Session {
	sess, err := d.store.Load(ctx, agentID, identity)
	if err != nil {
		logger.Error("session load failed, starting fresh", "error", err)
	}
	if sess == nil {
		sess = core.NewSession(agentID, identity)
	}
	return sess
}

func (d *Desk) ensureBackfill(ctx context.Context, agentID string, logger logging.Logger) {
	if _, ran := d.backfilled.LoadOrStore(agentID, true); ran {
		return
	}
	if err := d.resolver.Backfill(ctx, agentID); err != nil {
		// Retry on the next event rather than leaving codes half-assigned.
		logger.Error("short code backfill failed", "error", err)
		d.backfilled.Delete(agentID)
	}
}
