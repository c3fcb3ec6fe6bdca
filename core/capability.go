package core

import (
	"context"
	"time"
)

// ActionName identifies a read-only domain action runnable against a focused
// entity. The concrete set is owned by the capability implementation; the
// core only routes the two actions it exposes shortcuts for.
type ActionName string

const (
	// ActionSearch runs the search-like action (e.g. keyword lookup).
	ActionSearch ActionName = "search"
	// ActionReport generates a report artifact for the entity.
	ActionReport ActionName = "report"
	// ActionSend delivers the most recently staged artifact. It is routed to
	// the Sender capability, not the ActionRunner.
	ActionSend ActionName = "send"
)

// ActionResult is the outcome of a domain action. Summary is rendered to the
// operator; Artifact, when present, is staged in the artifact store under the
// session's action token for later delivery.
type ActionResult struct {
	Summary  string `json:"summary"`
	Artifact []byte `json:"artifact,omitempty"`
	// ArtifactName is the suggested filename for delivery.
	ArtifactName string `json:"artifact_name,omitempty"`
}

// ActionRunner is the collaborator capability executing domain actions.
// Implementations must respect ctx cancellation; the dispatcher bounds every
// invocation with its action timeout.
type ActionRunner interface {
	Run(ctx context.Context, agentID, entityID string, action ActionName, params map[string]any) (*ActionResult, error)
}

// Sender is the collaborator capability delivering a staged artifact to the
// operator over the transport channel.
type Sender interface {
	SendArtifact(ctx context.Context, identity, token string) error
}

// ArtifactStore stages action artifacts per identity under an opaque token
// until they are delivered or expire. Implementations copy data on save and
// retrieval so callers cannot mutate stored buffers.
type ArtifactStore interface {
	Save(ctx context.Context, identity, token, name string, data []byte) error
	Get(ctx context.Context, identity, token string) (Artifact, error)
	List(ctx context.Context, identity string) ([]string, error)
	Delete(ctx context.Context, identity, token string) error
}

// Artifact is one staged action result payload.
type Artifact struct {
	Token    string    `json:"token"`
	Name     string    `json:"name"`
	Data     []byte    `json:"data"`
	StagedAt time.Time `json:"staged_at"`
}
