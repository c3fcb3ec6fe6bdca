package core

import "context"

// BusinessEntity is the projection of an externally owned domain object that
// the conversational core needs: identity, display name, short code and the
// owning agent. The authoritative record lives in the collaborator store
// behind the Directory interface.
type BusinessEntity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	// ShortCode is the stable two-letter + sequence alias assigned once and
	// never reassigned. Empty until backfill or creation assigns one.
	ShortCode    string `json:"short_code"`
	OwnerAgentID string `json:"owner_agent_id"`
}

// Directory is the collaborator contract for the persistent entity store.
// The core never owns entity data; it reads, searches and applies explicitly
// confirmed mutations through this interface.
//
// ApplyEdit must use "set field to value" upsert semantics so that a
// duplicate delivery of the same confirmed edit is harmless.
type Directory interface {
	// List returns every entity owned by the agent, in creation order.
	List(ctx context.Context, agentID string) ([]BusinessEntity, error)
	// Get returns the entity by id or ErrNotFound.
	Get(ctx context.Context, agentID, entityID string) (BusinessEntity, error)
	// FindByCode performs an exact short-code lookup (0 or 1 result).
	FindByCode(ctx context.Context, agentID, code string) (BusinessEntity, error)
	// SearchByName performs a case-insensitive substring match on display
	// names (0, 1 or many results).
	SearchByName(ctx context.Context, agentID, fragment string) ([]BusinessEntity, error)
	// Create persists a new entity and returns it with its assigned id.
	Create(ctx context.Context, agentID string, fields map[string]string) (BusinessEntity, error)
	// ApplyEdit sets the given fields on the entity (upsert semantics).
	ApplyEdit(ctx context.Context, agentID, entityID string, fields map[string]string) error
	// SetShortCode stores the assigned code. It must fail with
	// ErrCodeAlreadyAssigned if the entity already carries one.
	SetShortCode(ctx context.Context, agentID, entityID, code string) error
}

// Ref converts the entity into the session-embedded reference projection.
func (e BusinessEntity) Ref() EntityRef {
	return EntityRef{ID: e.ID, Code: e.ShortCode, Name: e.DisplayName}
}
