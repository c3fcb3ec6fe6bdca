package testutil

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/entitydesk/core"
)

// Directory is an in-memory core.Directory implementation for tests and
// examples. It preserves creation order, applies edits with upsert semantics
// and enforces short-code stability like a real backend would.
type Directory struct {
	mu       sync.RWMutex
	entities []core.BusinessEntity
	nextID   int
}

// NewDirectory returns an empty in-memory directory.
func NewDirectory() *Directory { return &Directory{nextID: 1} }

// Seed adds entities directly, bypassing Create. Returns the directory for
// chaining.
func (d *Directory) Seed(entities ...core.BusinessEntity) *Directory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entities = append(d.entities, entities...)
	d.nextID += len(entities)
	return d
}

// List returns every entity owned by the agent, in creation order.
func (d *Directory) List(_ context.Context, agentID string) ([]core.BusinessEntity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []core.BusinessEntity
	for _, e := range d.entities {
		if e.OwnerAgentID == agentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Get returns the entity by id or core.ErrNotFound.
func (d *Directory) Get(_ context.Context, agentID, entityID string) (core.BusinessEntity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entities {
		if e.OwnerAgentID == agentID && e.ID == entityID {
			return e, nil
		}
	}
	return core.BusinessEntity{}, core.ErrNotFound
}

// FindByCode performs an exact short-code lookup.
func (d *Directory) FindByCode(_ context.Context, agentID, code string) (core.BusinessEntity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entities {
		if e.OwnerAgentID == agentID && strings.EqualFold(e.ShortCode, code) {
			return e, nil
		}
	}
	return core.BusinessEntity{}, core.ErrNotFound
}

// SearchByName performs a case-insensitive substring match on display names.
func (d *Directory) SearchByName(_ context.Context, agentID, fragment string) ([]core.BusinessEntity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	needle := strings.ToLower(fragment)
	var out []core.BusinessEntity
	for _, e := range d.entities {
		if e.OwnerAgentID == agentID && strings.Contains(strings.ToLower(e.DisplayName), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Create persists a new entity with a generated id.
func (d *Directory) Create(_ context.Context, agentID string, fields map[string]string) (core.BusinessEntity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := core.BusinessEntity{
		ID:           newEntityID(d.nextID),
		DisplayName:  fields["name"],
		OwnerAgentID: agentID,
	}
	d.nextID++
	d.entities = append(d.entities, e)
	return e, nil
}

// ApplyEdit sets the given fields on the entity (upsert semantics). Only
// "name" maps onto the projection this fake tracks; other fields are
// accepted and dropped, mirroring a backend that stores them elsewhere.
func (d *Directory) ApplyEdit(_ context.Context, agentID, entityID string, fields map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entities {
		if e.OwnerAgentID == agentID && e.ID == entityID {
			if name, ok := fields["name"]; ok {
				d.entities[i].DisplayName = name
			}
			return nil
		}
	}
	return core.ErrNotFound
}

// SetShortCode stores the assigned code, enforcing code stability.
func (d *Directory) SetShortCode(_ context.Context, agentID, entityID, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entities {
		if e.OwnerAgentID == agentID && e.ID == entityID {
			if e.ShortCode != "" {
				return core.ErrCodeAlreadyAssigned
			}
			d.entities[i].ShortCode = code
			return nil
		}
	}
	return core.ErrNotFound
}

// newEntityID produces deterministic ids to keep test assertions readable.
func newEntityID(n int) string { return "ent-" + strconv.Itoa(n) }
