package artifact

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/entitydesk/core"
)

// InMemoryStore is a process-local core.ArtifactStore keeping staged
// artifacts in a nested map guarded by an RWMutex. Data is copied on save
// and retrieval to avoid accidental external mutation of internal buffers.
//
// Layout: identity -> token -> artifact
//
// For deployments where staged reports must survive a restart, back the
// interface with object storage instead.
type InMemoryStore struct {
	mu       sync.RWMutex
	staged   map[string]map[string]core.Artifact
	capacity int
}

// Options configure the in-memory artifact store.
type Options struct {
	// MaxPerIdentity caps staged artifacts per identity; the oldest is
	// evicted when the cap is exceeded. Zero means unbounded.
	MaxPerIdentity int
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{staged: make(map[string]map[string]core.Artifact), capacity: opts.MaxPerIdentity}
}

// Save stages (or overwrites) the artifact bytes for the given identity and
// token. The input slice is copied before storage.
func (s *InMemoryStore) Save(_ context.Context, identity, token, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.staged[identity]; !exists {
		s.staged[identity] = make(map[string]core.Artifact)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.staged[identity][token] = core.Artifact{
		Token:    token,
		Name:     name,
		Data:     cp,
		StagedAt: time.Now().UTC(),
	}
	if s.capacity > 0 && len(s.staged[identity]) > s.capacity {
		s.evictOldestLocked(identity)
	}
	return nil
}

// Get returns a copy of the staged artifact or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, identity, token string) (core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.staged[identity]
	if !ok {
		return core.Artifact{}, core.ErrNotFound
	}
	a, ok := m[token]
	if !ok {
		return core.Artifact{}, core.ErrNotFound
	}
	cp := make([]byte, len(a.Data))
	copy(cp, a.Data)
	a.Data = cp
	return a, nil
}

// List returns the tokens staged for the identity. The slice is a snapshot
// and safe for caller mutation.
func (s *InMemoryStore) List(_ context.Context, identity string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.staged[identity]
	tokens := make([]string, 0, len(m))
	for token := range m {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Delete removes one staged artifact. Deleting an absent token is not an
// error.
func (s *InMemoryStore) Delete(_ context.Context, identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.staged[identity]; ok {
		delete(m, token)
		if len(m) == 0 {
			delete(s.staged, identity)
		}
	}
	return nil
}

func (s *InMemoryStore) evictOldestLocked(identity string) {
	var oldest string
	var oldestAt time.Time
	for token, a := range s.staged[identity] {
		if oldest == "" || a.StagedAt.Before(oldestAt) {
			oldest = token
			oldestAt = a.StagedAt
		}
	}
	delete(s.staged[identity], oldest)
}
