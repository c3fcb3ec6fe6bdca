package session

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/entitydesk/core"
)

// DefaultTTL is the sliding inactivity window after which a session is
// considered gone on the next Load.
const DefaultTTL = 15 * time.Minute

// InMemoryOptions configure the in-memory store.
type InMemoryOptions struct {
	// TTL is the sliding inactivity window (DefaultTTL if unset).
	TTL time.Duration
	// SweepInterval controls the background eviction pass. Zero disables the
	// sweeper; expired entries are then only evicted lazily on Load.
	SweepInterval time.Duration
	// Clock overrides time.Now, for expiry tests.
	Clock func() time.Time
}

// InMemoryStore is a process-local core.SessionStore with sliding-TTL
// semantics identical to the distributed primary tier. It serves as the
// fallback tier behind FailoverStore and as the store of choice for tests
// and single-process deployments. It is safe for concurrent access; each
// returned session is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	clock    func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	session   *core.Session
	expiresAt time.Time
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{TTL: DefaultTTL, Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &InMemoryStore{
		sessions: make(map[string]*entry),
		ttl:      opts.TTL,
		clock:    opts.Clock,
		done:     make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go s.sweep(opts.SweepInterval)
	}
	return s
}

// Load returns a clone of the live session for the identity, or (nil, nil)
// when none exists or the TTL window has elapsed. Expired entries are
// evicted on the spot.
func (s *InMemoryStore) Load(_ context.Context, agentID, identity string) (*core.Session, error) {
	key := core.SessionKey(agentID, identity)

	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.clock().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Save may have
		// refreshed the window.
		if cur, ok := s.sessions[key]; ok && s.clock().After(cur.expiresAt) {
			delete(s.sessions, key)
		}
		s.mu.Unlock()
		return nil, nil
	}
	return e.session.Clone(), nil
}

// Save stores a clone of the session and refreshes its sliding TTL window.
// Last write wins; there is no per-identity locking.
func (s *InMemoryStore) Save(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Key()] = &entry{
		session:   session.Clone(),
		expiresAt: s.clock().Add(s.ttl),
	}
	return nil
}

// Delete removes the session for the identity. Deleting an absent session is
// not an error.
func (s *InMemoryStore) Delete(_ context.Context, agentID, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, core.SessionKey(agentID, identity))
	return nil
}

// Len returns the number of live (possibly expired, not yet swept) entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweeper, if one is running.
func (s *InMemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *InMemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.clock()
			s.mu.Lock()
			for key, e := range s.sessions {
				if now.After(e.expiresAt) {
					delete(s.sessions, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
