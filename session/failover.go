package session

import (
	"context"
	"fmt"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/logging"
)

// FailoverOptions configure the failover decorator.
type FailoverOptions struct {
	// Logger receives degradation warnings (NoOp if unset).
	Logger logging.Logger
}

// FailoverStore decorates a primary core.SessionStore with a fallback tier.
// Any primary failure is served transparently from the fallback and logged;
// callers only see an error when both tiers fail, and that error wraps
// core.ErrStoreUnavailable so the caller can degrade to a fresh session.
//
// The two tiers are not kept in sync: after a primary outage the fallback
// may hold the newer session. That is acceptable under last-write-wins
// semantics; the worst case is the operator re-sending one message.
type FailoverStore struct {
	primary  core.SessionStore
	fallback core.SessionStore
	logger   logging.Logger
}

// NewFailoverStore builds the decorator around a primary and fallback tier.
func NewFailoverStore(primary, fallback core.SessionStore, optFns ...func(o *FailoverOptions)) *FailoverStore {
	opts := FailoverOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FailoverStore{primary: primary, fallback: fallback, logger: opts.Logger}
}

// Load tries the primary tier first. A primary miss is a result, not a
// failure: only an error triggers the fallback.
func (s *FailoverStore) Load(ctx context.Context, agentID, identity string) (*core.Session, error) {
	sess, err := s.primary.Load(ctx, agentID, identity)
	if err == nil {
		return sess, nil
	}
	s.logger.Warn("primary session store load failed, falling back", "error", err)

	sess, ferr := s.fallback.Load(ctx, agentID, identity)
	if ferr != nil {
		return nil, fmt.Errorf("%w: primary: %v, fallback: %v", core.ErrStoreUnavailable, err, ferr)
	}
	return sess, nil
}

// Save writes to the primary tier, falling back on failure so the session
// survives at least within this process.
func (s *FailoverStore) Save(ctx context.Context, session *core.Session) error {
	err := s.primary.Save(ctx, session)
	if err == nil {
		return nil
	}
	s.logger.Warn("primary session store save failed, falling back", "error", err)

	if ferr := s.fallback.Save(ctx, session); ferr != nil {
		return fmt.Errorf("%w: primary: %v, fallback: %v", core.ErrStoreUnavailable, err, ferr)
	}
	return nil
}

// Delete removes the session from both tiers so a reset sticks regardless of
// which tier currently holds the live copy.
func (s *FailoverStore) Delete(ctx context.Context, agentID, identity string) error {
	perr := s.primary.Delete(ctx, agentID, identity)
	if perr != nil {
		s.logger.Warn("primary session store delete failed", "error", perr)
	}
	ferr := s.fallback.Delete(ctx, agentID, identity)
	if perr != nil && ferr != nil {
		return fmt.Errorf("%w: primary: %v, fallback: %v", core.ErrStoreUnavailable, perr, ferr)
	}
	return nil
}
