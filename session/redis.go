package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/entitydesk/core"
)

// RedisOptions configure the Redis-backed store.
type RedisOptions struct {
	// TTL is the sliding inactivity window (DefaultTTL if unset). It is
	// applied natively as the key TTL and refreshed on every Save.
	TTL time.Duration
	// KeyPrefix namespaces session keys inside a shared Redis instance.
	KeyPrefix string
}

// RedisStore is the primary core.SessionStore tier: a distributed TTL
// key-value backend. Sessions are stored as a single JSON value per
// (agent, identity) key with the TTL attribute refreshed on every write, so
// expiry needs no application-side bookkeeping.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps an existing Redis client. The caller owns the client
// lifecycle (construction and Close); the store never creates hidden
// connections.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{TTL: DefaultTTL, KeyPrefix: "entitydesk:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, ttl: opts.TTL, prefix: opts.KeyPrefix}
}

func (s *RedisStore) key(agentID, identity string) string {
	return s.prefix + core.SessionKey(agentID, identity)
}

// Load fetches and decodes the session, returning (nil, nil) on a miss.
// Redis expires keys natively, so an elapsed TTL simply looks like a miss.
func (s *RedisStore) Load(ctx context.Context, agentID, identity string) (*core.Session, error) {
	raw, err := s.client.Get(ctx, s.key(agentID, identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess core.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt value is unrecoverable; treat it as absent rather than
		// wedging the identity forever.
		_ = s.client.Del(ctx, s.key(agentID, identity)).Err()
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session as JSON and refreshes the sliding TTL window.
// Last write wins; there is no optimistic locking.
func (s *RedisStore) Save(ctx context.Context, session *core.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+session.Key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the session key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, agentID, identity string) error {
	if err := s.client.Del(ctx, s.key(agentID, identity)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
