// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (dispatch, the façade) from depending on concrete
// storage.
//
// Three implementations are provided:
//
//   - RedisStore: the primary tier, a distributed TTL key-value backend
//   - InMemoryStore: the fallback tier, a process-local map with identical
//     sliding-TTL semantics
//   - FailoverStore: a decorator that transparently serves from the fallback
//     when the primary fails, logging the degradation instead of surfacing it
//
// Only total failure of both tiers is reported to callers, who must then
// treat the inbound event as a brand-new idle session rather than erroring.
package session
