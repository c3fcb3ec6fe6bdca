// Package core provides the foundational domain types and contracts used by
// entitydesk. It defines the core abstractions for:
//
//   - Sessions (per-identity conversational state reconstructed across
//     stateless webhook events, TTL-bound)
//   - Intents (the closed classification of a single inbound message)
//   - Responses (channel-agnostic outbound shapes: text, choice, list)
//   - Pluggable stores for session state and staged artifacts
//   - Collaborator capabilities (entity directory, domain actions, delivery)
//
// The package intentionally keeps implementation concerns (persistence,
// classification, dispatch) out of scope, exposing small interfaces to enable
// custom backends and extensions. All exported identifiers include concise
// documentation to aid discoverability and external consumption.
package core
