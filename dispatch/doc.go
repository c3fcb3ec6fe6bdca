// Package dispatch implements the conversational state machine: one
// short-lived Dispatcher per inbound event maps (intent, session) to a new
// session, a response, and at most one side effect.
//
// Design rules the package enforces:
//
//   - Mutations are two-phase: a create/edit is first rendered as a preview
//     and parked on the session; only an explicit confirm executes it
//   - Confirm is idempotent: pending actions carry "set field to value"
//     payloads and are cleared atomically with execution, so a duplicate
//     confirm finds nothing pending
//   - Ambiguity short-circuits: a reference matching several entities never
//     changes state, it renders a disambiguation list
//   - A parked mutation is resolved explicitly: confirm executes it, cancel
//     discards it, and the any-state transitions (view, select, reset)
//     discard it deliberately before leaving the confirming state; every
//     other intent re-renders the confirmation prompt
//   - No dispatch ever parks the session in the running state; action
//     failure or timeout reverts to the pre-action snapshot
//   - Every path ends in a response; errors never propagate to the transport
package dispatch
