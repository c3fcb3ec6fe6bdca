// Package intent classifies one inbound event into exactly one member of
// the closed core.IntentType set, plus parameters. Resolution is layered,
// first match wins:
//
//  1. Discrete choice ids (button/list selections) via a static table
//  2. Deterministic phrase patterns (help, list, done, create, yes/no, and
//     context words while an entity is focused)
//  3. A bare short-code token, optionally fused with a one-word shortcut
//     ("SC1 s" selects SC1 and runs search)
//  4. Delegation to the external NLU capability, bounded by a timeout and
//     validated strictly: anything outside the closed set, or structurally
//     invalid, is coerced to Unknown
//
// The deterministic layers are always tried before delegating externally,
// so the common commands keep working when the NLU capability is down.
package intent
