// Package artifact provides implementations of core.ArtifactStore, the
// staging area for domain action results (reports, exports) between
// generation and delivery. The session's last action token points into this
// store, so a later "send it" message can locate the artifact without the
// transcript being persisted anywhere.
package artifact
