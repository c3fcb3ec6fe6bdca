package core

import "errors"

var (
	// ErrNotFound is returned when a directory or artifact lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable signals that both session store tiers failed; the
	// caller must treat the event as a brand-new idle session.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrNoPendingAction is returned when a confirm or cancel arrives with
	// nothing parked.
	ErrNoPendingAction = errors.New("no pending action")
	// ErrCodeAlreadyAssigned guards short-code stability: a code is derived
	// once per entity and never reassigned.
	ErrCodeAlreadyAssigned = errors.New("short code already assigned")
)
