package util

import "github.com/google/uuid"

// NewID returns a new globally unique identifier, used for action tokens and
// pending-action ids.
func NewID() string { return uuid.NewString() }
