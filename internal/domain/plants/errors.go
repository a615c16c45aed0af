package plants

import "errors"

// ErrNotFound indicates a history operation referenced an unknown profile.
// Treated as a caller bug, not retried.
var ErrNotFound = errors.New("plant profile not found")

// ErrEmptyName indicates a profile create with a blank name.
var ErrEmptyName = errors.New("plant name cannot be empty")
