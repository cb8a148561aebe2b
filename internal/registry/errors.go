package registry

import "errors"

// Sentinel errors surfaced verbatim to callers. Environmental failures are
// wrapped os errors instead, safe to retry since no mutating operation
// leaves partial state behind.
var (
	// ErrDuplicateID means the id already names a live record, or a retained
	// tombstone that must be purged before the id can be reused.
	ErrDuplicateID = errors.New("server id already in use")
	// ErrNotFound means no live record has the requested id.
	ErrNotFound = errors.New("server not found")
	// ErrAlreadyScaffolded rejects scaffolding a record twice.
	ErrAlreadyScaffolded = errors.New("server already scaffolded")
	// ErrNotRemoved rejects purging a record that is still live.
	ErrNotRemoved = errors.New("server is not removed")
)
