package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrModelNotFound = errors.New("model not found")
	// ErrConfiguration marks an inconsistency between the registry and the
	// catalog. It is fatal at startup.
	ErrConfiguration = errors.New("model configuration error")
)
