package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrFeatureNotFound = errors.New("feature not found")
	ErrInvalidCatalog  = errors.New("invalid feature catalog")
)
