package transform

import "errors"

// ErrMissingFeature means a required feature never reached the transformer.
// Collect guarantees full coverage, so this is a wiring defect.
var ErrMissingFeature = errors.New("missing feature")
