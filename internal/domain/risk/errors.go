package risk

import "errors"

// Sentinel kinds for scoring artifact failures. Both abort one submission
// only.
var (
	ErrArtifactNotFound = errors.New("scoring artifact not found")
	ErrArtifactError    = errors.New("scoring artifact failed")
)
