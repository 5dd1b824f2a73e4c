package collect

import "errors"

// Sentinel kinds for rejected user input.
var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidNumber    = errors.New("invalid number")
)
