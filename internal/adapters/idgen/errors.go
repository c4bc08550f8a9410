package idgen

import "errors"

// Sentinel kinds for id generation errors.
var (
	ErrGenerate      = errors.New("id generation failed")
	ErrUnknownScheme = errors.New("unknown id scheme")
)
