package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrMissingSpeaker = errors.New("missing who")
	ErrUnknownSpeaker = errors.New("unknown who; must be user or coach")
	ErrEmptyText      = errors.New("missing text")
	ErrSessionEnded   = errors.New("session already ended")
	ErrUnknownSkill   = errors.New("unknown skill")
)
