package placement

import "errors"

// Sentinel kinds for placement errors.
var (
	ErrEmpty          = errors.New("no skill results to aggregate")
	ErrInvalidSkill   = errors.New("invalid skill")
	ErrDuplicateSkill = errors.New("duplicate skill")
)
