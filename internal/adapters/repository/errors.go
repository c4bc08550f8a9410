package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session id already exists")
	ErrNilValue = errors.New("nil session")
)
