// Package idgen provides collision-resistant identifiers for sessions and
// turns.
package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Supported schemes.
const (
	SchemeUUID   = "uuid"
	SchemeNanoID = "nanoid"
)

// Generator returns a new unique identifier on every call.
type Generator interface {
	NewID() (string, error)
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return id.String(), nil
}

// NanoID generates 21-character URL-safe nano ids.
type NanoID struct{}

// NewID implements Generator.
func (NanoID) NewID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return id, nil
}

// New returns the generator for scheme ("uuid" or "nanoid").
func New(scheme string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeUUID:
		return UUID{}, nil
	case SchemeNanoID:
		return NanoID{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}
