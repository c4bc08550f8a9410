package service

import (
	"errors"
	"fmt"

	"github.com/okian/lingua/internal/adapters/repository"
	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
)

// Error kinds returned by Service operations. Callers match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrSessionEnded = errors.New("session ended")
)

// classify tags err with op and the kind it belongs to. Errors of no known
// kind are returned wrapped with op only.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, model.ErrSessionEnded):
		return fmt.Errorf("%s: %w: %w", op, ErrSessionEnded, err)
	case errors.Is(err, model.ErrMissingSpeaker),
		errors.Is(err, model.ErrUnknownSpeaker),
		errors.Is(err, model.ErrEmptyText),
		errors.Is(err, placement.ErrEmpty),
		errors.Is(err, placement.ErrInvalidSkill),
		errors.Is(err, placement.ErrDuplicateSkill):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// rejectReason is the metrics label for a failed append.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSessionEnded):
		return "ended"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "internal"
	}
}
