// Package repository defines the session store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/lingua/internal/domain/model"
)

// Counts summarises the sessions held by a store.
type Counts struct {
	Active int
	Ended  int
}

// Total returns Active + Ended.
func (c Counts) Total() int {
	return c.Active + c.Ended
}

// Store is a keyed repository of sessions that lives for the process
// lifetime only.
//
// Mutual exclusion is per session id: Update runs fn while holding the
// session's lock, so concurrent updates of one session are serialized and
// none is lost, while updates of different sessions proceed in parallel.
// fn must not call back into the store. Values returned by Get and Update
// are snapshots; mutating them does not affect the stored session.
type Store interface {
	// Put stores a new session. Returns ErrExists if the id is taken.
	Put(ctx context.Context, s *model.Session) error

	// Get returns a snapshot of the session. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.Session, error)

	// Update applies fn to the stored session under its lock and returns a
	// snapshot taken after fn. If fn fails, its error is returned and the
	// caller is responsible for fn having left the session untouched.
	Update(ctx context.Context, id string, fn func(*model.Session) error) (model.Session, error)

	// Delete removes the session. Returns ErrNotFound if unknown.
	Delete(ctx context.Context, id string) error

	// DeleteIdle removes every session whose last update is before cutoff
	// and returns their ids.
	DeleteIdle(ctx context.Context, cutoff time.Time) []string

	// Count returns the number of sessions by state.
	Count(ctx context.Context) Counts
}
