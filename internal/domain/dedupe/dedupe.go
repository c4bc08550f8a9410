// Package dedupe remembers client-supplied turn keys so that a retried
// turn append is recognised instead of being recorded twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the number of remembered keys.
const defaultMaxSize = 50_000

// Deduper records (session, key) pairs to ensure at-most-once appends.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen for the session and
	// records it if not. Returns true if it was already seen.
	SeenAndRecord(ctx context.Context, sessionID, key string) bool

	// Unrecord removes a key so it can be retried. Used when the append
	// that recorded it failed.
	Unrecord(ctx context.Context, sessionID, key string)

	// Forget drops every key belonging to a session.
	Forget(ctx context.Context, sessionID string)

	Size() int64
}

type entryKey struct {
	session string
	key     string
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest
// once maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu        sync.Mutex
	order     *list.List
	index     map[entryKey]*list.Element
	bySession map[string]map[string]struct{}
	maxSize   int
	size      atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.order = list.New()
	d.index = make(map[entryKey]*list.Element)
	d.bySession = make(map[string]map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, sessionID, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := entryKey{session: sessionID, key: key}
	if _, ok := d.index[k]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.index) >= d.maxSize {
		d.evictOldest()
	}
	d.index[k] = d.order.PushBack(k)
	keys, ok := d.bySession[sessionID]
	if !ok {
		keys = make(map[string]struct{})
		d.bySession[sessionID] = keys
	}
	keys[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, sessionID, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(entryKey{session: sessionID, key: key})
}

func (d *inMemoryDeduper) Forget(_ context.Context, sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.bySession[sessionID] {
		d.remove(entryKey{session: sessionID, key: key})
	}
	delete(d.bySession, sessionID)
}

// Size returns the current number of remembered keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.remove(front.Value.(entryKey))
}

// remove must be called with d.mu held.
func (d *inMemoryDeduper) remove(k entryKey) {
	el, ok := d.index[k]
	if !ok {
		return
	}
	d.order.Remove(el)
	delete(d.index, k)
	if keys, ok := d.bySession[k.session]; ok {
		delete(keys, k.key)
		if len(keys) == 0 {
			delete(d.bySession, k.session)
		}
	}
	d.size.Add(-1)
}
