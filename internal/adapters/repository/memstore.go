package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/pkg/metrics"
)

const defaultShardCount = 16

// record guards one session. deleted is set under mu when the record is
// removed, so an Update that looked the record up just before a Delete
// observes the removal instead of writing to an orphan.
type record struct {
	mu      sync.Mutex
	session *model.Session
	deleted bool
}

type shard struct {
	mu      sync.RWMutex
	records map[string]*record
}

// MemoryStore is a sharded in-memory Store. Shard locks are held only for
// map access; session mutation happens under the per-record lock.
// Lock order is shard then record, never the reverse.
type MemoryStore struct {
	shardCount int
	shards     []*shard
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(_ context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*record)}
	}
	metrics.UpdateRepositoryShardCount(s.shardCount)
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *MemoryStore) lookup(id string) (*record, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	rec, ok := sh.records[id]
	sh.mu.RUnlock()
	return rec, ok
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, sess *model.Session) error {
	defer observe("put", time.Now())
	if sess == nil {
		return ErrNilValue
	}
	sh := s.shardFor(sess.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.records[sess.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, sess.ID)
	}
	c := sess.Clone()
	sh.records[sess.ID] = &record{session: &c}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Session, error) {
	defer observe("get", time.Now())
	rec, ok := s.lookup(id)
	if !ok {
		return model.Session{}, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return model.Session{}, ErrNotFound
	}
	return rec.session.Clone(), nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*model.Session) error) (model.Session, error) {
	defer observe("update", time.Now())
	rec, ok := s.lookup(id)
	if !ok {
		return model.Session{}, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return model.Session{}, ErrNotFound
	}
	if err := fn(rec.session); err != nil {
		return model.Session{}, err
	}
	return rec.session.Clone(), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	defer observe("delete", time.Now())
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(sh.records, id)
	rec.mu.Lock()
	rec.deleted = true
	rec.mu.Unlock()
	return nil
}

// DeleteIdle implements Store.
func (s *MemoryStore) DeleteIdle(_ context.Context, cutoff time.Time) []string {
	defer observe("delete_idle", time.Now())
	var removed []string
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, rec := range sh.records {
			rec.mu.Lock()
			if rec.session.UpdatedAt.Before(cutoff) {
				rec.deleted = true
				delete(sh.records, id)
				removed = append(removed, id)
			}
			rec.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	return removed
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) Counts {
	var c Counts
	for i, sh := range s.shards {
		sh.mu.RLock()
		metrics.UpdateRepositoryRecordsPerShard(strconv.Itoa(i), len(sh.records))
		for _, rec := range sh.records {
			rec.mu.Lock()
			if rec.session.State == model.StateEnded {
				c.Ended++
			} else {
				c.Active++
			}
			rec.mu.Unlock()
		}
		sh.mu.RUnlock()
	}
	return c
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}
