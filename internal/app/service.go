// Package service provides the session lifecycle manager that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/lingua/internal/adapters/idgen"
	"github.com/okian/lingua/internal/adapters/repository"
	"github.com/okian/lingua/internal/domain/dedupe"
	"github.com/okian/lingua/internal/domain/scoring"
	"github.com/okian/lingua/pkg/logger"
	"github.com/okian/lingua/pkg/metrics"
)

const (
	defaultShardCount      = 16
	defaultReplayCacheSize = 50_000
	defaultSweepSchedule   = "@every 1m"
)

// Service owns the session store and every operation on it.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	ids     idgen.Generator
	scorer  scoring.Scorer

	// Configuration
	shardCount      int
	replayCacheSize int
	sessionTTL      time.Duration
	sweepSchedule   string
	now             func() time.Time

	// State
	started bool
	cron    *cron.Cron

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the default in-memory session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithIDGenerator sets the session and turn id generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithScorer replaces the heuristic scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithShardCount sets the number of shards of the default store.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithReplayCacheSize bounds the number of remembered turn keys.
// Zero or less keeps keys until their session expires.
func WithReplayCacheSize(n int) Option {
	return func(s *Service) {
		s.replayCacheSize = n
	}
}

// WithSessionTTL removes sessions idle for longer than ttl. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepSchedule sets the cron spec of the expiry sweeper.
func WithSweepSchedule(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.sweepSchedule = spec
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Components not supplied through options are
// built with their defaults.
func New(ctx context.Context, opts ...Option) *Service {
	s := &Service{
		shardCount:      defaultShardCount,
		replayCacheSize: defaultReplayCacheSize,
		sweepSchedule:   defaultSweepSchedule,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx, repository.WithShardCount(s.shardCount))
	}
	if s.ids == nil {
		s.ids = idgen.UUID{}
	}
	if s.scorer == nil {
		s.scorer = scoring.NewHeuristic()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.replayCacheSize))
	return s
}

// Start launches the expiry sweeper. It is a no-op when expiry is disabled
// or the service is already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting session service...")

	if s.sessionTTL > 0 {
		cl := cronLogger{ctx: ctx, l: s.logger.Named("sweeper")}
		c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
		if _, err := c.AddFunc(s.sweepSchedule, func() { s.Sweep(ctx) }); err != nil {
			return classify("start", err)
		}
		c.Start()
		s.cron = c
	}

	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.Int("shards", s.shardCount),
		logger.Int("replayCacheSize", s.replayCacheSize),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.String("sweepSchedule", s.sweepSchedule),
	)
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping session service...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "session service stopped")
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Service) Sweep(ctx context.Context) int {
	if s.sessionTTL <= 0 {
		return 0
	}
	start := time.Now()
	removed := s.store.DeleteIdle(ctx, s.now().Add(-s.sessionTTL))
	for _, id := range removed {
		s.deduper.Forget(ctx, id)
	}

	metrics.RecordSweep(float64(time.Since(start).Microseconds()) / 1000)
	if len(removed) > 0 {
		metrics.RecordSessionsExpired(len(removed))
		s.logger.Info(ctx, "expired idle sessions", logger.Int("removed", len(removed)))
	}
	s.refreshCounts(ctx)
	return len(removed)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	counts := s.refreshCounts(ctx)
	return map[string]interface{}{
		"started":         s.started,
		"activeSessions":  counts.Active,
		"endedSessions":   counts.Ended,
		"totalSessions":   counts.Total(),
		"replayKeys":      s.deduper.Size(),
		"shardCount":      s.shardCount,
		"sessionTTL":      s.sessionTTL.String(),
		"sweepSchedule":   s.sweepSchedule,
		"replayCacheSize": s.replayCacheSize,
	}
}

func (s *Service) refreshCounts(ctx context.Context) repository.Counts {
	c := s.store.Count(ctx)
	metrics.UpdateSessionCounts(c.Active, c.Ended)
	return c
}

// cronLogger routes cron's internal logging through our logger.
type cronLogger struct {
	ctx context.Context
	l   logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(c.ctx, msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(c.ctx, msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
