package sessionsim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
	"github.com/okian/lingua/pkg/logger"
)

// ErrVerification is returned when the service answered differently from
// what the simulated sessions expect.
var ErrVerification = errors.New("verification failed")

// Run executes a complete simulation: health check, concurrent sessions,
// then one placement request.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	applyDefaults(config)
	log := config.log()
	stats := &Stats{
		SessionsPlanned: config.Sessions,
		StartTime:       time.Now(),
	}

	log.Info(ctx, "starting session simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.Sessions),
		logger.Int("turns", config.Turns),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	if err := checkServiceHealth(ctx, client, log); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	runSessions(ctx, config, client, stats)

	if err := runPlacement(ctx, client, stats); err != nil {
		log.Error(ctx, "placement check failed", logger.Error(err))
		stats.SessionsFailed++
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.SessionsFailed > 0 || stats.ScoreMismatches > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d score mismatches",
			ErrVerification, stats.SessionsFailed, stats.ScoreMismatches)
	}
	return stats, ctx.Err()
}

func applyDefaults(c *Config) {
	if c.Sessions <= 0 {
		c.Sessions = DefaultSessions
	}
	if c.Turns < 0 {
		c.Turns = DefaultTurns
	}
	if c.Words <= 0 {
		c.Words = DefaultWords
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, log logger.Logger) error {
	var health struct {
		OK bool `json:"ok"`
	}
	if err := client.getJSON(ctx, "/health", &health); err != nil {
		return err
	}
	if !health.OK {
		return errors.New("service reported not ok")
	}
	log.Info(ctx, "service is healthy")
	return nil
}

// runSessions drives config.Sessions sessions through a worker pool.
func runSessions(ctx context.Context, config *Config, client *HTTPClient, stats *Stats) {
	log := config.log()

	var (
		completed  int64
		failed     int64
		submitted  int64
		replayed   int64
		mismatches int64
	)

	var lastReport atomic.Int64
	plans := make(chan plan, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range plans {
				if ctx.Err() != nil {
					return
				}
				out, err := runSession(ctx, client, p)
				atomic.AddInt64(&submitted, int64(out.submitted))
				atomic.AddInt64(&replayed, int64(out.replayed))
				switch {
				case err == nil:
					atomic.AddInt64(&completed, 1)
				case errors.Is(err, ErrVerification):
					atomic.AddInt64(&mismatches, 1)
					log.Warn(ctx, "session verification failed", logger.String("sessionId", out.id), logger.Error(err))
				default:
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "session failed", logger.String("sessionId", out.id), logger.Error(err))
				}
				if config.Verbose && err == nil {
					log.Debug(ctx, "session completed", logger.String("sessionId", out.id), logger.Int("score", out.score))
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int64("completed", atomic.LoadInt64(&completed)),
						logger.Int64("failed", atomic.LoadInt64(&failed)),
						logger.Int("planned", config.Sessions))
				}
			}
		}()
	}

	go func() {
		defer close(plans)
		for i := 0; i < config.Sessions; i++ {
			select {
			case <-ctx.Done():
				return
			case plans <- generatePlan(config.Turns, config.Words):
			}
		}
	}()

	wg.Wait()

	stats.SessionsCompleted = int(completed)
	stats.SessionsFailed = int(failed)
	stats.ScoreMismatches = int(mismatches)
	stats.TurnsSubmitted = int(submitted)
	stats.TurnsReplayed = int(replayed)
}

type sessionOutcome struct {
	id        string
	score     int
	submitted int
	replayed  int
}

// runSession starts a session, submits every planned turn, retries the
// first turn with its original key and ends the session.
func runSession(ctx context.Context, client *HTTPClient, p plan) (sessionOutcome, error) {
	var out sessionOutcome

	var started startResponse
	if err := client.postJSON(ctx, "/session/start", map[string]string{"topic": p.Topic}, &started); err != nil {
		return out, err
	}
	out.id = started.SessionID
	base := "/session/" + url.PathEscape(started.SessionID)

	for i, t := range p.Turns {
		if err := client.postJSON(ctx, base+"/turn", t, nil); err != nil {
			return out, fmt.Errorf("turn %d: %w", i, err)
		}
		out.submitted++
	}
	if len(p.Turns) > 0 {
		if err := client.postJSON(ctx, base+"/turn", p.Turns[0], nil); err != nil {
			return out, fmt.Errorf("replayed turn: %w", err)
		}
		out.replayed++
	}

	var ended endResponse
	if err := client.postJSON(ctx, base+"/end", nil, &ended); err != nil {
		return out, err
	}
	out.score = ended.Score

	var sess sessionResponse
	if err := client.getJSON(ctx, base, &sess); err != nil {
		return out, err
	}
	if err := verifySession(p, ended, sess); err != nil {
		return out, err
	}
	return out, nil
}

// runPlacement submits one random placement and checks it against the
// local placement rules.
func runPlacement(ctx context.Context, client *HTTPClient, stats *Stats) error {
	scores := make([]placement.Score, 0, len(model.Skills))
	for _, skill := range model.Skills {
		scores = append(scores, placement.Score{Skill: skill, RawScorePercent: float64(randomInt(101))})
	}

	var got placementResponse
	if err := client.postJSON(ctx, "/placement", map[string]any{"results": scores}, &got); err != nil {
		return err
	}
	stats.PlacementLevel = got.OverallLevel
	stats.PlacementBand = got.OverallBand

	return verifyPlacement(scores, got)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, sessionsPerSecond float64

	if stats.SessionsPlanned > 0 {
		successRate = float64(stats.SessionsCompleted) / float64(stats.SessionsPlanned) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.SessionsCompleted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("sessionsPlanned", stats.SessionsPlanned),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("scoreMismatches", stats.ScoreMismatches),
		logger.Int("turnsSubmitted", stats.TurnsSubmitted),
		logger.Int("turnsReplayed", stats.TurnsReplayed),
		logger.String("placementLevel", stats.PlacementLevel),
		logger.Float64("placementBand", stats.PlacementBand),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}
