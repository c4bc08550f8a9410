package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/lingua/internal/adapters/repository"
	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
	"github.com/okian/lingua/internal/domain/prompt"
	"github.com/okian/lingua/pkg/logger"
	"github.com/okian/lingua/pkg/metrics"
)

// Summary accompanies every score.
const Summary = "Heuristic score based on how many answers you gave and how much you wrote."

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 5

// TurnInput is a turn submitted by a client.
type TurnInput struct {
	// Who is "user" or "coach".
	Who  string
	Text string
	// TS is the client timestamp. Zero means server time.
	TS time.Time
	// Key deduplicates retried submissions of the same turn. Optional.
	Key string
}

// CreateSession normalizes cfg, builds the coaching prompt and stores a new
// active session.
func (s *Service) CreateSession(ctx context.Context, cfg model.SessionConfig) (string, string, error) {
	const op = "create session"

	cfg = cfg.Normalize()
	script := prompt.Build(cfg)

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := s.ids.NewID()
		if err != nil {
			return "", "", classify(op, err)
		}
		err = s.store.Put(ctx, model.NewSession(id, cfg, script, s.now()))
		if errors.Is(err, repository.ErrExists) {
			s.logger.Warn(ctx, "session id collision, retrying",
				logger.String("sessionId", id), logger.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return "", "", classify(op, err)
		}

		metrics.RecordSessionStarted()
		s.logger.Debug(ctx, "session created",
			logger.String("sessionId", id),
			logger.String("topic", cfg.Topic),
			logger.Int("numQuestions", cfg.NumQuestions),
		)
		return id, script, nil
	}
	return "", "", fmt.Errorf("%s: no free id after %d attempts", op, maxIDAttempts)
}

// AppendTurn records a turn at the end of the session's log. A turn whose
// key was already accepted for this session is acknowledged without being
// recorded again.
func (s *Service) AppendTurn(ctx context.Context, sessionID string, in TurnInput) error {
	const op = "append turn"

	turnID, err := s.ids.NewID()
	if err != nil {
		return classify(op, err)
	}

	replayed := false
	_, err = s.store.Update(ctx, sessionID, func(sess *model.Session) error {
		if in.Key != "" && s.deduper.SeenAndRecord(ctx, sessionID, in.Key) {
			replayed = true
			return nil
		}
		appendErr := s.appendLocked(sess, turnID, in)
		if appendErr != nil && in.Key != "" {
			s.deduper.Unrecord(ctx, sessionID, in.Key)
		}
		return appendErr
	})
	if err != nil {
		err = classify(op, err)
		metrics.RecordTurnRejected(rejectReason(err))
		s.logger.Debug(ctx, "turn rejected", logger.String("sessionId", sessionID), logger.Error(err))
		return err
	}

	if replayed {
		metrics.RecordTurnReplayed()
		s.logger.Debug(ctx, "turn replay acknowledged",
			logger.String("sessionId", sessionID), logger.String("key", in.Key))
		return nil
	}
	who, _ := model.ParseSpeaker(in.Who)
	metrics.RecordTurnAppended(who.String())
	return nil
}

// appendLocked runs under the session lock.
func (s *Service) appendLocked(sess *model.Session, turnID string, in TurnInput) error {
	if _, err := sess.State.Next(model.ActionAppend); err != nil {
		return err
	}
	who, err := model.ParseSpeaker(in.Who)
	if err != nil {
		return err
	}
	now := s.now()
	turn, err := model.NewTurn(turnID, who, in.Text, in.TS, now)
	if err != nil {
		return err
	}
	return sess.Append(turn, now)
}

// EndSession ends the session and scores its turn log. Ending an ended
// session scores the same log again.
func (s *Service) EndSession(ctx context.Context, sessionID string) (model.ScoreResult, error) {
	const op = "end session"

	transitioned := false
	snap, err := s.store.Update(ctx, sessionID, func(sess *model.Session) error {
		transitioned = sess.End(s.now())
		return nil
	})
	if err != nil {
		return model.ScoreResult{}, classify(op, err)
	}

	score := s.scorer.Score(snap.Turns)
	if transitioned {
		metrics.RecordSessionEnded(score, len(snap.Turns))
		s.logger.Info(ctx, "session ended",
			logger.String("sessionId", sessionID),
			logger.Int("score", score),
			logger.Int("turns", len(snap.Turns)),
		)
	}

	return model.ScoreResult{
		SessionID: snap.ID,
		Score:     score,
		Turns:     snap.Turns,
		Summary:   Summary,
	}, nil
}

// GetSession returns a snapshot of the session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	snap, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return model.Session{}, classify("get session", err)
	}
	return snap, nil
}

// Place maps each raw skill score through the band table and aggregates
// them into an overall band and level.
func (s *Service) Place(ctx context.Context, scores []placement.Score) (model.PlacementResult, error) {
	res, err := placement.Place(scores)
	if err != nil {
		return model.PlacementResult{}, classify("place", err)
	}
	metrics.RecordPlacement(string(res.OverallLevel), float64(res.OverallBand))
	s.logger.Debug(ctx, "placement computed",
		logger.Int("skills", len(res.Results)),
		logger.Float64("overallBand", float64(res.OverallBand)),
		logger.String("overallLevel", string(res.OverallLevel)),
	)
	return res, nil
}
