package model

import (
	"encoding/json"
	"time"
)

// State is the lifecycle state of a session.
type State int

const (
	StateActive State = iota
	StateEnded
)

func (s State) String() string {
	if s == StateEnded {
		return "ended"
	}
	return "active"
}

// MarshalJSON encodes the state as "active" or "ended".
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Action is something that happens to a session.
type Action int

const (
	ActionAppend Action = iota
	ActionEnd
)

// Next returns the state reached by applying a to s. Appending to an ended
// session fails with ErrSessionEnded; ending an ended session is a no-op.
func (s State) Next(a Action) (State, error) {
	switch {
	case s == StateActive && a == ActionAppend:
		return StateActive, nil
	case s == StateActive && a == ActionEnd:
		return StateEnded, nil
	case s == StateEnded && a == ActionEnd:
		return StateEnded, nil
	default:
		return s, ErrSessionEnded
	}
}

// Session is a bounded practice interaction.
type Session struct {
	ID        string        `json:"sessionId"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	EndedAt   time.Time     `json:"endedAt,omitzero"`
	Config    SessionConfig `json:"config"`
	Prompt    string        `json:"-"`
	Turns     []Turn        `json:"turns"`
	State     State         `json:"state"`
}

// NewSession builds an Active session with an empty turn log.
func NewSession(id string, cfg SessionConfig, prompt string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Config:    cfg,
		Prompt:    prompt,
		Turns:     []Turn{},
		State:     StateActive,
	}
}

// Append adds t to the end of the turn log.
func (s *Session) Append(t Turn, now time.Time) error {
	next, err := s.State.Next(ActionAppend)
	if err != nil {
		return err
	}
	s.Turns = append(s.Turns, t)
	s.State = next
	s.UpdatedAt = now
	return nil
}

// End moves the session to Ended. It reports whether this call performed
// the transition.
func (s *Session) End(now time.Time) bool {
	next, _ := s.State.Next(ActionEnd)
	if s.State == next {
		return false
	}
	s.State = next
	s.EndedAt = now
	s.UpdatedAt = now
	return true
}

// Clone returns a copy whose turn log does not alias s.
func (s *Session) Clone() Session {
	c := *s
	c.Turns = make([]Turn, len(s.Turns))
	copy(c.Turns, s.Turns)
	return c
}

// ScoreResult is returned when a session ends.
type ScoreResult struct {
	SessionID string `json:"sessionId"`
	Score     int    `json:"score"`
	Turns     []Turn `json:"turns"`
	Summary   string `json:"summary"`
}
