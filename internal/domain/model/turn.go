// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Speaker identifies who produced a turn.
type Speaker int

const (
	SpeakerUnknown Speaker = iota
	User
	Coach
)

// ParseSpeaker accepts "user" or "coach" in any case.
func ParseSpeaker(s string) (Speaker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return User, nil
	case "coach":
		return Coach, nil
	case "":
		return SpeakerUnknown, ErrMissingSpeaker
	default:
		return SpeakerUnknown, fmt.Errorf("%w: %q", ErrUnknownSpeaker, s)
	}
}

func (s Speaker) String() string {
	switch s {
	case User:
		return "user"
	case Coach:
		return "coach"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the speaker as "user" or "coach".
func (s Speaker) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "user" or "coach".
func (s *Speaker) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownSpeaker, string(b))
	}
	v, err := ParseSpeaker(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Turn is one message exchanged in a session. Turns are never modified
// after they are appended.
type Turn struct {
	ID   string
	Who  Speaker
	Text string
	TS   time.Time
}

// turnJSON is the wire shape; ts is epoch milliseconds.
type turnJSON struct {
	ID   string  `json:"id"`
	Who  Speaker `json:"who"`
	Text string  `json:"text"`
	TS   int64   `json:"ts"`
}

// MarshalJSON encodes the turn with its timestamp in epoch milliseconds.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnJSON{ID: t.ID, Who: t.Who, Text: t.Text, TS: t.TS.UnixMilli()})
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (t *Turn) UnmarshalJSON(b []byte) error {
	var w turnJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Turn{ID: w.ID, Who: w.Who, Text: w.Text, TS: time.UnixMilli(w.TS).UTC()}
	return nil
}

// NewTurn validates who and text and builds a turn. A zero ts is replaced
// by now.
func NewTurn(id string, who Speaker, text string, ts, now time.Time) (Turn, error) {
	if who != User && who != Coach {
		return Turn{}, ErrMissingSpeaker
	}
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyText
	}
	if ts.IsZero() {
		ts = now
	}
	return Turn{ID: id, Who: who, Text: text, TS: ts}, nil
}
