package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/okian/lingua/internal/domain/level"
)

// Defaults applied to a SessionConfig.
const (
	DefaultStudentName  = "Student"
	DefaultCurrentLevel = "B1"
	DefaultTargetBand   = "not specified"
	DefaultTopic        = "Work & Career"
	DefaultNumQuestions = 5
	DefaultStudentInfo  = "(not provided)"
)

// SessionConfig describes the practice session a client asks for.
type SessionConfig struct {
	StudentName  string `json:"studentName"`
	CurrentLevel string `json:"currentLevel"`
	TargetBand   string `json:"targetBand"`
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
	StudentInfo  string `json:"studentInfo"`
}

// Normalize returns a copy with every blank field replaced by its default.
// Strings are trimmed, a recognised CEFR level is upper-cased, and a
// NumQuestions below 1 becomes the default.
func (c SessionConfig) Normalize() SessionConfig {
	out := SessionConfig{
		StudentName:  orDefault(c.StudentName, DefaultStudentName),
		CurrentLevel: orDefault(c.CurrentLevel, DefaultCurrentLevel),
		TargetBand:   orDefault(c.TargetBand, DefaultTargetBand),
		Topic:        orDefault(c.Topic, DefaultTopic),
		NumQuestions: c.NumQuestions,
		StudentInfo:  orDefault(c.StudentInfo, DefaultStudentInfo),
	}
	if l, err := level.ParseLevel(out.CurrentLevel); err == nil {
		out.CurrentLevel = string(l)
	}
	if out.NumQuestions < 1 {
		out.NumQuestions = DefaultNumQuestions
	}
	return out
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}

// UnmarshalJSON decodes a config permissively: numbers and numeric strings
// are both accepted for numQuestions and targetBand, and values of the
// wrong shape are dropped so Normalize can default them.
func (c *SessionConfig) UnmarshalJSON(b []byte) error {
	var raw struct {
		StudentName  looseString `json:"studentName"`
		CurrentLevel looseString `json:"currentLevel"`
		TargetBand   looseString `json:"targetBand"`
		Topic        looseString `json:"topic"`
		NumQuestions looseString `json:"numQuestions"`
		StudentInfo  looseString `json:"studentInfo"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = SessionConfig{
		StudentName:  string(raw.StudentName),
		CurrentLevel: string(raw.CurrentLevel),
		TargetBand:   string(raw.TargetBand),
		Topic:        string(raw.Topic),
		NumQuestions: coerceCount(string(raw.NumQuestions)),
		StudentInfo:  string(raw.StudentInfo),
	}
	return nil
}

// coerceCount parses s as a number and truncates it; anything unparsable is 0.
func coerceCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// looseString accepts a JSON string, number or boolean as text. Null,
// objects and arrays decode to the empty string.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*l = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
	case '{', '[', 'n':
		*l = ""
	default:
		*l = looseString(b)
	}
	return nil
}
