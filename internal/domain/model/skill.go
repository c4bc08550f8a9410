package model

import (
	"fmt"
	"strings"

	"github.com/okian/lingua/internal/domain/level"
)

// Skill is one of the four assessed language skills.
type Skill string

const (
	Listening Skill = "listening"
	Reading   Skill = "reading"
	Writing   Skill = "writing"
	Speaking  Skill = "speaking"
)

// Skills lists every assessed skill in display order.
var Skills = []Skill{Listening, Reading, Writing, Speaking}

// ParseSkill accepts a skill name in any case.
func ParseSkill(s string) (Skill, error) {
	k := Skill(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Skills {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSkill, s)
}

// SkillResult is the outcome of a single-skill assessment.
type SkillResult struct {
	Skill           Skill       `json:"skill"`
	RawScorePercent float64     `json:"rawScorePercent"`
	Level           level.Level `json:"level"`
	BandScore       level.Band  `json:"bandScore"`
}

// PlacementResult combines several skill results into one overall outcome.
type PlacementResult struct {
	Results      []SkillResult `json:"results"`
	OverallBand  level.Band    `json:"overallBand"`
	OverallLevel level.Level   `json:"overallLevel"`
}
