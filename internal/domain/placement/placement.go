// Package placement combines single-skill assessments into an overall
// placement band and CEFR level.
package placement

import (
	"fmt"
	"math"

	"github.com/okian/lingua/internal/domain/level"
	"github.com/okian/lingua/internal/domain/model"
)

// Assess maps a skill's raw percentage through the band table. The
// percentage is clamped to [0, 100]; NaN is treated as 0.
func Assess(skill model.Skill, rawPercent float64) (model.SkillResult, error) {
	k, err := model.ParseSkill(string(skill))
	if err != nil {
		return model.SkillResult{}, fmt.Errorf("%w: %w", ErrInvalidSkill, err)
	}
	p := clampPercent(rawPercent)
	band := level.ScoreToBand(p)
	return model.SkillResult{
		Skill:           k,
		RawScorePercent: p,
		Level:           level.BandToLevel(band),
		BandScore:       band,
	}, nil
}

// Aggregate averages the skill bands, rounds to the nearest half band
// (halves round up) and derives the overall level from that band.
func Aggregate(results []model.SkillResult) (model.PlacementResult, error) {
	if len(results) == 0 {
		return model.PlacementResult{}, ErrEmpty
	}
	var sum float64
	for _, r := range results {
		sum += float64(r.BandScore)
	}
	overall := level.RoundHalf(sum / float64(len(results)))

	out := make([]model.SkillResult, len(results))
	copy(out, results)
	return model.PlacementResult{
		Results:      out,
		OverallBand:  overall,
		OverallLevel: level.BandToLevel(overall),
	}, nil
}

// Score is one raw skill score submitted for placement.
type Score struct {
	Skill           model.Skill `json:"skill"`
	RawScorePercent float64     `json:"rawScorePercent"`
}

// Place assesses every score and aggregates them. Each skill may appear at
// most once.
func Place(scores []Score) (model.PlacementResult, error) {
	if len(scores) == 0 {
		return model.PlacementResult{}, ErrEmpty
	}
	seen := make(map[model.Skill]struct{}, len(scores))
	results := make([]model.SkillResult, 0, len(scores))
	for _, s := range scores {
		skill, err := model.ParseSkill(string(s.Skill))
		if err != nil {
			return model.PlacementResult{}, fmt.Errorf("%w: %w", ErrInvalidSkill, err)
		}
		if _, dup := seen[skill]; dup {
			return model.PlacementResult{}, fmt.Errorf("%w: %s", ErrDuplicateSkill, skill)
		}
		seen[skill] = struct{}{}
		r, err := Assess(skill, s.RawScorePercent)
		if err != nil {
			return model.PlacementResult{}, err
		}
		results = append(results, r)
	}
	return Aggregate(results)
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}
