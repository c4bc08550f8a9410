// Package scoring turns a session's turn log into a 0-100 proficiency score.
//
// The heuristic here is a stand-in for a real evaluator: it only looks at
// how much the student said, never at what they said.
package scoring

import (
	"strings"

	"github.com/okian/lingua/internal/domain/model"
)

// Heuristic scoring constants.
const (
	baseScore     = 40
	pointsPerTurn = 5
	maxTurnPoints = 30
	wordsPerStep  = 20
	pointsPerStep = 3
	maxWordPoints = 30
	minScoreValue = 0
	maxScoreValue = 100
)

// Scorer computes a score from a turn log. Implementations must be
// deterministic and free of side effects.
type Scorer interface {
	Score(turns []model.Turn) int
}

// Stats are the volume figures the heuristic is built from.
type Stats struct {
	UserTurns  int
	TotalWords int
}

// Collect counts user turns and their whitespace-delimited words. Coach
// turns are ignored.
func Collect(turns []model.Turn) Stats {
	var st Stats
	for _, t := range turns {
		if t.Who != model.User {
			continue
		}
		st.UserTurns++
		st.TotalWords += len(strings.Fields(t.Text))
	}
	return st
}

// FromStats applies the heuristic formula to precomputed stats.
func FromStats(st Stats) int {
	score := baseScore
	score += min(maxTurnPoints, st.UserTurns*pointsPerTurn)
	score += min(maxWordPoints, (st.TotalWords/wordsPerStep)*pointsPerStep)
	return max(minScoreValue, min(maxScoreValue, score))
}

// Heuristic is the volume-based Scorer.
type Heuristic struct{}

// NewHeuristic returns the volume-based scorer.
func NewHeuristic() Heuristic {
	return Heuristic{}
}

// Score implements Scorer.
func (Heuristic) Score(turns []model.Turn) int {
	return FromStats(Collect(turns))
}

// Score is a convenience for NewHeuristic().Score(turns).
func Score(turns []model.Turn) int {
	return FromStats(Collect(turns))
}
