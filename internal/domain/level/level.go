// Package level maps raw percentages to IELTS-style band scores and CEFR levels.
//
// All percent -> level conversions go through the band table: a level is
// always BandToLevel(ScoreToBand(p)), never a separate percent bucket.
package level

import (
	"fmt"
	"math"
	"strings"
)

// Band is an IELTS-style band score in 0.5 steps.
type Band float64

// Level is a CEFR proficiency level.
type Level string

// CEFR levels in ascending order.
const (
	A1 Level = "A1"
	A2 Level = "A2"
	B1 Level = "B1"
	B2 Level = "B2"
	C1 Level = "C1"
	C2 Level = "C2"
)

// FloorBand is returned for any percentage below every band threshold.
const FloorBand Band = 4.5

type bandStep struct {
	minPercent float64
	band       Band
}

// bandSteps is ordered descending; the first step whose minimum is met wins.
var bandSteps = []bandStep{
	{90, 8.5},
	{85, 8.0},
	{80, 7.5},
	{75, 7.0},
	{70, 6.5},
	{65, 6.0},
	{60, 5.5},
	{55, 5.0},
}

type levelStep struct {
	minBand Band
	level   Level
}

var levelSteps = []levelStep{
	{8.0, C2},
	{7.0, C1},
	{6.0, B2},
	{5.0, B1},
	{4.0, A2},
}

var ordered = []Level{A1, A2, B1, B2, C1, C2}

// ScoreToBand returns the band for a raw percentage. A percentage that sits
// exactly on a threshold resolves to the higher band.
func ScoreToBand(percent float64) Band {
	if math.IsNaN(percent) {
		return FloorBand
	}
	for _, s := range bandSteps {
		if percent >= s.minPercent {
			return s.band
		}
	}
	return FloorBand
}

// BandToLevel returns the CEFR level for a band score.
func BandToLevel(b Band) Level {
	for _, s := range levelSteps {
		if b >= s.minBand {
			return s.level
		}
	}
	return A1
}

// ScoreToLevel is BandToLevel(ScoreToBand(percent)).
func ScoreToLevel(percent float64) Level {
	return BandToLevel(ScoreToBand(percent))
}

// RoundHalf rounds to the nearest multiple of 0.5, halves rounding up.
func RoundHalf(v float64) Band {
	return Band(math.Floor(v*2+0.5) / 2)
}

// Valid reports whether l is one of the six CEFR levels.
func (l Level) Valid() bool {
	for _, o := range ordered {
		if l == o {
			return true
		}
	}
	return false
}

// Rank returns the ordinal position of l (A1 = 0), or -1 when invalid.
func (l Level) Rank() int {
	for i, o := range ordered {
		if l == o {
			return i
		}
	}
	return -1
}

// ParseLevel accepts a CEFR level in any case, surrounded by whitespace.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return l, nil
}

// String formats the band with one decimal, e.g. "6.5".
func (b Band) String() string {
	return fmt.Sprintf("%.1f", float64(b))
}
