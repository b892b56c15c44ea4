// Package scoring converts submitted answers into correctness and points.
// Everything here is pure and safe for concurrent use.
package scoring

import (
	"math"

	"github.com/examprep/backend/internal/domain/questionbank"
)

const (
	MinTimeFactor = 0.5
	MaxTimeFactor = 1.5
)

// BasePoints returns the points for a correct answer before the time factor.
// Unknown difficulties score as medium.
func BasePoints(d questionbank.Difficulty) int {
	switch d {
	case questionbank.DifficultyEasy:
		return 1
	case questionbank.DifficultyHard:
		return 3
	default:
		return 2
	}
}

// ExpectedTime is the baseline duration, in seconds, for a question of
// difficulty d.
func ExpectedTime(d questionbank.Difficulty) float64 {
	switch d {
	case questionbank.DifficultyEasy:
		return 60
	case questionbank.DifficultyHard:
		return 120
	default:
		return 90
	}
}

// TimeFactor is expected/actual clamped to [0.5, 1.5]. A non-positive
// actual time gets the maximum bonus.
func TimeFactor(expectedSeconds, actualSeconds float64) float64 {
	if actualSeconds <= 0 {
		return MaxTimeFactor
	}
	f := expectedSeconds / actualSeconds
	return math.Max(MinTimeFactor, math.Min(MaxTimeFactor, f))
}

// Score returns round(basePoints * timeFactor).
func Score(d questionbank.Difficulty, expectedSeconds, actualSeconds float64) int {
	return int(math.Round(float64(BasePoints(d)) * TimeFactor(expectedSeconds, actualSeconds)))
}

// Award is the points for one answered question: Score when correct, else 0.
func Award(correct bool, d questionbank.Difficulty, actualSeconds float64) int {
	if !correct {
		return 0
	}
	return Score(d, ExpectedTime(d), actualSeconds)
}

// MaxPoints is the ceiling for a single question of difficulty d.
func MaxPoints(d questionbank.Difficulty) int {
	return int(math.Round(float64(BasePoints(d)) * MaxTimeFactor))
}

// IsCorrect reports whether the submitted identifiers equal the correct
// ones as sets. Order and duplicates are ignored; there is no partial credit.
func IsCorrect(userAnswer, correctAnswer []string) bool {
	if len(userAnswer) == 0 || len(correctAnswer) == 0 {
		return false
	}
	want := toSet(correctAnswer)
	got := toSet(userAnswer)
	if len(want) != len(got) {
		return false
	}
	for k := range got {
		if !want[k] {
			return false
		}
	}
	return true
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
