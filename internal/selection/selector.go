// Package selection picks the ordered list of questions for a new session.
package selection

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/examprep/backend/internal/domain/questionbank"
)

// Target share of each tier in an adaptive session.
var adaptiveRatios = map[questionbank.Difficulty]float64{
	questionbank.DifficultyEasy:   0.3,
	questionbank.DifficultyMedium: 0.5,
	questionbank.DifficultyHard:   0.2,
}

// Selector draws questions from a pool using its own random source.
// It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Selector backed by rng.
func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// NewSeeded creates a Selector with a deterministic source. A zero seed
// uses the current time.
func NewSeeded(seed int64) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return New(rand.New(rand.NewSource(seed)))
}

// Select shuffles pool uniformly and returns the first min(count, len(pool)).
// The input slice is not modified.
func (s *Selector) Select(pool []questionbank.Question, count int) []questionbank.Question {
	if len(pool) == 0 || count < 1 {
		return []questionbank.Question{}
	}
	shuffled := s.shuffle(pool)
	if count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return shuffled
}

// SelectAdaptive fills count slots using the 30/50/20 easy/medium/hard
// split, topping up from whatever remains when a tier runs short. The
// result is ordered easy → medium → hard, random within each tier.
func (s *Selector) SelectAdaptive(pool []questionbank.Question, count int) []questionbank.Question {
	if len(pool) == 0 || count < 1 {
		return []questionbank.Question{}
	}
	if count > len(pool) {
		count = len(pool)
	}

	targets := TierTargets(count)
	byTier := make(map[questionbank.Difficulty][]questionbank.Question)
	var other []questionbank.Question
	for _, q := range s.shuffle(pool) {
		if q.Difficulty.Valid() {
			byTier[q.Difficulty] = append(byTier[q.Difficulty], q)
		} else {
			other = append(other, q)
		}
	}

	picked := make(map[questionbank.Difficulty][]questionbank.Question)
	var leftovers []questionbank.Question
	for _, d := range questionbank.Difficulties {
		tier := byTier[d]
		n := targets[d]
		if n > len(tier) {
			n = len(tier)
		}
		picked[d] = tier[:n]
		leftovers = append(leftovers, tier[n:]...)
	}
	leftovers = append(leftovers, other...)

	out := make([]questionbank.Question, 0, count)
	for _, d := range questionbank.Difficulties {
		out = append(out, picked[d]...)
	}

	// Top up from the other tiers, keeping the tier ordering intact.
	missing := count - len(out)
	if missing > 0 {
		fill := s.shuffle(leftovers)[:missing]
		out = append(out, fill...)
		sortByTier(out)
	}
	return out
}

// TierTargets splits count across tiers. Easy and hard are rounded from
// their ratios; medium takes the remainder so the total is exact.
func TierTargets(count int) map[questionbank.Difficulty]int {
	easy := int(math.Round(float64(count) * adaptiveRatios[questionbank.DifficultyEasy]))
	hard := int(math.Round(float64(count) * adaptiveRatios[questionbank.DifficultyHard]))
	medium := count - easy - hard
	if medium < 0 {
		medium = 0
	}
	return map[questionbank.Difficulty]int{
		questionbank.DifficultyEasy:   easy,
		questionbank.DifficultyMedium: medium,
		questionbank.DifficultyHard:   hard,
	}
}

func (s *Selector) shuffle(pool []questionbank.Question) []questionbank.Question {
	shuffled := make([]questionbank.Question, len(pool))
	copy(shuffled, pool)

	s.mu.Lock()
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	return shuffled
}

func tierRank(d questionbank.Difficulty) int {
	for i, t := range questionbank.Difficulties {
		if t == d {
			return i
		}
	}
	return len(questionbank.Difficulties)
}

func sortByTier(qs []questionbank.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		return tierRank(qs[i].Difficulty) < tierRank(qs[j].Difficulty)
	})
}
