package session

import "time"

// Config holds the creation-time options of a session.
type Config struct {
	QuestionCount int            // number of questions to draw
	TimeLimit     *time.Duration // nil = no time limit
	Adaptive      bool           // true = draw by difficulty ratios instead of plain shuffle
}

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 100
)

// DefaultConfig returns a config with the default question count and no
// time limit.
func DefaultConfig() Config {
	return Config{
		QuestionCount: DefaultQuestionCount,
		TimeLimit:     nil,
		Adaptive:      false,
	}
}
