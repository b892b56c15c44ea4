package session

import (
	"errors"
	"time"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/id"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// SessionQuestion is the per-question record within a session. The correct
// answer, difficulty and topic are copied from the corpus at creation so
// scoring and analysis stay stable if the source question is edited.
type SessionQuestion struct {
	QuestionID      string                  `json:"question_id"`
	TopicID         string                  `json:"topic_id"`
	Difficulty      questionbank.Difficulty `json:"difficulty"`
	CorrectAnswer   []string                `json:"-"`
	UserAnswer      []string                `json:"user_answer,omitempty"`
	IsCorrect       *bool                   `json:"is_correct,omitempty"`
	Points          int                     `json:"points"`
	TimeSpent       int                     `json:"time_spent"` // seconds
	Skipped         bool                    `json:"skipped"`
	MarkedForReview bool                    `json:"marked_for_review"`
	AnsweredAt      *time.Time              `json:"answered_at,omitempty"`
}

// Answered reports whether an answer has been recorded.
func (q SessionQuestion) Answered() bool {
	return q.UserAnswer != nil
}

// Correct is false for unanswered questions.
func (q SessionQuestion) Correct() bool {
	return q.IsCorrect != nil && *q.IsCorrect
}

// Session is one timed attempt at a fixed, ordered set of questions.
type Session struct {
	ID                   string            `json:"id"`
	ProviderID           string            `json:"provider_id"`
	ExamID               string            `json:"exam_id"`
	Status               Status            `json:"status"`
	Questions            []SessionQuestion `json:"questions"`
	CurrentQuestionIndex int               `json:"current_question_index"`
	CorrectAnswers       int               `json:"correct_answers"`
	Score                *int              `json:"score,omitempty"`
	TimeLimitSeconds     *int              `json:"time_limit_seconds,omitempty"`
	Adaptive             bool              `json:"adaptive"`
	StartTime            time.Time         `json:"start_time"`
	EndTime              *time.Time        `json:"end_time,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`

	// Version is bumped by the store on every successful update.
	Version int `json:"version"`
}

// TotalQuestions is fixed at creation.
func (s *Session) TotalQuestions() int {
	return len(s.Questions)
}

// ErrNoQuestions is returned by New when the selection came back empty.
var ErrNoQuestions = errors.New("session requires at least one question")

// New builds an active session over the selected questions, in order.
func New(providerID, examID string, selected []questionbank.Question, cfg Config, now time.Time) (*Session, error) {
	if len(selected) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]SessionQuestion, len(selected))
	for i, q := range selected {
		correct := make([]string, len(q.CorrectAnswer))
		copy(correct, q.CorrectAnswer)
		questions[i] = SessionQuestion{
			QuestionID:    q.ID,
			TopicID:       q.TopicID,
			Difficulty:    q.Difficulty,
			CorrectAnswer: correct,
		}
	}

	s := &Session{
		ID:         id.GenerateID(),
		ProviderID: providerID,
		ExamID:     examID,
		Status:     StatusActive,
		Questions:  questions,
		Adaptive:   cfg.Adaptive,
		StartTime:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cfg.TimeLimit != nil && *cfg.TimeLimit > 0 {
		secs := int(cfg.TimeLimit.Seconds())
		s.TimeLimitSeconds = &secs
	}
	return s, nil
}

// QuestionIndex returns the position of questionID, or -1.
func (s *Session) QuestionIndex(questionID string) int {
	for i := range s.Questions {
		if s.Questions[i].QuestionID == questionID {
			return i
		}
	}
	return -1
}

// Unanswered counts questions that are neither answered nor skipped.
func (s *Session) Unanswered() int {
	n := 0
	for _, q := range s.Questions {
		if !q.Answered() && !q.Skipped {
			n++
		}
	}
	return n
}

// TotalTimeSpent sums time across all questions, in seconds.
func (s *Session) TotalTimeSpent() int {
	total := 0
	for _, q := range s.Questions {
		total += q.TimeSpent
	}
	return total
}

func (s *Session) recountCorrect() {
	n := 0
	for _, q := range s.Questions {
		if q.Correct() {
			n++
		}
	}
	s.CorrectAnswers = n
}
