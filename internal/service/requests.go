package service

import (
	"strings"
	"time"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

type CreateSessionRequest struct {
	ProviderID       string   `json:"provider_id"`
	ExamID           string   `json:"exam_id"`
	TopicIDs         []string `json:"topic_ids,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Search           string   `json:"search,omitempty"`
	QuestionCount    *int     `json:"question_count,omitempty"`
	TimeLimitSeconds *int     `json:"time_limit_seconds,omitempty"`
	Adaptive         bool     `json:"adaptive"`
}

func (r CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.ProviderID) == "" {
		return apperr.Validation("provider_id is required")
	}
	if strings.TrimSpace(r.ExamID) == "" {
		return apperr.Validation("exam_id is required")
	}
	if r.QuestionCount != nil && (*r.QuestionCount < 1 || *r.QuestionCount > session.MaxQuestionCount) {
		return apperr.Validation("question_count must be between 1 and %d", session.MaxQuestionCount)
	}
	if r.TimeLimitSeconds != nil && *r.TimeLimitSeconds <= 0 {
		return apperr.Validation("time_limit_seconds must be positive")
	}
	if r.Difficulty != "" {
		if _, ok := questionbank.ParseDifficulty(r.Difficulty); !ok {
			return apperr.Validation("difficulty must be one of easy, medium, hard")
		}
	}
	for _, t := range r.TopicIDs {
		if strings.TrimSpace(t) == "" {
			return apperr.Validation("topic_ids must not contain empty values")
		}
	}
	return nil
}

func (r CreateSessionRequest) config() session.Config {
	cfg := session.DefaultConfig()
	if r.QuestionCount != nil {
		cfg.QuestionCount = *r.QuestionCount
	}
	if r.TimeLimitSeconds != nil {
		limit := time.Duration(*r.TimeLimitSeconds) * time.Second
		cfg.TimeLimit = &limit
	}
	cfg.Adaptive = r.Adaptive
	return cfg
}

func (r CreateSessionRequest) filter() questionbank.Filter {
	f := questionbank.Filter{TopicIDs: r.TopicIDs, Search: r.Search}
	if d, ok := questionbank.ParseDifficulty(r.Difficulty); ok {
		f.Difficulty = d
	}
	return f
}

type SubmitAnswerRequest struct {
	QuestionID      string   `json:"question_id"`
	Answer          []string `json:"answer"`
	TimeSpent       *int     `json:"time_spent"`
	Skipped         bool     `json:"skipped"`
	MarkedForReview *bool    `json:"marked_for_review,omitempty"`
}

func (r SubmitAnswerRequest) Validate() error {
	if strings.TrimSpace(r.QuestionID) == "" {
		return apperr.Validation("question_id is required")
	}
	if r.TimeSpent == nil {
		return apperr.Validation("time_spent is required")
	}
	if *r.TimeSpent < 0 {
		return apperr.Validation("time_spent must be non-negative")
	}
	if !r.Skipped && len(r.Answer) == 0 {
		return apperr.Validation("answer is required unless the question is skipped")
	}
	for _, a := range r.Answer {
		if strings.TrimSpace(a) == "" {
			return apperr.Validation("answer must not contain empty values")
		}
	}
	return nil
}

func (r SubmitAnswerRequest) input() session.AnswerInput {
	return session.AnswerInput{
		QuestionID:      r.QuestionID,
		Answer:          r.Answer,
		TimeSpent:       r.TimeSpent,
		Skipped:         r.Skipped,
		MarkedForReview: r.MarkedForReview,
	}
}

// UpdateSessionRequest carries one state-machine action. The answer fields
// are only read for the answer action, QuestionID also for mark_for_review.
type UpdateSessionRequest struct {
	Action          string   `json:"action"`
	QuestionID      string   `json:"question_id,omitempty"`
	Answer          []string `json:"answer,omitempty"`
	TimeSpent       *int     `json:"time_spent,omitempty"`
	Skipped         bool     `json:"skipped,omitempty"`
	MarkedForReview *bool    `json:"marked_for_review,omitempty"`
}

func (r UpdateSessionRequest) Validate() error {
	action, ok := session.ParseAction(r.Action)
	if !ok {
		return apperr.Validation("action must be one of pause, resume, next, previous, answer, mark_for_review, complete, delete")
	}
	switch action {
	case session.ActionAnswer:
		return r.answer().Validate()
	case session.ActionMarkForReview:
		if strings.TrimSpace(r.QuestionID) == "" {
			return apperr.Validation("question_id is required")
		}
	}
	return nil
}

func (r UpdateSessionRequest) answer() SubmitAnswerRequest {
	return SubmitAnswerRequest{
		QuestionID:      r.QuestionID,
		Answer:          r.Answer,
		TimeSpent:       r.TimeSpent,
		Skipped:         r.Skipped,
		MarkedForReview: r.MarkedForReview,
	}
}
