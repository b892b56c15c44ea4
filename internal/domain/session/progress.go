package session

import (
	"math"
	"time"
)

// Progress is a point-in-time view of how far through the session the
// user is.
type Progress struct {
	CurrentQuestionIndex int     `json:"current_question_index"`
	TotalQuestions       int     `json:"total_questions"`
	Answered             int     `json:"answered"`
	Skipped              int     `json:"skipped"`
	Remaining            int     `json:"remaining"`
	MarkedForReview      int     `json:"marked_for_review"`
	CorrectAnswers       int     `json:"correct_answers"`
	PercentComplete      float64 `json:"percent_complete"`
	ElapsedSeconds       int     `json:"elapsed_seconds"`
	TimeRemainingSeconds *int    `json:"time_remaining_seconds,omitempty"`
	Expired              bool    `json:"expired"`
}

// Progress computes the current progress. Elapsed time stops at EndTime
// for finished sessions. The time limit is reported, not enforced.
func (s *Session) Progress(now time.Time) Progress {
	p := Progress{
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		TotalQuestions:       s.TotalQuestions(),
		CorrectAnswers:       s.CorrectAnswers,
	}
	for _, q := range s.Questions {
		switch {
		case q.Answered():
			p.Answered++
		case q.Skipped:
			p.Skipped++
		}
		if q.MarkedForReview {
			p.MarkedForReview++
		}
	}
	p.Remaining = p.TotalQuestions - p.Answered - p.Skipped
	if p.TotalQuestions > 0 {
		done := float64(p.Answered+p.Skipped) / float64(p.TotalQuestions) * 100
		p.PercentComplete = math.Round(done*100) / 100
	}

	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if elapsed := end.Sub(s.StartTime); elapsed > 0 {
		p.ElapsedSeconds = int(elapsed.Seconds())
	}

	if s.TimeLimitSeconds != nil {
		left := *s.TimeLimitSeconds - p.ElapsedSeconds
		if left <= 0 {
			left = 0
			p.Expired = true
		}
		p.TimeRemainingSeconds = &left
	}
	return p
}
