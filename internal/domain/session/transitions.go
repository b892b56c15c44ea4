package session

import (
	"time"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/scoring"
)

// Action names a state-machine transition.
type Action string

const (
	ActionPause         Action = "pause"
	ActionResume        Action = "resume"
	ActionNext          Action = "next"
	ActionPrevious      Action = "previous"
	ActionAnswer        Action = "answer"
	ActionMarkForReview Action = "mark_for_review"
	ActionComplete      Action = "complete"
	ActionDelete        Action = "delete"
)

// Actions lists every action in a stable order.
var Actions = []Action{
	ActionPause, ActionResume, ActionNext, ActionPrevious,
	ActionAnswer, ActionMarkForReview, ActionComplete, ActionDelete,
}

var validFrom = map[Action][]Status{
	ActionPause:         {StatusActive},
	ActionResume:        {StatusPaused},
	ActionNext:          {StatusActive, StatusPaused},
	ActionPrevious:      {StatusActive, StatusPaused},
	ActionAnswer:        {StatusActive, StatusPaused},
	ActionMarkForReview: {StatusActive, StatusPaused},
	ActionComplete:      {StatusActive, StatusPaused},
	ActionDelete:        {StatusActive, StatusPaused},
}

// ParseAction reports whether s names a known action.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := validFrom[a]
	return a, ok
}

// Allowed reports whether action a is legal from status st.
func Allowed(a Action, st Status) bool {
	for _, from := range validFrom[a] {
		if from == st {
			return true
		}
	}
	return false
}

// Check returns an invalid_transition error when a is not legal in the
// session's current status.
func (s *Session) Check(a Action) error {
	if _, ok := validFrom[a]; !ok {
		return apperr.Validation("unknown action %q", a)
	}
	if Allowed(a, s.Status) {
		return nil
	}
	switch {
	case a == ActionComplete && s.Status == StatusCompleted:
		return apperr.InvalidTransition("Session is already completed")
	case a == ActionDelete && s.Status == StatusCompleted:
		return apperr.InvalidTransition("Cannot delete completed sessions - they are archived for analytics")
	case s.Status.Terminal():
		return apperr.InvalidTransition("Cannot %s a %s session", a, s.Status)
	default:
		return apperr.InvalidTransition("Cannot %s session in %s status", a, s.Status)
	}
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now
}

func (s *Session) Pause(now time.Time) error {
	if err := s.Check(ActionPause); err != nil {
		return err
	}
	s.Status = StatusPaused
	s.touch(now)
	return nil
}

func (s *Session) Resume(now time.Time) error {
	if err := s.Check(ActionResume); err != nil {
		return err
	}
	s.Status = StatusActive
	s.touch(now)
	return nil
}

// Next moves to the following question. Moving past the last question is
// rejected rather than clamped.
func (s *Session) Next(now time.Time) error {
	if err := s.Check(ActionNext); err != nil {
		return err
	}
	if s.CurrentQuestionIndex >= s.TotalQuestions()-1 {
		return apperr.PreconditionFailed("Already at the last question")
	}
	s.CurrentQuestionIndex++
	s.touch(now)
	return nil
}

// Previous moves to the preceding question.
func (s *Session) Previous(now time.Time) error {
	if err := s.Check(ActionPrevious); err != nil {
		return err
	}
	if s.CurrentQuestionIndex <= 0 {
		return apperr.PreconditionFailed("Already at the first question")
	}
	s.CurrentQuestionIndex--
	s.touch(now)
	return nil
}

// AnswerInput is the payload of an answer action. TimeSpent is a pointer so
// a missing value can be told apart from zero.
type AnswerInput struct {
	QuestionID      string
	Answer          []string
	TimeSpent       *int
	Skipped         bool
	MarkedForReview *bool
}

func (in AnswerInput) validate() error {
	if in.QuestionID == "" {
		return apperr.Validation("questionId is required")
	}
	if in.TimeSpent == nil {
		return apperr.Validation("timeSpent is required")
	}
	if *in.TimeSpent < 0 {
		return apperr.Validation("timeSpent must be non-negative")
	}
	if !in.Skipped && len(in.Answer) == 0 {
		return apperr.Validation("answer is required unless the question is skipped")
	}
	return nil
}

// Answer records an answer (or a skip) for one question and rescores it.
// Time accumulates across submissions; answeredAt keeps the first one.
func (s *Session) Answer(in AnswerInput, now time.Time) (*SessionQuestion, error) {
	if err := s.Check(ActionAnswer); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	idx := s.QuestionIndex(in.QuestionID)
	if idx < 0 {
		return nil, apperr.NotFound("Question %s is not part of this session", in.QuestionID)
	}

	q := &s.Questions[idx]
	q.TimeSpent += *in.TimeSpent

	if len(in.Answer) > 0 {
		answer := make([]string, len(in.Answer))
		copy(answer, in.Answer)
		correct := scoring.IsCorrect(answer, q.CorrectAnswer)

		q.UserAnswer = answer
		q.IsCorrect = &correct
		q.Skipped = false
		if q.AnsweredAt == nil {
			at := now
			q.AnsweredAt = &at
		}
	} else {
		q.Skipped = true
	}
	q.Points = scoring.Award(q.Correct(), q.Difficulty, float64(q.TimeSpent))

	if in.MarkedForReview != nil {
		q.MarkedForReview = *in.MarkedForReview
	}

	s.recountCorrect()
	s.touch(now)
	return q, nil
}

// ToggleReview flips the review flag on one question.
func (s *Session) ToggleReview(questionID string, now time.Time) (*SessionQuestion, error) {
	if err := s.Check(ActionMarkForReview); err != nil {
		return nil, err
	}
	if questionID == "" {
		return nil, apperr.Validation("questionId is required")
	}
	idx := s.QuestionIndex(questionID)
	if idx < 0 {
		return nil, apperr.NotFound("Question %s is not part of this session", questionID)
	}
	q := &s.Questions[idx]
	q.MarkedForReview = !q.MarkedForReview
	s.touch(now)
	return q, nil
}

// Complete finalizes the session and fixes its score.
func (s *Session) Complete(now time.Time) error {
	if err := s.Check(ActionComplete); err != nil {
		return err
	}
	if n := s.Unanswered(); n > 0 {
		return apperr.PreconditionFailed("Cannot complete session: %d questions remain unanswered", n)
	}

	score := 0
	for i := range s.Questions {
		q := &s.Questions[i]
		q.Points = scoring.Award(q.Correct(), q.Difficulty, float64(q.TimeSpent))
		score += q.Points
	}
	s.recountCorrect()

	end := now
	s.Score = &score
	s.EndTime = &end
	s.Status = StatusCompleted
	s.touch(now)
	return nil
}

// Delete applies delete semantics: active and paused sessions are
// abandoned in place, an abandoned session should be removed from storage
// (hard is true), and a completed session is kept.
func (s *Session) Delete(now time.Time) (hard bool, err error) {
	if s.Status == StatusAbandoned {
		return true, nil
	}
	if err := s.Check(ActionDelete); err != nil {
		return false, err
	}
	end := now
	s.Status = StatusAbandoned
	s.EndTime = &end
	s.touch(now)
	return false, nil
}
