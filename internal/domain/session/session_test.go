package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func questions(n int, d questionbank.Difficulty) []questionbank.Question {
	qs := make([]questionbank.Question, n)
	for i := range qs {
		qs[i] = questionbank.Question{
			ID:            string(rune('a' + i)),
			TopicID:       "compute",
			Text:          "question",
			CorrectAnswer: []string{"0"},
			Difficulty:    d,
		}
	}
	return qs
}

func newSession(t *testing.T, n int) *session.Session {
	t.Helper()
	s, err := session.New("aws", "saa-c03", questions(n, questionbank.DifficultyMedium), session.DefaultConfig(), t0)
	require.NoError(t, err)
	return s
}

func answer(qid string, ans []string, secs int) session.AnswerInput {
	return session.AnswerInput{QuestionID: qid, Answer: ans, TimeSpent: intp(secs)}
}

func TestNew(t *testing.T) {
	limit := 30 * time.Minute
	cfg := session.Config{QuestionCount: 2, TimeLimit: &limit, Adaptive: true}
	src := questions(2, questionbank.DifficultyHard)

	s, err := session.New("aws", "saa-c03", src, cfg, t0)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, session.StatusActive, s.Status)
	assert.Equal(t, 2, s.TotalQuestions())
	assert.Equal(t, 0, s.CurrentQuestionIndex)
	assert.True(t, s.Adaptive)
	require.NotNil(t, s.TimeLimitSeconds)
	assert.Equal(t, 1800, *s.TimeLimitSeconds)
	assert.Equal(t, questionbank.DifficultyHard, s.Questions[0].Difficulty)

	// the correct answer is a copy, not an alias of the corpus slice
	src[0].CorrectAnswer[0] = "3"
	assert.Equal(t, []string{"0"}, s.Questions[0].CorrectAnswer)
}

func TestNew_NoQuestions(t *testing.T) {
	_, err := session.New("aws", "saa-c03", nil, session.DefaultConfig(), t0)
	assert.ErrorIs(t, err, session.ErrNoQuestions)
}

func TestAnswer_ScoresAndCounts(t *testing.T) {
	s := newSession(t, 2)

	q, err := s.Answer(answer("a", []string{"0"}, 45), t0.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, q.IsCorrect)
	assert.True(t, *q.IsCorrect)
	assert.Equal(t, 3, q.Points)
	assert.Equal(t, 1, s.CorrectAnswers)
	assert.Equal(t, t0.Add(time.Minute), s.UpdatedAt)

	q, err = s.Answer(answer("b", []string{"2"}, 60), t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, *q.IsCorrect)
	assert.Equal(t, 0, q.Points)
	assert.Equal(t, 1, s.CorrectAnswers)
}

func TestAnswer_Reanswer(t *testing.T) {
	s := newSession(t, 1)

	_, err := s.Answer(answer("a", []string{"1"}, 30), t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, s.CorrectAnswers)

	q, err := s.Answer(answer("a", []string{"0"}, 30), t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, s.CorrectAnswers)
	assert.Equal(t, 60, q.TimeSpent)
	assert.Equal(t, 3, q.Points) // medium, 90/60 = 1.5
	require.NotNil(t, q.AnsweredAt)
	assert.Equal(t, t0.Add(time.Minute), *q.AnsweredAt)
}

func TestAnswer_SkipAndReview(t *testing.T) {
	s := newSession(t, 2)

	q, err := s.Answer(session.AnswerInput{
		QuestionID: "a", Skipped: true, TimeSpent: intp(5), MarkedForReview: boolp(true),
	}, t0)
	require.NoError(t, err)
	assert.True(t, q.Skipped)
	assert.True(t, q.MarkedForReview)
	assert.Nil(t, q.UserAnswer)
	assert.Nil(t, q.IsCorrect)
	assert.Equal(t, 0, q.Points)
}

func TestAnswer_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   session.AnswerInput
		kind apperr.Kind
	}{
		{"missing question", session.AnswerInput{Answer: []string{"0"}, TimeSpent: intp(1)}, apperr.KindValidation},
		{"missing time", session.AnswerInput{QuestionID: "a", Answer: []string{"0"}}, apperr.KindValidation},
		{"negative time", answer("a", []string{"0"}, -1), apperr.KindValidation},
		{"missing answer", session.AnswerInput{QuestionID: "a", TimeSpent: intp(1)}, apperr.KindValidation},
		{"unknown question", answer("zz", []string{"0"}, 1), apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, 1)
			_, err := s.Answer(tt.in, t0)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Nil(t, s.Questions[0].UserAnswer)
		})
	}
}

func TestToggleReview(t *testing.T) {
	s := newSession(t, 1)

	q, err := s.ToggleReview("a", t0)
	require.NoError(t, err)
	assert.True(t, q.MarkedForReview)

	q, err = s.ToggleReview("a", t0)
	require.NoError(t, err)
	assert.False(t, q.MarkedForReview)

	_, err = s.ToggleReview("", t0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNavigation(t *testing.T) {
	s := newSession(t, 3)

	require.NoError(t, s.Next(t0))
	require.NoError(t, s.Next(t0))
	assert.Equal(t, 2, s.CurrentQuestionIndex)

	err := s.Next(t0)
	assert.ErrorIs(t, err, apperr.ErrPreconditionFailed)
	assert.Equal(t, "Already at the last question", apperr.Message(err))
	assert.Equal(t, 2, s.CurrentQuestionIndex)

	require.NoError(t, s.Previous(t0))
	require.NoError(t, s.Previous(t0))
	err = s.Previous(t0)
	assert.Equal(t, "Already at the first question", apperr.Message(err))
	assert.Equal(t, 0, s.CurrentQuestionIndex)
}

func TestNavigation_SingleQuestion(t *testing.T) {
	s := newSession(t, 1)
	assert.ErrorIs(t, s.Next(t0), apperr.ErrPreconditionFailed)
	assert.ErrorIs(t, s.Previous(t0), apperr.ErrPreconditionFailed)
	assert.Equal(t, 0, s.CurrentQuestionIndex)
}

func TestNavigation_WhilePaused(t *testing.T) {
	s := newSession(t, 2)
	require.NoError(t, s.Pause(t0))
	require.NoError(t, s.Next(t0))
	assert.Equal(t, session.StatusPaused, s.Status)
}

func TestComplete(t *testing.T) {
	s := newSession(t, 2)
	_, err := s.Answer(answer("a", []string{"0"}, 45), t0)
	require.NoError(t, err)

	err = s.Complete(t0)
	assert.ErrorIs(t, err, apperr.ErrPreconditionFailed)
	assert.Equal(t, "Cannot complete session: 1 questions remain unanswered", apperr.Message(err))
	assert.Equal(t, session.StatusActive, s.Status)

	_, err = s.Answer(session.AnswerInput{QuestionID: "b", Skipped: true, TimeSpent: intp(10)}, t0)
	require.NoError(t, err)

	end := t0.Add(5 * time.Minute)
	require.NoError(t, s.Complete(end))
	assert.Equal(t, session.StatusCompleted, s.Status)
	require.NotNil(t, s.Score)
	assert.Equal(t, 3, *s.Score)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, end, *s.EndTime)

	err = s.Complete(end)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, "Session is already completed", apperr.Message(err))
}

func TestDelete(t *testing.T) {
	s := newSession(t, 1)

	hard, err := s.Delete(t0)
	require.NoError(t, err)
	assert.False(t, hard)
	assert.Equal(t, session.StatusAbandoned, s.Status)

	hard, err = s.Delete(t0)
	require.NoError(t, err)
	assert.True(t, hard)

	c := newSession(t, 1)
	_, err = c.Answer(answer("a", []string{"0"}, 10), t0)
	require.NoError(t, err)
	require.NoError(t, c.Complete(t0))

	_, err = c.Delete(t0)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Contains(t, apperr.Message(err), "archived for analytics")
}

// in returns a session in the given status, positioned mid-way with one
// answered question so every action has something valid to work on.
func in(t *testing.T, st session.Status) *session.Session {
	t.Helper()
	s := newSession(t, 3)
	require.NoError(t, s.Next(t0))
	for _, qid := range []string{"a", "b", "c"} {
		_, err := s.Answer(answer(qid, []string{"0"}, 30), t0)
		require.NoError(t, err)
	}
	switch st {
	case session.StatusPaused:
		require.NoError(t, s.Pause(t0))
	case session.StatusCompleted:
		require.NoError(t, s.Complete(t0))
	case session.StatusAbandoned:
		_, err := s.Delete(t0)
		require.NoError(t, err)
	}
	return s
}

func apply(s *session.Session, a session.Action) error {
	switch a {
	case session.ActionPause:
		return s.Pause(t0)
	case session.ActionResume:
		return s.Resume(t0)
	case session.ActionNext:
		return s.Next(t0)
	case session.ActionPrevious:
		return s.Previous(t0)
	case session.ActionAnswer:
		_, err := s.Answer(answer("a", []string{"1"}, 5), t0)
		return err
	case session.ActionMarkForReview:
		_, err := s.ToggleReview("a", t0)
		return err
	case session.ActionComplete:
		return s.Complete(t0)
	case session.ActionDelete:
		_, err := s.Delete(t0)
		return err
	}
	panic("unhandled action " + a)
}

func TestTransitionTable(t *testing.T) {
	want := map[session.Action]map[session.Status]session.Status{
		session.ActionPause:         {session.StatusActive: session.StatusPaused},
		session.ActionResume:        {session.StatusPaused: session.StatusActive},
		session.ActionNext:          {session.StatusActive: session.StatusActive, session.StatusPaused: session.StatusPaused},
		session.ActionPrevious:      {session.StatusActive: session.StatusActive, session.StatusPaused: session.StatusPaused},
		session.ActionAnswer:        {session.StatusActive: session.StatusActive, session.StatusPaused: session.StatusPaused},
		session.ActionMarkForReview: {session.StatusActive: session.StatusActive, session.StatusPaused: session.StatusPaused},
		session.ActionComplete:      {session.StatusActive: session.StatusCompleted, session.StatusPaused: session.StatusCompleted},
		session.ActionDelete:        {session.StatusActive: session.StatusAbandoned, session.StatusPaused: session.StatusAbandoned},
	}
	statuses := []session.Status{
		session.StatusActive, session.StatusPaused, session.StatusCompleted, session.StatusAbandoned,
	}

	for _, a := range session.Actions {
		for _, st := range statuses {
			t.Run(string(a)+"/"+string(st), func(t *testing.T) {
				s := in(t, st)
				before := *s
				err := apply(s, a)

				to, legal := want[a][st]
				if legal {
					require.NoError(t, err)
					assert.Equal(t, to, s.Status)
					return
				}
				// deleting an abandoned session is the one non-error
				// response from a terminal state: it asks for a hard delete
				if a == session.ActionDelete && st == session.StatusAbandoned {
					require.NoError(t, err)
					assert.Equal(t, session.StatusAbandoned, s.Status)
					return
				}
				require.Error(t, err)
				assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
				assert.Equal(t, before.Status, s.Status)
				assert.Equal(t, before.UpdatedAt, s.UpdatedAt)
			})
		}
	}
}

func TestParseAction(t *testing.T) {
	a, ok := session.ParseAction("mark_for_review")
	assert.True(t, ok)
	assert.Equal(t, session.ActionMarkForReview, a)

	_, ok = session.ParseAction("rewind")
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	limit := 10 * time.Minute
	cfg := session.Config{QuestionCount: 4, TimeLimit: &limit}
	s, err := session.New("aws", "saa-c03", questions(4, questionbank.DifficultyEasy), cfg, t0)
	require.NoError(t, err)

	_, err = s.Answer(answer("a", []string{"0"}, 20), t0)
	require.NoError(t, err)
	_, err = s.Answer(session.AnswerInput{QuestionID: "b", Skipped: true, TimeSpent: intp(0), MarkedForReview: boolp(true)}, t0)
	require.NoError(t, err)

	p := s.Progress(t0.Add(4 * time.Minute))
	assert.Equal(t, 4, p.TotalQuestions)
	assert.Equal(t, 1, p.Answered)
	assert.Equal(t, 1, p.Skipped)
	assert.Equal(t, 2, p.Remaining)
	assert.Equal(t, 1, p.MarkedForReview)
	assert.Equal(t, 1, p.CorrectAnswers)
	assert.Equal(t, 50.0, p.PercentComplete)
	assert.Equal(t, 240, p.ElapsedSeconds)
	require.NotNil(t, p.TimeRemainingSeconds)
	assert.Equal(t, 360, *p.TimeRemainingSeconds)
	assert.False(t, p.Expired)

	p = s.Progress(t0.Add(time.Hour))
	assert.Equal(t, 0, *p.TimeRemainingSeconds)
	assert.True(t, p.Expired)
}
