package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
	"github.com/examprep/backend/internal/store"
	"github.com/examprep/backend/internal/worker"
)

// questionDetails fetches the corpus entry of every session question, in
// session order. Lookups run on a small worker pool. A failed lookup is
// logged and leaves a nil entry so callers can render a placeholder.
func (s *SessionService) questionDetails(ctx context.Context, sess *session.Session) []*questionbank.Question {
	details := make([]*questionbank.Question, len(sess.Questions))
	if len(sess.Questions) == 0 {
		return details
	}

	pool := worker.NewPool[*questionbank.Question](s.workers, len(sess.Questions))
	for i, sq := range sess.Questions {
		questionID := sq.QuestionID
		pool.Submit(strconv.Itoa(i), func() *questionbank.Question {
			q, err := s.questions.GetQuestion(ctx, questionID)
			if err != nil {
				msg := "question lookup failed"
				if errors.Is(err, store.ErrNotFound) {
					msg = "question missing from corpus"
				}
				s.logger.Warn(msg, "session_id", sess.ID, "question_id", questionID, "error", err)
				return nil
			}
			return q
		})
	}
	pool.Close()

	for r := range pool.Results() {
		i, err := strconv.Atoi(r.JobID)
		if err != nil {
			continue
		}
		details[i] = r.Output
	}
	return details
}

// view builds the session view, reusing details when the caller already
// has them.
func (s *SessionService) view(ctx context.Context, sess *session.Session, details []*questionbank.Question) *SessionView {
	if details == nil {
		details = s.questionDetails(ctx, sess)
	}
	p := sess.Progress(s.now())
	return &SessionView{
		Session:   sess,
		Questions: questionViews(sess, details),
		Progress:  &p,
	}
}
